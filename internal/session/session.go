package session

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/viddown/internal/ctxclock"
	"fknsrs.biz/p/viddown/internal/schedule"
	"fknsrs.biz/p/viddown/models"
)

type Status string

const (
	StatusIdle      = Status("idle")
	StatusRunning   = Status("running")
	StatusPaused    = Status("paused")
	StatusCompleted = Status("completed")
	StatusCancelled = Status("cancelled")
)

type Recorder interface {
	AddRecord(ctx context.Context, r models.DownloadRecord) error
}

type SettingsSource interface {
	Settings() models.Settings
}

type Rand interface {
	Float64() float64
}

type Options struct {
	Interval time.Duration
	MinStep  float64
	MaxStep  float64
	MinSpeed float64
	MaxSpeed float64
}

func DefaultOptions() Options {
	return Options{
		Interval: time.Millisecond * 200,
		MinStep:  2,
		MaxStep:  7,
		MinSpeed: 200,
		MaxSpeed: 1000,
	}
}

type Dependencies struct {
	Recorder  Recorder
	Settings  SettingsSource
	Scheduler schedule.Scheduler
	Clock     ctxclock.Clock
	Rand      Rand
	Logger    logrus.FieldLogger
}

type Snapshot struct {
	Status   Status                `json:"status"`
	Video    *models.VideoRef      `json:"video,omitempty"`
	Quality  *models.QualityOption `json:"quality,omitempty"`
	Progress float64               `json:"progress"`
	Speed    float64               `json:"speed"`
	Filename string                `json:"filename,omitempty"`
}

// Event is one state change. Seq increases by one per event, in the order
// the changes happened.
type Event struct {
	Seq      uint64                 `json:"seq"`
	Snapshot Snapshot               `json:"snapshot"`
	Record   *models.DownloadRecord `json:"record,omitempty"`
}

// Controller runs at most one simulated download at a time. Every command
// is a silent no-op when the session is in the wrong state for it.
type Controller struct {
	deps Dependencies
	opts Options

	m          sync.Mutex
	status     Status
	video      *models.VideoRef
	quality    *models.QualityOption
	progress   float64
	speed      float64
	generation uint64
	handle     schedule.Handle
	seq        uint64
	pending    []Event
	delivering bool

	sm   sync.Mutex
	next int
	subs map[int]func(Event)
}

func New(deps Dependencies, opts Options) *Controller {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.Clock == nil {
		deps.Clock = ctxclock.NewRealClock()
	}

	d := DefaultOptions()
	if opts.Interval <= 0 {
		opts.Interval = d.Interval
	}
	if opts.MaxStep <= opts.MinStep || opts.MinStep <= 0 {
		opts.MinStep, opts.MaxStep = d.MinStep, d.MaxStep
	}
	if opts.MaxSpeed <= opts.MinSpeed {
		opts.MinSpeed, opts.MaxSpeed = d.MinSpeed, d.MaxSpeed
	}

	return &Controller{
		deps:   deps,
		opts:   opts,
		status: StatusIdle,
		subs:   make(map[int]func(Event)),
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Status:   c.status,
		Progress: c.progress,
		Speed:    c.speed,
	}

	if c.video != nil {
		v := *c.video
		s.Video = &v
	}

	if c.quality != nil {
		q := *c.quality
		s.Quality = &q
	}

	if s.Video != nil && s.Quality != nil {
		s.Filename = models.Filename(*s.Video, *s.Quality)
	}

	return s
}

func (c *Controller) resetLocked() {
	c.status = StatusIdle
	c.video = nil
	c.quality = nil
	c.progress = 0
	c.speed = 0
}

func (c *Controller) stopLocked() {
	if c.handle != nil {
		c.handle.Stop()
		c.handle = nil
	}

	c.generation++
}

func (c *Controller) loggerLocked() logrus.FieldLogger {
	l := c.deps.Logger.WithFields(logrus.Fields{
		"session.status":   c.status,
		"session.progress": c.progress,
	})

	if c.video != nil {
		l = l.WithField("video.title", c.video.Title)
	}

	if c.quality != nil {
		l = l.WithField("quality.label", c.quality.Quality)
	}

	return l
}

func (c *Controller) Snapshot() Snapshot {
	c.m.Lock()
	defer c.m.Unlock()

	return c.snapshotLocked()
}

func (c *Controller) Status() Status {
	c.m.Lock()
	defer c.m.Unlock()

	return c.status
}

// CurrentSpeedEstimate is a display-only KB/s figure, redrawn on every tick
// that advances progress.
func (c *Controller) CurrentSpeedEstimate() float64 {
	c.m.Lock()
	defer c.m.Unlock()

	return c.speed
}

// SelectTarget sets the pending download. If the auto download setting is on
// the download starts straight away.
func (c *Controller) SelectTarget(ctx context.Context, video models.VideoRef, quality models.QualityOption) {
	c.m.Lock()

	if c.status != StatusIdle {
		c.m.Unlock()
		return
	}

	c.video = &video
	c.quality = &quality

	c.emitLocked(Event{Snapshot: c.snapshotLocked()})
	c.loggerLocked().Debug("download target selected")

	c.m.Unlock()

	c.flush()

	if c.deps.Settings != nil && c.deps.Settings.Settings().AutoDownload {
		c.Start(ctx)
	}
}

func (c *Controller) Start(ctx context.Context) {
	c.m.Lock()

	if c.status != StatusIdle || c.video == nil || c.quality == nil {
		c.m.Unlock()
		return
	}

	c.stopLocked()

	c.status = StatusRunning
	c.progress = 0
	c.speed = 0

	gen := c.generation
	tickCtx := context.WithoutCancel(ctx)

	c.handle = c.deps.Scheduler.Every(c.opts.Interval, func() { c.tick(tickCtx, gen) })

	c.emitLocked(Event{Snapshot: c.snapshotLocked()})
	c.loggerLocked().Info("download started")

	c.m.Unlock()

	c.flush()
}

func (c *Controller) Pause(ctx context.Context) {
	c.transition(StatusRunning, StatusPaused, "download paused")
}

func (c *Controller) Resume(ctx context.Context) {
	c.transition(StatusPaused, StatusRunning, "download resumed")
}

func (c *Controller) TogglePause(ctx context.Context) {
	c.m.Lock()
	status := c.status
	c.m.Unlock()

	switch status {
	case StatusRunning:
		c.Pause(ctx)
	case StatusPaused:
		c.Resume(ctx)
	}
}

func (c *Controller) transition(from, to Status, message string) {
	c.m.Lock()

	if c.status != from {
		c.m.Unlock()
		return
	}

	c.status = to

	c.emitLocked(Event{Snapshot: c.snapshotLocked()})
	c.loggerLocked().Info(message)

	c.m.Unlock()

	c.flush()
}

// Cancel abandons the running or paused download. Nothing is recorded.
func (c *Controller) Cancel(ctx context.Context) {
	c.m.Lock()

	if c.status != StatusRunning && c.status != StatusPaused {
		c.m.Unlock()
		return
	}

	c.stopLocked()

	c.status = StatusCancelled

	c.emitLocked(Event{Snapshot: c.snapshotLocked()})
	c.loggerLocked().Info("download cancelled")

	c.resetLocked()
	c.emitLocked(Event{Snapshot: c.snapshotLocked()})

	c.m.Unlock()

	c.flush()
}

func (c *Controller) tick(ctx context.Context, gen uint64) {
	c.m.Lock()

	if gen != c.generation || c.status != StatusRunning {
		c.m.Unlock()
		return
	}

	c.progress = math.Min(100, c.progress+c.opts.MinStep+c.deps.Rand.Float64()*(c.opts.MaxStep-c.opts.MinStep))
	c.speed = c.opts.MinSpeed + c.deps.Rand.Float64()*(c.opts.MaxSpeed-c.opts.MinSpeed)

	if c.progress < 100 {
		c.emitLocked(Event{Snapshot: c.snapshotLocked()})
		c.m.Unlock()
		c.flush()
		return
	}

	c.stopLocked()

	c.status = StatusCompleted
	completedGen := c.generation

	now, err := c.deps.Clock.Now()
	if err != nil {
		c.loggerLocked().WithError(err).Warning("could not read clock; using system time for record")
		now = time.Now()
	}

	record := models.NewDownloadRecord(models.RecordID(uuid.NewString()), *c.video, *c.quality, now)

	snap := c.snapshotLocked()
	l := c.loggerLocked().WithField("record.id", record.ID)

	c.m.Unlock()

	if c.deps.Recorder != nil {
		if err := c.deps.Recorder.AddRecord(ctx, record); err != nil {
			l.WithError(err).Error("could not save finished download")
		}
	}

	c.m.Lock()
	c.emitLocked(Event{Snapshot: snap, Record: &record})
	if c.status == StatusCompleted && c.generation == completedGen {
		c.resetLocked()
		c.emitLocked(Event{Snapshot: c.snapshotLocked()})
	}
	c.m.Unlock()

	l.Info("download completed")

	c.flush()
}

// Subscribe registers fn to receive every state change, in order. Cancelled
// and completed events are always followed by an idle one. Callbacks never
// run while the controller is locked, and only one runs at a time; a change
// made while a callback is running is delivered once it returns, possibly
// on another goroutine. The returned function unregisters fn.
func (c *Controller) Subscribe(fn func(Event)) func() {
	c.sm.Lock()
	defer c.sm.Unlock()

	c.next++
	id := c.next
	c.subs[id] = fn

	return func() {
		c.sm.Lock()
		defer c.sm.Unlock()

		delete(c.subs, id)
	}
}

func (c *Controller) emitLocked(e Event) {
	c.seq++
	e.Seq = c.seq
	c.pending = append(c.pending, e)
}

// flush delivers pending events. Whoever finds the queue idle drains it;
// everyone else leaves their events for that goroutine.
func (c *Controller) flush() {
	c.m.Lock()
	if c.delivering {
		c.m.Unlock()
		return
	}
	c.delivering = true

	finished := false
	defer func() {
		if !finished {
			c.m.Lock()
			c.delivering = false
			c.m.Unlock()
		}
	}()

	for len(c.pending) > 0 {
		e := c.pending[0]
		c.pending = c.pending[1:]
		c.m.Unlock()

		c.notify(e)

		c.m.Lock()
	}

	c.delivering = false
	finished = true
	c.m.Unlock()
}

func (c *Controller) notify(e Event) {
	c.sm.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.sm.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
