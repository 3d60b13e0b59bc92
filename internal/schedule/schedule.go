package schedule

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/viddown/internal/catchpanic"
	"fknsrs.biz/p/viddown/internal/stackutil"
)

type Scheduler interface {
	Every(interval time.Duration, fn func()) Handle
}

// Handle cancels a periodic task. Stop may be called any number of times,
// from any goroutine, including from inside the task itself.
type Handle interface {
	Stop()
}

// real scheduler

type Real struct {
	logger logrus.FieldLogger
}

func NewReal(logger logrus.FieldLogger) *Real {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Real{logger: logger}
}

func (s *Real) Every(interval time.Duration, fn func()) Handle {
	h := &realHandle{done: make(chan struct{})}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				select {
				case <-h.done:
					return
				default:
				}

				if err := catchpanic.Catch(fn); err != nil {
					l := s.logger.WithError(err).WithField("schedule.interval", interval.String())

					var p *catchpanic.PanicError
					if errors.As(err, &p) {
						for i, frame := range p.Stack {
							l = l.WithField(fmt.Sprintf("stack.%02d", i), stackutil.FormatStackFrame(frame))
						}
					}

					l.Error("scheduled task panicked")
				}
			}
		}
	}()

	return h
}

type realHandle struct {
	once sync.Once
	done chan struct{}
}

func (h *realHandle) Stop() {
	h.once.Do(func() { close(h.done) })
}

// manual scheduler

// Manual only runs tasks when Tick is called. It exists so that anything
// driven by a Scheduler can be stepped deterministically.
type Manual struct {
	m     sync.Mutex
	next  int
	tasks map[int]manualTask
}

type manualTask struct {
	interval time.Duration
	fn       func()
}

func NewManual() *Manual {
	return &Manual{tasks: make(map[int]manualTask)}
}

func (s *Manual) Every(interval time.Duration, fn func()) Handle {
	s.m.Lock()
	defer s.m.Unlock()

	s.next++
	s.tasks[s.next] = manualTask{interval: interval, fn: fn}

	return &manualHandle{s: s, id: s.next}
}

// Tick runs every live task once, in registration order. Tasks stopped by
// an earlier task in the same tick are skipped.
func (s *Manual) Tick() {
	s.m.Lock()
	ids := make([]int, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	s.m.Unlock()

	sort.Ints(ids)

	for _, id := range ids {
		s.m.Lock()
		t, ok := s.tasks[id]
		s.m.Unlock()

		if ok {
			t.fn()
		}
	}
}

// TickN calls Tick n times.
func (s *Manual) TickN(n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

func (s *Manual) Active() int {
	s.m.Lock()
	defer s.m.Unlock()

	return len(s.tasks)
}

// Intervals reports the interval of every live task, in registration order.
func (s *Manual) Intervals() []time.Duration {
	s.m.Lock()
	defer s.m.Unlock()

	ids := make([]int, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	a := make([]time.Duration, len(ids))
	for i, id := range ids {
		a[i] = s.tasks[id].interval
	}

	return a
}

type manualHandle struct {
	s  *Manual
	id int
}

func (h *manualHandle) Stop() {
	h.s.m.Lock()
	defer h.s.m.Unlock()

	delete(h.s.tasks, h.id)
}
