package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/negroni/v2"

	"fknsrs.biz/p/viddown/internal/catalog"
	"fknsrs.biz/p/viddown/internal/ctxcatalog"
	"fknsrs.biz/p/viddown/internal/ctxclock"
	"fknsrs.biz/p/viddown/internal/ctxlibrary"
	"fknsrs.biz/p/viddown/internal/ctxlogger"
	"fknsrs.biz/p/viddown/internal/ctxsession"
	"fknsrs.biz/p/viddown/internal/ctxsettings"
	"fknsrs.biz/p/viddown/internal/kvstore"
	"fknsrs.biz/p/viddown/internal/library"
	"fknsrs.biz/p/viddown/internal/schedule"
	"fknsrs.biz/p/viddown/internal/session"
	"fknsrs.biz/p/viddown/internal/settings"
	"fknsrs.biz/p/viddown/models"
)

var now = time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

type zeroRand struct{}

func (zeroRand) Intn(n int) int   { return 0 }
func (zeroRand) Float64() float64 { return 0.99 }

type app struct {
	handler   http.Handler
	scheduler *schedule.Manual
	library   *library.Store
	settings  *settings.Store
	session   *session.Controller
}

func newApp(t *testing.T, autoDownload bool) *app {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()

	kv := kvstore.NewMemory()

	st := settings.Open(ctx, kv, logger)
	_, err := st.Update(ctx, func(s *models.Settings) { s.AutoDownload = autoDownload })
	require.NoError(t, err)

	lib := library.Open(ctx, kv, logger)
	scheduler := schedule.NewManual()
	clock := ctxclock.NewStaticClock(now)

	ctrl := session.New(session.Dependencies{
		Recorder:  lib,
		Settings:  st,
		Scheduler: scheduler,
		Clock:     clock,
		Rand:      zeroRand{},
		Logger:    logger,
	}, session.DefaultOptions())

	m := mux.NewRouter()
	Routes(m)

	n := negroni.New()
	n.UseFunc(ctxlogger.Register(logger))
	n.UseFunc(ctxclock.Register(clock))
	n.UseFunc(ctxcatalog.Register(catalog.New(zeroRand{}, logger)))
	n.UseFunc(ctxsettings.Register(st))
	n.UseFunc(ctxlibrary.Register(lib))
	n.UseFunc(ctxsession.Register(ctrl))
	n.UseHandler(m)

	return &app{handler: n, scheduler: scheduler, library: lib, settings: st, session: ctrl}
}

func (a *app) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var r *http.Request
	if form != nil {
		r = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}

	rw := httptest.NewRecorder()
	a.handler.ServeHTTP(rw, r)

	return rw
}

func decode(t *testing.T, rw *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), v), rw.Body.String())
}

func TestCatalog(t *testing.T) {
	a := assert.New(t)

	app := newApp(t, false)

	rw := app.do(http.MethodGet, "/api/catalog", nil)
	a.Equal(http.StatusOK, rw.Code)

	var res CatalogResponse
	decode(t, rw, &res)

	a.Len(res.Platforms, 6)
	a.Len(res.Qualities, 8)
	a.Len(res.PremiumFeatures, 8)
	a.Equal("720p", res.DefaultQuality.Quality)
}

func TestAds(t *testing.T) {
	a := assert.New(t)

	app := newApp(t, false)

	var res AdsResponse
	decode(t, app.do(http.MethodGet, "/api/ads", nil), &res)
	if a.NotNil(res.Top) && a.NotNil(res.Bottom) {
		a.NotEqual(*res.Top, *res.Bottom)
	}

	_, err := app.settings.Update(context.Background(), func(s *models.Settings) { s.ShowAds = false })
	require.NoError(t, err)

	res = AdsResponse{}
	decode(t, app.do(http.MethodGet, "/api/ads", nil), &res)
	a.Nil(res.Top)
	a.Nil(res.Bottom)
}

func TestLookup(t *testing.T) {
	for _, tc := range []struct {
		name   string
		form   url.Values
		status int
	}{
		{"Valid", url.Values{"url": {"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}}, http.StatusOK},
		{"Invalid", url.Values{"url": {"https://example.com/video"}}, http.StatusBadRequest},
		{"Missing", url.Values{"other": {"x"}}, http.StatusBadRequest},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			app := newApp(t, false)

			rw := app.do(http.MethodPost, "/api/lookup", tc.form)
			a.Equal(tc.status, rw.Code, rw.Body.String())

			if tc.status == http.StatusOK {
				var res LookupResponse
				decode(t, rw, &res)
				a.Equal("YouTube", res.Platform.Name)
				a.Equal("Amazing Nature Documentary", res.Video.Title)
			}
		})
	}
}

func TestLookupJSON(t *testing.T) {
	a := assert.New(t)

	app := newApp(t, false)

	r := httptest.NewRequest(http.MethodPost, "/api/lookup", strings.NewReader(`{"url":"https://youtu.be/dQw4w9WgXcQ"}`))
	r.Header.Set("content-type", "application/json")

	rw := httptest.NewRecorder()
	app.handler.ServeHTTP(rw, r)

	a.Equal(http.StatusOK, rw.Code)
}

func TestSessionFlow(t *testing.T) {
	a := assert.New(t)

	app := newApp(t, false)

	rw := app.do(http.MethodPost, "/api/session/target", url.Values{"video_id": {"2"}, "quality": {"1080p"}})
	a.Equal(http.StatusOK, rw.Code)

	var snap session.Snapshot
	decode(t, rw, &snap)
	a.Equal(session.StatusIdle, snap.Status)
	a.Equal("Cooking Tutorial - Italian Pasta.mp4", snap.Filename)

	decode(t, app.do(http.MethodPost, "/api/session/start", url.Values{}), &snap)
	a.Equal(session.StatusRunning, snap.Status)

	decode(t, app.do(http.MethodPost, "/api/session/toggle", url.Values{}), &snap)
	a.Equal(session.StatusPaused, snap.Status)

	app.scheduler.TickN(5)
	decode(t, app.do(http.MethodGet, "/api/session", nil), &snap)
	a.Equal(0.0, snap.Progress)

	decode(t, app.do(http.MethodPost, "/api/session/resume", url.Values{}), &snap)
	a.Equal(session.StatusRunning, snap.Status)

	app.scheduler.TickN(20)

	decode(t, app.do(http.MethodGet, "/api/session", nil), &snap)
	a.Equal(session.StatusIdle, snap.Status)

	var list DownloadsResponse
	decode(t, app.do(http.MethodGet, "/api/downloads", nil), &list)
	a.Equal(1, list.Total)
	if a.Len(list.Downloads, 1) {
		a.Equal("Cooking Tutorial - Italian Pasta", list.Downloads[0].Title)
		a.Equal("1080p", list.Downloads[0].Quality)
	}
}

func TestSessionCommandsAreNoopsWhenIdle(t *testing.T) {
	for _, command := range []string{"start", "pause", "resume", "toggle", "cancel"} {
		t.Run(command, func(t *testing.T) {
			a := assert.New(t)

			app := newApp(t, false)

			rw := app.do(http.MethodPost, "/api/session/"+command, url.Values{})
			a.Equal(http.StatusOK, rw.Code)

			var snap session.Snapshot
			decode(t, rw, &snap)
			a.Equal(session.StatusIdle, snap.Status)
		})
	}
}

func TestSessionCancel(t *testing.T) {
	a := assert.New(t)

	app := newApp(t, true)

	var snap session.Snapshot
	decode(t, app.do(http.MethodPost, "/api/session/target", url.Values{"video_id": {"1"}, "quality": {"720p"}}), &snap)
	a.Equal(session.StatusRunning, snap.Status)

	app.scheduler.TickN(3)

	decode(t, app.do(http.MethodPost, "/api/session/cancel", url.Values{}), &snap)
	a.Equal(session.StatusIdle, snap.Status)
	a.Equal(0, app.library.Len())
	a.Equal(0, app.scheduler.Active())
}

func TestSessionTargetValidation(t *testing.T) {
	for _, tc := range []struct {
		name string
		form url.Values
	}{
		{"BadID", url.Values{"video_id": {"abc"}, "quality": {"720p"}}},
		{"UnknownVideo", url.Values{"video_id": {"99"}, "quality": {"720p"}}},
		{"UnknownQuality", url.Values{"video_id": {"1"}, "quality": {"8K"}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			app := newApp(t, true)

			rw := app.do(http.MethodPost, "/api/session/target", tc.form)
			a.Equal(http.StatusBadRequest, rw.Code)
			a.Equal(session.StatusIdle, app.session.Status())
		})
	}
}

func TestDownloadsEndpoints(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()
	app := newApp(t, false)

	for i, title := range []string{"banana", "Apple", "cherry"} {
		require.NoError(t, app.library.AddRecord(ctx, models.DownloadRecord{
			ID:           models.RecordID(title),
			Title:        title,
			Channel:      "ch",
			SizeBytes:    int64(i + 1),
			DownloadDate: now.Add(time.Duration(i) * time.Hour),
		}))
	}

	var list DownloadsResponse

	decode(t, app.do(http.MethodGet, "/api/downloads?sort=name", nil), &list)
	a.Equal([]string{"Apple", "banana", "cherry"}, titles(list.Downloads))

	decode(t, app.do(http.MethodGet, "/api/downloads?q=AN", nil), &list)
	a.Equal([]string{"banana"}, titles(list.Downloads))

	a.Equal(http.StatusBadRequest, app.do(http.MethodGet, "/api/downloads?sort=random", nil).Code)

	decode(t, app.do(http.MethodGet, "/api/downloads/recent?n=2", nil), &list)
	a.Equal([]string{"cherry", "Apple"}, titles(list.Downloads))
	a.Equal(3, list.Total)

	a.Equal(http.StatusBadRequest, app.do(http.MethodGet, "/api/downloads/recent?n=x", nil).Code)

	var rec models.DownloadRecord
	decode(t, app.do(http.MethodGet, "/api/downloads/Apple", nil), &rec)
	a.Equal("Apple", rec.Title)

	a.Equal(http.StatusNotFound, app.do(http.MethodGet, "/api/downloads/nope", nil).Code)

	var share ShareResponse
	decode(t, app.do(http.MethodGet, "/api/downloads/Apple/share", nil), &share)
	a.Equal("Apple - Downloaded from VidDown", share.Text)

	a.Equal(http.StatusNoContent, app.do(http.MethodDelete, "/api/downloads/Apple", nil).Code)
	a.Equal(http.StatusNoContent, app.do(http.MethodDelete, "/api/downloads/Apple", nil).Code)
	a.Equal(2, app.library.Len())
}

func titles(a []models.DownloadRecord) []string {
	r := make([]string, len(a))
	for i, e := range a {
		r[i] = e.Title
	}
	return r
}

func TestSettingsEndpoints(t *testing.T) {
	a := assert.New(t)

	app := newApp(t, false)

	var s models.Settings
	decode(t, app.do(http.MethodGet, "/api/settings", nil), &s)
	a.Equal("720p", s.DefaultQuality)
	a.False(s.AutoDownload)

	rw := app.do(http.MethodPost, "/api/settings", url.Values{"defaultQuality": {"1080p"}, "showAds": {"off"}, "notifications": {"on"}})
	a.Equal(http.StatusOK, rw.Code)
	decode(t, rw, &s)

	a.Equal(models.Settings{DefaultQuality: "1080p", AutoDownload: false, SaveToGallery: true, ShowAds: false, Notifications: true}, s)
	a.Equal(s, app.settings.Settings())

	a.Equal(http.StatusBadRequest, app.do(http.MethodPost, "/api/settings", url.Values{"defaultQuality": {"8K"}}).Code)
	a.Equal("1080p", app.settings.Settings().DefaultQuality)
}

func TestSessionUpdatesStream(t *testing.T) {
	a := assert.New(t)

	app := newApp(t, true)

	srv := httptest.NewServer(app.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	r, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/session/updates", nil)
	require.NoError(t, err)

	res, err := http.DefaultClient.Do(r)
	require.NoError(t, err)
	defer res.Body.Close()

	a.Equal("text/event-stream", res.Header.Get("content-type"))

	lines := bufio.NewScanner(res.Body)

	var id string

	next := func() (string, string) {
		var event, data string
		id = ""
		for lines.Scan() {
			line := lines.Text()
			switch {
			case strings.HasPrefix(line, "id: "):
				id = strings.TrimPrefix(line, "id: ")
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && event != "":
				return event, data
			}
		}
		return "", ""
	}

	event, data := next()
	a.Equal("session", event)
	a.Contains(data, `"status":"idle"`)
	a.Empty(id)

	go app.session.SelectTarget(context.Background(), models.VideoRef{ID: 1, Title: "A"}, models.QualityOption{Quality: "720p", Format: "MP4"})

	event, data = next()
	a.Equal("session", event)
	a.Contains(data, `"title":"A"`)
	a.Equal("1", id)
}
