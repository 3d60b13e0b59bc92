package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"fknsrs.biz/p/viddown/internal/ctxcatalog"
	"fknsrs.biz/p/viddown/internal/ctxsession"
	"fknsrs.biz/p/viddown/internal/httputil"
	"fknsrs.biz/p/viddown/internal/session"
)

func Session(rw http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(rw, r, http.StatusOK, ctxsession.GetController(r.Context()).Snapshot())
}

func SessionTarget(rw http.ResponseWriter, r *http.Request) {
	var input struct {
		VideoID string `formam:"video_id"`
		Quality string `formam:"quality"`
	}

	if err := decodeForm(r, &input); err != nil {
		httputil.BadRequest(rw, r, "could not decode form")
		return
	}

	id, err := strconv.Atoi(input.VideoID)
	if err != nil {
		httputil.BadRequest(rw, r, "video_id must be a number")
		return
	}

	c := ctxcatalog.GetCatalog(r.Context())

	v, err := c.FindVideo(id)
	if err != nil {
		httputil.BadRequest(rw, r, "unknown video")
		return
	}

	q, err := c.FindQuality(input.Quality)
	if err != nil {
		httputil.BadRequest(rw, r, "unknown quality")
		return
	}

	ctrl := ctxsession.GetController(r.Context())

	ctrl.SelectTarget(r.Context(), v, q)

	httputil.WriteJSON(rw, r, http.StatusOK, ctrl.Snapshot())
}

var sessionCommands = map[string]func(c *session.Controller, r *http.Request){
	"start":  func(c *session.Controller, r *http.Request) { c.Start(r.Context()) },
	"pause":  func(c *session.Controller, r *http.Request) { c.Pause(r.Context()) },
	"resume": func(c *session.Controller, r *http.Request) { c.Resume(r.Context()) },
	"toggle": func(c *session.Controller, r *http.Request) { c.TogglePause(r.Context()) },
	"cancel": func(c *session.Controller, r *http.Request) { c.Cancel(r.Context()) },
}

// SessionCommand runs one of the commands above. Commands that do not apply
// to the current state are not errors; the caller just gets the unchanged
// snapshot back.
func SessionCommand(rw http.ResponseWriter, r *http.Request) {
	fn, ok := sessionCommands[mux.Vars(r)["command"]]
	if !ok {
		httputil.NotFound(rw, r)
		return
	}

	c := ctxsession.GetController(r.Context())

	fn(c, r)

	httputil.WriteJSON(rw, r, http.StatusOK, c.Snapshot())
}
