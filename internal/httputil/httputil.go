package httputil

import (
	"encoding/json"
	"net/http"

	"fknsrs.biz/p/viddown/internal/ctxlogger"
)

type errorBody struct {
	Error string `json:"error"`
}

func WriteJSON(rw http.ResponseWriter, r *http.Request, status int, v interface{}) {
	rw.Header().Set("content-type", "application/json; charset=utf-8")
	rw.WriteHeader(status)

	if err := json.NewEncoder(rw).Encode(v); err != nil {
		ctxlogger.GetLogger(r.Context()).WithError(err).Warning("could not write json response")
	}
}

func WriteError(rw http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(rw, r, status, errorBody{Error: message})
}

func NotFound(rw http.ResponseWriter, r *http.Request) {
	WriteError(rw, r, http.StatusNotFound, "not found")
}

func BadRequest(rw http.ResponseWriter, r *http.Request, message string) {
	WriteError(rw, r, http.StatusBadRequest, message)
}

func Conflict(rw http.ResponseWriter, r *http.Request, message string) {
	WriteError(rw, r, http.StatusConflict, message)
}

// InternalError logs err against the request and hides it from the client.
func InternalError(rw http.ResponseWriter, r *http.Request, err error) {
	ctxlogger.GetLogger(r.Context()).WithError(err).Error("request failed")

	WriteError(rw, r, http.StatusInternalServerError, "internal error")
}
