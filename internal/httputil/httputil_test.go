package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteJSON(t *testing.T) {
	a := assert.New(t)

	rw := httptest.NewRecorder()
	WriteJSON(rw, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusCreated, map[string]int{"n": 1})

	a.Equal(http.StatusCreated, rw.Code)
	a.Equal("application/json; charset=utf-8", rw.Header().Get("content-type"))
	a.JSONEq(`{"n":1}`, rw.Body.String())
}

func TestErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		fn     func(rw http.ResponseWriter, r *http.Request)
		status int
		body   string
	}{
		{"NotFound", NotFound, http.StatusNotFound, `{"error":"not found"}`},
		{"BadRequest", func(rw http.ResponseWriter, r *http.Request) { BadRequest(rw, r, "nope") }, http.StatusBadRequest, `{"error":"nope"}`},
		{"Conflict", func(rw http.ResponseWriter, r *http.Request) { Conflict(rw, r, "busy") }, http.StatusConflict, `{"error":"busy"}`},
		{"InternalError", func(rw http.ResponseWriter, r *http.Request) { InternalError(rw, r, errors.New("secret")) }, http.StatusInternalServerError, `{"error":"internal error"}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			rw := httptest.NewRecorder()
			tc.fn(rw, httptest.NewRequest(http.MethodGet, "/", nil))

			a.Equal(tc.status, rw.Code)
			a.JSONEq(tc.body, rw.Body.String())
		})
	}
}
