package ctxlibrary

import (
	"context"
	"net/http"

	"fknsrs.biz/p/viddown/internal/library"
)

var libraryKey int

func WithStore(ctx context.Context, v *library.Store) context.Context {
	return context.WithValue(ctx, &libraryKey, v)
}

func GetStore(ctx context.Context) *library.Store {
	if v := ctx.Value(&libraryKey); v != nil {
		return v.(*library.Store)
	}

	return nil
}

func Register(v *library.Store) func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		next(rw, r.WithContext(WithStore(r.Context(), v)))
	}
}
