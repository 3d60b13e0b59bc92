package ctxsession

import (
	"context"
	"net/http"

	"fknsrs.biz/p/viddown/internal/session"
)

var sessionKey int

func WithController(ctx context.Context, v *session.Controller) context.Context {
	return context.WithValue(ctx, &sessionKey, v)
}

func GetController(ctx context.Context) *session.Controller {
	if v := ctx.Value(&sessionKey); v != nil {
		return v.(*session.Controller)
	}

	return nil
}

func Register(v *session.Controller) func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		next(rw, r.WithContext(WithController(r.Context(), v)))
	}
}
