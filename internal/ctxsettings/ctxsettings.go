package ctxsettings

import (
	"context"
	"net/http"

	"fknsrs.biz/p/viddown/internal/settings"
	"fknsrs.biz/p/viddown/models"
)

var settingsKey int

func WithStore(ctx context.Context, v *settings.Store) context.Context {
	return context.WithValue(ctx, &settingsKey, v)
}

func GetStore(ctx context.Context) *settings.Store {
	if v := ctx.Value(&settingsKey); v != nil {
		return v.(*settings.Store)
	}

	return nil
}

func Register(v *settings.Store) func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		next(rw, r.WithContext(WithStore(r.Context(), v)))
	}
}

// Settings returns the current settings, or the defaults when no store is
// registered.
func Settings(ctx context.Context) models.Settings {
	if s := GetStore(ctx); s != nil {
		return s.Settings()
	}

	return models.DefaultSettings()
}
