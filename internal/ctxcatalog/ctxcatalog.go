package ctxcatalog

import (
	"context"
	"net/http"

	"fknsrs.biz/p/viddown/internal/catalog"
)

var catalogKey int

func WithCatalog(ctx context.Context, v *catalog.Catalog) context.Context {
	return context.WithValue(ctx, &catalogKey, v)
}

func GetCatalog(ctx context.Context) *catalog.Catalog {
	if v := ctx.Value(&catalogKey); v != nil {
		return v.(*catalog.Catalog)
	}

	return nil
}

func Register(v *catalog.Catalog) func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		next(rw, r.WithContext(WithCatalog(r.Context(), v)))
	}
}
