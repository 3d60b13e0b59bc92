package ctxlogger

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var loggerKey int

func WithLogger(ctx context.Context, l logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, &loggerKey, l)
}

func GetLogger(ctx context.Context) logrus.FieldLogger {
	if v := ctx.Value(&loggerKey); v != nil {
		return v.(logrus.FieldLogger)
	}

	return logrus.StandardLogger()
}

// HookFunc decorates the request logger. Before funcs run when the request
// starts, after funcs once the handler has returned.
type HookFunc func(rw http.ResponseWriter, r *http.Request, l logrus.FieldLogger) logrus.FieldLogger

type hook struct {
	before HookFunc
	after  HookFunc
}

type hooks struct {
	a []hook
}

func (h *hooks) run(rw http.ResponseWriter, r *http.Request, l logrus.FieldLogger, after bool) logrus.FieldLogger {
	if h == nil {
		return l
	}

	for _, e := range h.a {
		fn := e.before
		if after {
			fn = e.after
		}

		if fn != nil {
			l = fn(rw, r, l)
		}
	}

	return l
}

var hooksKey int

func getHooks(ctx context.Context) *hooks {
	if v := ctx.Value(&hooksKey); v != nil {
		return v.(*hooks)
	}

	return nil
}

// AddHooks attaches a before/after pair to the request logger. Either may be
// nil. Requests that did not pass through Register get a fresh hook set.
func AddHooks(ctx context.Context, before, after HookFunc) context.Context {
	h := getHooks(ctx)
	if h == nil {
		h = &hooks{}
		ctx = context.WithValue(ctx, &hooksKey, h)
	}

	h.a = append(h.a, hook{before: before, after: after})

	return ctx
}

func Register(l logrus.FieldLogger) func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		ctx := context.WithValue(r.Context(), &hooksKey, &hooks{})

		next(rw, r.WithContext(WithLogger(ctx, l)))
	}
}

const RequestIDHeader = "X-Request-Id"

// RequestID tags the request logger with an id, reusing one supplied by the
// client if it is a uuid, and echoes it back in the response headers.
func RequestID() func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		rw.Header().Set(RequestIDHeader, id)

		next(rw, r.WithContext(AddHooks(r.Context(), func(rw http.ResponseWriter, r *http.Request, l logrus.FieldLogger) logrus.FieldLogger {
			return l.WithField("http.request_id", id)
		}, nil)))
	}
}

type statusWriter interface {
	Status() int
	Size() int
}

// Log writes one line per request. Server errors are logged at error level
// and client errors at warning level.
func Log() func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	return func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		h := getHooks(r.Context())

		l := h.run(rw, r, GetLogger(r.Context()).WithFields(logrus.Fields{
			"http.method":     r.Method,
			"http.path":       r.URL.String(),
			"http.user_agent": r.Header.Get("user-agent"),
		}), false)

		l.Debug("http request started")

		next(rw, r.WithContext(WithLogger(r.Context(), l)))

		status := 0
		if sw, ok := rw.(statusWriter); ok {
			status = sw.Status()
			l = l.WithFields(logrus.Fields{
				"http.status_code":   status,
				"http.response_size": sw.Size(),
			})
		}

		l = h.run(rw, r, l, true)

		switch {
		case status >= 500:
			l.Error("http request finished")
		case status >= 400:
			l.Warning("http request finished")
		default:
			l.Info("http request finished")
		}
	}
}
