package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"fknsrs.biz/p/sorm"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/tdewolff/minify"
	"github.com/tdewolff/minify/json"
	"github.com/urfave/negroni/v2"

	"fknsrs.biz/p/viddown/handlers"
	"fknsrs.biz/p/viddown/internal/catalog"
	"fknsrs.biz/p/viddown/internal/config"
	"fknsrs.biz/p/viddown/internal/configreader"
	"fknsrs.biz/p/viddown/internal/ctxcatalog"
	"fknsrs.biz/p/viddown/internal/ctxclock"
	"fknsrs.biz/p/viddown/internal/ctxconfig"
	"fknsrs.biz/p/viddown/internal/ctxlibrary"
	"fknsrs.biz/p/viddown/internal/ctxlogger"
	"fknsrs.biz/p/viddown/internal/ctxsession"
	"fknsrs.biz/p/viddown/internal/ctxsettings"
	"fknsrs.biz/p/viddown/internal/library"
	"fknsrs.biz/p/viddown/internal/logrusstackhook"
	"fknsrs.biz/p/viddown/internal/randutil"
	"fknsrs.biz/p/viddown/internal/schedule"
	"fknsrs.biz/p/viddown/internal/session"
	"fknsrs.biz/p/viddown/internal/settings"
)

func init() {
	sorm.SetParameterPrefix("?")
}

var cfg = config.Config{
	LogLevel:          logrus.InfoLevel,
	LogDebugLevels:    config.LevelList{logrus.DebugLevel, logrus.TraceLevel},
	LogQueries:        config.LogQueries{Enabled: true, SlowerThan: time.Millisecond * 100},
	LogSORM:           false,
	StoreDriver:       config.StoreDriverBBolt,
	StorePath:         "viddown.db",
	ApplicationAddr:   ":8080",
	ApplicationMinify: true,
	TickInterval:      config.Duration(time.Millisecond * 200),
	RandomSeed:        0,
}

func init() {
	for _, configPath := range []string{"config.toml", "config.yaml", "config.yml"} {
		if st, err := os.Stat(configPath); err == nil && st != nil && !st.IsDir() {
			cfg.Config = configPath
		}
	}
}

type simpleQueryLogger struct {
	logger logrus.FieldLogger
}

func (s *simpleQueryLogger) LogQuery(query string, args []interface{}) {
	fields := logrus.Fields{
		"db.query":      query,
		"db.args.count": len(args),
	}

	for i, e := range args {
		fields[fmt.Sprintf("db.args.%d", i)] = e
	}

	s.logger.WithFields(fields).Debug("sorm query start")
}

func (s *simpleQueryLogger) LogQueryAfter(query string, args []interface{}, duration time.Duration, err error) {
	fields := logrus.Fields{
		"db.query":      query,
		"db.duration":   duration,
		"db.error":      err,
		"db.args.count": len(args),
	}

	for i, e := range args {
		fields[fmt.Sprintf("db.args.%d", i)] = e
	}

	s.logger.WithFields(fields).Debug("sorm query finish")
}

type app struct {
	catalog  *catalog.Catalog
	settings *settings.Store
	library  *library.Store
	session  *session.Controller
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := configreader.ReadWithPrefix(os.Args[0], "VIDDOWN_", os.Args[1:], os.Environ(), &cfg); err != nil {
		panic(err)
	}

	ctx = ctxconfig.WithConfig(ctx, cfg)

	clock := ctxclock.NewRealClock()
	ctx = ctxclock.WithClock(ctx, clock)

	logger := logrus.New()

	logger.SetLevel(cfg.LogLevel)
	if len(cfg.LogDebugLevels) > 0 {
		logger.AddHook(logrusstackhook.New(logrusstackhook.Options{
			Levels: cfg.LogDebugLevels,
			Filter: logrusstackhook.All(
				logrusstackhook.DefaultFilter,
				logrusstackhook.SkipPackages("github.com/urfave/negroni/v2", "net/http"),
			),
		}))
	}

	logger.WithFields(logrus.Fields{
		"config.config":             cfg.Config,
		"config.log_level":          cfg.LogLevel,
		"config.log_debug_levels":   cfg.LogDebugLevels,
		"config.log_queries":        cfg.LogQueries,
		"config.log_sorm":           cfg.LogSORM,
		"config.store_driver":       cfg.StoreDriver,
		"config.store_path":         cfg.StorePath,
		"config.application_addr":   cfg.ApplicationAddr,
		"config.application_minify": cfg.ApplicationMinify,
		"config.tick_interval":      cfg.TickInterval.Duration(),
		"config.random_seed":        cfg.RandomSeed,
	}).Info("program starting")

	if cfg.LogSORM {
		sorm.SetQueryLogger(&simpleQueryLogger{logger})
	}

	ctx = ctxlogger.WithLogger(ctx, logger)

	kv, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer closeStore()

	rnd := randutil.New(int64(cfg.RandomSeed))

	a := &app{
		catalog:  catalog.New(rnd, logger.WithField("component", "catalog")),
		settings: settings.Open(ctx, kv, logger.WithField("component", "settings")),
		library:  library.Open(ctx, kv, logger.WithField("component", "library")),
	}

	opts := session.DefaultOptions()
	opts.Interval = cfg.TickInterval.Duration()

	a.session = session.New(session.Dependencies{
		Recorder:  a.library,
		Settings:  a.settings,
		Scheduler: schedule.NewReal(logger.WithField("component", "schedule")),
		Clock:     clock,
		Rand:      rnd,
		Logger:    logger.WithField("component", "session"),
	}, opts)

	workers := []worker{
		{
			name: "application",
			run: func(ctx context.Context) error {
				return runApplicationWorker(ctx, a, cfg.ApplicationAddr)
			},
		},
	}

	if err := runAllWorkers(ctx, workers); err != nil {
		logger.WithError(err).Error("program failed")
		os.Exit(1)
	}

	logger.Info("program finished")
}

type worker struct {
	name string
	run  func(ctx context.Context) error
}

// runAllWorkers keeps every worker running until ctx is done. A worker that
// fails takes the others down with it so that they restart together.
func runAllWorkers(ctx context.Context, workers []worker) error {
	done := make(chan error, len(workers))
	cancellers := make([]context.CancelCauseFunc, len(workers))

	var rw sync.RWMutex

	for id, w := range workers {
		go func(id int, w worker) {
			for {
				l := ctxlogger.GetLogger(ctx).WithFields(logrus.Fields{
					"worker.id":   id + 1,
					"worker.name": w.name,
				})

				wctx, cancel := context.WithCancelCause(ctxlogger.WithLogger(ctx, l))

				rw.Lock()
				cancellers[id] = cancel
				rw.Unlock()

				err := w.run(wctx)

				cancel(nil)

				if ctx.Err() != nil {
					l.Info("worker stopped")
					done <- err
					return
				}

				if err != nil {
					l.WithError(err).Error("worker failed")

					rw.RLock()
					for i, fn := range cancellers {
						if fn == nil || i == id {
							continue
						}

						fn(fmt.Errorf("worker %d (%s) failed: %w", id+1, w.name, err))
					}
					rw.RUnlock()
				} else {
					l.Info("worker restarted")
				}

				select {
				case <-ctx.Done():
					done <- nil
					return
				case <-time.After(time.Second):
				}
			}
		}(id, w)
	}

	var errs []error
	for range workers {
		if err := <-done; err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func runApplicationWorker(ctx context.Context, a *app, addr string) error {
	l := ctxlogger.GetLogger(ctx)

	l.WithFields(logrus.Fields{
		"args.addr": addr,
	}).Info("running application worker")

	m := mux.NewRouter()

	handlers.Routes(m)

	min := minify.New()
	min.AddFunc("application/json", json.Minify)

	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.UseFunc(ctxlogger.Register(l))
	n.UseFunc(ctxlogger.RequestID())
	n.UseFunc(ctxconfig.Register(ctxconfig.GetConfig(ctx)))
	n.UseFunc(ctxclock.Register(ctxclock.GetClock(ctx)))
	n.UseFunc(ctxcatalog.Register(a.catalog))
	n.UseFunc(ctxsettings.Register(a.settings))
	n.UseFunc(ctxlibrary.Register(a.library))
	n.UseFunc(ctxsession.Register(a.session))
	n.UseFunc(ctxclock.AddLoggerHooks())
	n.UseFunc(ctxlogger.Log())

	if ctxconfig.GetConfig(ctx).ApplicationMinify {
		n.UseFunc(func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
			if strings.Contains(r.Header.Get("accept"), "text/event-stream") || strings.HasSuffix(r.URL.Path, "/updates") {
				next(rw, r)
				return
			}

			mw := min.ResponseWriter(rw, r)
			defer mw.Close()

			next(mw, r)
		})
	}

	n.UseHandler(m)

	s := &http.Server{
		Addr:        addr,
		Handler:     n,
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}

	errs := make(chan error, 1)
	go func() {
		l.Info("starting server")
		errs <- s.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second*5)
		defer cancel()

		return s.Shutdown(shutdownCtx)
	}
}
