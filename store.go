package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"go.etcd.io/bbolt"

	"fknsrs.biz/p/viddown/internal/config"
	"fknsrs.biz/p/viddown/internal/ctxlogger"
	"fknsrs.biz/p/viddown/internal/kvstore"
	"fknsrs.biz/p/viddown/internal/sqlitelogger"
)

const loggedSQLiteDriver = "sqlite3:logged"

func registerLoggedSQLiteDriver() {
	sql.Register(loggedSQLiteDriver, sqlitelogger.New(
		loggedSQLiteDriver,
		&sqlite3.SQLiteDriver{},
		&sqlitelogger.BasicFilter{
			LogSlowerThan: cfg.LogQueries.SlowerThan,
			IgnorePackageStackFrames: []string{
				// standard library
				"database/sql",
				"net/http",
				"runtime",
				// libraries
				"fknsrs.biz/p/sorm",
				"github.com/gorilla/mux",
				"github.com/shogo82148/go-sql-proxy",
				"github.com/urfave/negroni/v2",
				// middleware
				"fknsrs.biz/p/viddown/internal/ctxclock",
				"fknsrs.biz/p/viddown/internal/ctxlogger",
				"fknsrs.biz/p/viddown/internal/sqlitelogger",
				// main
				"main",
			},
		},
	))
}

func openStore(ctx context.Context, c config.Config) (kvstore.Store, func() error, error) {
	l := ctxlogger.GetLogger(ctx).WithField("store.driver", c.StoreDriver)

	switch c.StoreDriver {
	case config.StoreDriverMemory:
		l.Warning("using in-memory store; nothing will survive a restart")

		return kvstore.NewMemory(), func() error { return nil }, nil
	case config.StoreDriverSQLite:
		driver := "sqlite3"

		if !c.LogQueries.IsZero() {
			driver = loggedSQLiteDriver
			registerLoggedSQLiteDriver()
		}

		db, err := sql.Open(driver, c.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("openStore: could not open sqlite database: %w", err)
		}

		s, err := kvstore.NewSQLite(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("openStore: %w", err)
		}

		l.WithField("store.path", c.StorePath).Info("opened sqlite store")

		return s, db.Close, nil
	case config.StoreDriverBBolt, "":
		db, err := bbolt.Open(c.StorePath, 0600, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("openStore: could not open bbolt database: %w", err)
		}

		l.WithField("store.path", c.StorePath).Info("opened bbolt store")

		return kvstore.NewBBolt(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("openStore: unknown store driver %q", c.StoreDriver)
	}
}
