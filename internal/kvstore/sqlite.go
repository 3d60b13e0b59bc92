package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fknsrs.biz/p/sorm"
)

type Entry struct {
	ID        int `sql:",table:kv_entries"`
	Name      string
	Value     string
	UpdatedAt time.Time
}

const createEntriesTable = `create table if not exists kv_entries (
	id integer primary key autoincrement,
	name text not null unique,
	value text not null,
	updated_at datetime not null
)`

// SQLite keeps entries in the kv_entries table. The table is created on
// first use by NewSQLite.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLite(ctx context.Context, db *sql.DB) (*SQLite, error) {
	if _, err := db.ExecContext(ctx, createEntriesTable); err != nil {
		return nil, fmt.Errorf("kvstore.NewSQLite: could not create table: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	if err := sorm.FindFirstWhere(ctx, s.db, &entry, "where name = ?", key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("kvstore.SQLite.Get: could not find entry for %q: %w", key, err)
	}

	return []byte(entry.Value), nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("kvstore.SQLite.Set: could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	var entry Entry
	if err := sorm.FindFirstWhere(ctx, tx, &entry, "where name = ?", key); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("kvstore.SQLite.Set: could not find entry for %q: %w", key, err)
		}

		entry.Name = key
		entry.Value = string(value)
		entry.UpdatedAt = s.now().UTC()

		if err := sorm.CreateRecord(ctx, tx, &entry); err != nil {
			return fmt.Errorf("kvstore.SQLite.Set: could not create entry for %q: %w", key, err)
		}
	} else {
		entry.Value = string(value)
		entry.UpdatedAt = s.now().UTC()

		if err := sorm.SaveRecord(ctx, tx, &entry); err != nil {
			return fmt.Errorf("kvstore.SQLite.Set: could not save entry for %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("kvstore.SQLite.Set: could not commit transaction: %w", err)
	}

	return nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "delete from kv_entries where name = ?", key); err != nil {
		return fmt.Errorf("kvstore.SQLite.Delete: could not delete entry for %q: %w", key, err)
	}

	return nil
}
