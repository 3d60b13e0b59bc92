package kvstore

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"
)

var bucketName = []byte("viddown")

type BBolt struct {
	db *bbolt.DB
}

func NewBBolt(db *bbolt.DB) *BBolt {
	return &BBolt{db: db}
}

func (s *BBolt) Get(ctx context.Context, key string) ([]byte, error) {
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("kvstore.BBolt.Get: could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	b := tx.Bucket(bucketName)
	if b == nil {
		return nil, ErrNotFound
	}

	d := b.Get([]byte(key))
	if d == nil {
		return nil, ErrNotFound
	}

	// d is only valid for the life of the transaction
	return append([]byte(nil), d...), nil
}

func (s *BBolt) Set(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.Begin(true)
	if err != nil {
		return fmt.Errorf("kvstore.BBolt.Set: could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	b, err := tx.CreateBucketIfNotExists(bucketName)
	if err != nil {
		return fmt.Errorf("kvstore.BBolt.Set: could not create bucket: %w", err)
	}

	if value == nil {
		value = []byte{}
	}

	if err := b.Put([]byte(key), value); err != nil {
		return fmt.Errorf("kvstore.BBolt.Set: could not put value for %q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("kvstore.BBolt.Set: could not commit transaction: %w", err)
	}

	return nil
}

func (s *BBolt) Delete(ctx context.Context, key string) error {
	tx, err := s.db.Begin(true)
	if err != nil {
		return fmt.Errorf("kvstore.BBolt.Delete: could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	b := tx.Bucket(bucketName)
	if b == nil {
		return nil
	}

	if err := b.Delete([]byte(key)); err != nil {
		return fmt.Errorf("kvstore.BBolt.Delete: could not delete %q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("kvstore.BBolt.Delete: could not commit transaction: %w", err)
	}

	return nil
}
