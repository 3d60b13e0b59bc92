package kvstore

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("kvstore: key not found")
)

// Store holds opaque values under string keys. Get returns ErrNotFound for
// keys that have never been set or have been deleted.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Memory struct {
	m sync.RWMutex
	d map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{d: make(map[string][]byte)}
}

func (s *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	v, ok := s.d[key]
	if !ok {
		return nil, ErrNotFound
	}

	return append([]byte(nil), v...), nil
}

func (s *Memory) Set(ctx context.Context, key string, value []byte) error {
	s.m.Lock()
	defer s.m.Unlock()

	s.d[key] = append([]byte(nil), value...)

	return nil
}

func (s *Memory) Delete(ctx context.Context, key string) error {
	s.m.Lock()
	defer s.m.Unlock()

	delete(s.d, key)

	return nil
}
