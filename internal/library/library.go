package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"fknsrs.biz/p/viddown/internal/kvstore"
	"fknsrs.biz/p/viddown/internal/stringutil"
	"fknsrs.biz/p/viddown/models"
)

const Key = "viddown-downloads"

type Sort string

const (
	SortStored = Sort("")
	SortDate   = Sort("date")
	SortName   = Sort("name")
	SortSize   = Sort("size")
)

var ErrUnknownSort = errors.New("library: unknown sort")

func ParseSort(s string) (Sort, error) {
	switch v := Sort(strings.ToLower(strings.TrimSpace(s))); v {
	case SortStored, SortDate, SortName, SortSize:
		return v, nil
	default:
		return SortStored, fmt.Errorf("library.ParseSort: %w: %q", ErrUnknownSort, s)
	}
}

type ListOptions struct {
	Query string
	Sort  Sort
}

type ChangeKind string

const (
	ChangeAdded   = ChangeKind("added")
	ChangeRemoved = ChangeKind("removed")
)

type Change struct {
	Kind   ChangeKind            `json:"kind"`
	Record models.DownloadRecord `json:"record"`
}

type Store struct {
	m      sync.RWMutex
	kv     kvstore.Store
	logger logrus.FieldLogger
	a      []models.DownloadRecord

	sm   sync.Mutex
	next int
	subs map[int]func(Change)
}

// Open reads the persisted downloads once. A missing or unreadable blob
// starts an empty library; it is never an error.
func Open(ctx context.Context, kv kvstore.Store, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Store{kv: kv, logger: logger, subs: make(map[int]func(Change))}

	l := logger.WithField("kv.key", Key)

	d, err := kv.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			l.WithError(err).Warning("could not read downloads; starting empty")
		}

		return s
	}

	var a []models.DownloadRecord
	if err := json.Unmarshal(d, &a); err != nil {
		l.WithError(err).Warning("downloads blob is malformed; starting empty")
		return s
	}

	for i := range a {
		if a[i].SizeBytes == 0 && a[i].Size != "" {
			if n, err := models.ParseSize(a[i].Size); err == nil {
				a[i].SizeBytes = n
			} else {
				l.WithError(err).WithField("record.id", a[i].ID).Debug("could not back-fill record size")
			}
		}
	}

	s.a = a

	l.WithField("library.count", len(a)).Debug("loaded downloads")

	return s
}

func (s *Store) persist(ctx context.Context, a []models.DownloadRecord) error {
	if a == nil {
		a = []models.DownloadRecord{}
	}

	d, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("could not encode downloads: %w", err)
	}

	if err := s.kv.Set(ctx, Key, d); err != nil {
		return fmt.Errorf("could not write downloads: %w", err)
	}

	return nil
}

// AddRecord puts r at the front of the library and persists it. On a write
// failure the library is left unchanged.
func (s *Store) AddRecord(ctx context.Context, r models.DownloadRecord) error {
	s.m.Lock()

	a := make([]models.DownloadRecord, 0, len(s.a)+1)
	a = append(a, r)
	a = append(a, s.a...)

	if err := s.persist(ctx, a); err != nil {
		s.m.Unlock()
		return fmt.Errorf("library.Store.AddRecord: %w", err)
	}

	s.a = a

	s.m.Unlock()

	s.logger.WithFields(logrus.Fields{
		"record.id":      r.ID,
		"record.title":   r.Title,
		"record.quality": r.Quality,
	}).Info("download added to library")

	s.notify(Change{Kind: ChangeAdded, Record: r})

	return nil
}

// RemoveRecord deletes the record with the given id. Unknown ids are ignored.
func (s *Store) RemoveRecord(ctx context.Context, id models.RecordID) error {
	s.m.Lock()

	i := s.indexOf(id)
	if i == -1 {
		s.m.Unlock()
		return nil
	}

	r := s.a[i]

	a := make([]models.DownloadRecord, 0, len(s.a)-1)
	a = append(a, s.a[:i]...)
	a = append(a, s.a[i+1:]...)

	if err := s.persist(ctx, a); err != nil {
		s.m.Unlock()
		return fmt.Errorf("library.Store.RemoveRecord: %w", err)
	}

	s.a = a

	s.m.Unlock()

	s.logger.WithField("record.id", id).Info("download removed from library")

	s.notify(Change{Kind: ChangeRemoved, Record: r})

	return nil
}

func (s *Store) indexOf(id models.RecordID) int {
	for i, e := range s.a {
		if e.ID == id {
			return i
		}
	}

	return -1
}

func (s *Store) Get(id models.RecordID) (models.DownloadRecord, bool) {
	s.m.RLock()
	defer s.m.RUnlock()

	if i := s.indexOf(id); i != -1 {
		return s.a[i], true
	}

	return models.DownloadRecord{}, false
}

func (s *Store) Len() int {
	s.m.RLock()
	defer s.m.RUnlock()

	return len(s.a)
}

// Recent returns up to n records, newest first.
func (s *Store) Recent(n int) []models.DownloadRecord {
	s.m.RLock()
	defer s.m.RUnlock()

	if n < 0 {
		n = 0
	}
	if n > len(s.a) {
		n = len(s.a)
	}

	return append([]models.DownloadRecord{}, s.a[:n]...)
}

// List filters and orders a copy of the library; stored order is untouched.
func (s *Store) List(opts ListOptions) []models.DownloadRecord {
	s.m.RLock()
	a := make([]models.DownloadRecord, 0, len(s.a))
	for _, e := range s.a {
		if matches(e, opts.Query) {
			a = append(a, e)
		}
	}
	s.m.RUnlock()

	switch opts.Sort {
	case SortDate:
		sort.SliceStable(a, func(i, j int) bool { return a[i].DownloadDate.After(a[j].DownloadDate) })
	case SortName:
		sort.SliceStable(a, func(i, j int) bool { return strings.ToLower(a[i].Title) < strings.ToLower(a[j].Title) })
	case SortSize:
		sort.SliceStable(a, func(i, j int) bool { return a[i].SizeBytes > a[j].SizeBytes })
	}

	return a
}

func matches(r models.DownloadRecord, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}

	return stringutil.ContainsFold(r.Title, query) || stringutil.ContainsFold(r.Channel, query)
}

// Subscribe registers fn to be called after every add or remove. The
// returned function unregisters it.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.sm.Lock()
	defer s.sm.Unlock()

	s.next++
	id := s.next
	s.subs[id] = fn

	return func() {
		s.sm.Lock()
		defer s.sm.Unlock()

		delete(s.subs, id)
	}
}

func (s *Store) notify(c Change) {
	s.sm.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.sm.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
