package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"acessorios/internal/core"
	"acessorios/internal/ports"
)

// SeedFile is the optional file, inside the data directory, whose records
// are loaded at startup.
const SeedFile = "seed_records.json"

// Store keeps records in insertion order for the lifetime of the process.
type Store struct {
	mu    sync.Mutex
	items []core.Record
	now   func() time.Time
}

func New(seed []core.Record) *Store {
	s := &Store{now: time.Now}
	for _, r := range seed {
		if r.Validate() == nil {
			s.items = append(s.items, r)
		}
	}
	return s
}

// NewFromFiles seeds the store from base/seed_records.json when present.
// A missing or unreadable file yields an empty store.
func NewFromFiles(base string) *Store {
	data, err := os.ReadFile(filepath.Join(base, SeedFile))
	if err != nil {
		return New(nil)
	}
	var seed []core.Record
	if err := json.Unmarshal(data, &seed); err != nil {
		return New(nil)
	}
	return New(seed)
}

func (s *Store) List(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record{}, s.items...), nil
}

// Create stores the draft under a fresh id and timestamp.
func (s *Store) Create(_ context.Context, d core.Draft) (core.Record, error) {
	if err := d.Validate(); err != nil {
		return core.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := core.Record{ID: core.NewID(), Draft: d, CreatedAt: core.NewTimestamp(s.now())}
	s.items = append(s.items, rec)
	return rec, nil
}

// Update replaces the record fields but keeps its position and timestamp.
func (s *Store) Update(_ context.Context, id string, r core.Record) (core.Record, error) {
	if err := r.Draft.Validate(); err != nil {
		return core.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Draft = r.Draft
			return s.items[i], nil
		}
	}
	return core.Record{}, ports.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ports.ErrNotFound
}
