// Package app holds the dashboard's application state: a disposable snapshot
// of the remote record list plus the operations that change it.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"acessorios/internal/core"
	applog "acessorios/internal/log"
	"acessorios/internal/metrics"
	"acessorios/internal/ports"
)

// ErrStaleRefresh marks a refresh result that arrived after a newer one had
// already been applied. It is logged, never returned.
var ErrStaleRefresh = errors.New("stale refresh discarded")

// ErrRecordNotFound is returned by Find for ids absent from the snapshot.
var ErrRecordNotFound = errors.New("record not in snapshot")

// State is the single owner of the record snapshot. The snapshot is only
// ever replaced by Refresh; writes go to the store and are followed by a
// refresh rather than patched in locally.
type State struct {
	store  ports.RecordStore
	logger *applog.Logger
	events *applog.StructuredLogger

	mu      sync.RWMutex
	records []core.Record
	applied uint64

	issued atomic.Uint64
	ready  atomic.Bool
}

// New returns an empty, not yet ready State backed by store.
func New(store ports.RecordStore, logger *applog.Logger) *State {
	if logger == nil {
		logger = applog.Default(applog.ComponentState)
	}
	return &State{
		store:  store,
		logger: logger,
		events: applog.NewStructuredLogger(logger),
	}
}

// Records returns a copy of the current snapshot in store order.
func (s *State) Records() []core.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Record(nil), s.records...)
}

// Find returns the snapshot record with the given id.
func (s *State) Find(id string) (core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return core.Record{}, ErrRecordNotFound
}

// Ready reports whether at least one refresh has succeeded.
func (s *State) Ready() bool {
	return s.ready.Load()
}

// Overview computes the dashboard view of the current snapshot.
func (s *State) Overview(filter core.Filter) core.Overview {
	return core.Dashboard(s.Records(), filter)
}

// Refresh replaces the snapshot with the store's current list. Results are
// sequenced: a response is dropped when a later-issued refresh has already
// been applied, so concurrent refreshes never regress the snapshot.
func (s *State) Refresh(ctx context.Context) error {
	seq := s.issued.Add(1)

	records, err := s.store.List(ctx)
	if err != nil {
		s.events.LogError(ctx, "Refresh failed", err, applog.OpRefresh,
			applog.NewFields().With(applog.FieldSequence, seq))
		return fmt.Errorf("refresh records: %w", err)
	}

	s.mu.Lock()
	if seq < s.applied {
		latest := s.applied
		s.mu.Unlock()
		metrics.StaleRefreshes.Inc()
		s.logger.WarnContext(ctx, "Discarding refresh result",
			applog.FieldSequence, seq,
			"applied_sequence", latest,
			applog.FieldError, ErrStaleRefresh)
		return nil
	}
	s.records = records
	s.applied = seq
	s.mu.Unlock()

	s.ready.Store(true)
	metrics.RecordsCached.Set(float64(len(records)))
	s.logger.DebugContext(ctx, "Snapshot refreshed",
		applog.FieldSequence, seq,
		applog.FieldCount, len(records))
	return nil
}

// Create stores a new record and refreshes the snapshot. A failed refresh
// after a successful write is logged only: the write is durable and the
// next refresh repairs the view.
func (s *State) Create(ctx context.Context, draft core.Draft) (core.Record, error) {
	rec, err := s.store.Create(ctx, draft)
	if err != nil {
		s.events.LogError(ctx, "Create failed", err, applog.OpCreate,
			applog.NewFields().WithRecord("", draft.ProductID, draft.Sector, draft.Quantity, draft.Total.Cents))
		return core.Record{}, fmt.Errorf("create record: %w", err)
	}
	s.events.LogRecordWritten(ctx, applog.OpCreate, rec.ID, rec.ProductID, rec.Sector, rec.Quantity, rec.Total.Cents)
	s.refreshAfterWrite(ctx)
	return rec, nil
}

// Update replaces rec in the store and refreshes the snapshot.
func (s *State) Update(ctx context.Context, rec core.Record) (core.Record, error) {
	out, err := s.store.Update(ctx, rec.ID, rec)
	if err != nil {
		s.events.LogError(ctx, "Update failed", err, applog.OpUpdate,
			applog.NewFields().WithRecord(rec.ID, rec.ProductID, rec.Sector, rec.Quantity, rec.Total.Cents))
		return core.Record{}, fmt.Errorf("update record %s: %w", rec.ID, err)
	}
	s.events.LogRecordWritten(ctx, applog.OpUpdate, out.ID, out.ProductID, out.Sector, out.Quantity, out.Total.Cents)
	s.refreshAfterWrite(ctx)
	return out, nil
}

// Delete removes the record with id and refreshes the snapshot.
func (s *State) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.events.LogError(ctx, "Delete failed", err, applog.OpDelete,
			applog.NewFields().With(applog.FieldRecordID, id))
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Record deleted", applog.FieldRecordID, id)
	s.refreshAfterWrite(ctx)
	return nil
}

func (s *State) refreshAfterWrite(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "Snapshot not refreshed after write", applog.FieldError, err.Error())
	}
}
