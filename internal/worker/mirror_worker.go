// Package worker keeps the spreadsheet mirror in step with the record store.
package worker

import (
	"context"
	"fmt"
	"sync"

	"acessorios/internal/amqp"
	"acessorios/internal/core"
	applog "acessorios/internal/log"
	"acessorios/internal/metrics"
	"acessorios/internal/ports"
)

// SheetWriter replaces the mirrored rows; *google.Mirror implements it.
type SheetWriter interface {
	Replace(ctx context.Context, records []core.Record) error
}

// MirrorWorker rewrites the whole sheet from a fresh store listing. Events
// only say that something changed, so every kind is handled the same way
// and a lost event is repaired by the next one or the periodic resync.
type MirrorWorker struct {
	lister ports.RecordLister
	sheet  SheetWriter
	logger *applog.Logger

	mu sync.Mutex
}

func NewMirrorWorker(lister ports.RecordLister, sheet SheetWriter) *MirrorWorker {
	return &MirrorWorker{
		lister: lister,
		sheet:  sheet,
		logger: applog.Default(applog.ComponentWorker),
	}
}

// HandleEvent processes a single record event from AMQP. A returned error
// makes the consumer requeue the message.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.RecordEvent) error {
	w.logger.InfoContext(ctx, "Processing record event",
		"type", ev.Type,
		applog.FieldRecordID, ev.ID,
		"event_time", ev.Timestamp)

	if err := w.sync(ctx); err != nil {
		return fmt.Errorf("mirror after %s %s: %w", ev.Type, ev.ID, err)
	}
	return nil
}

// StartupSync mirrors the current store state before events are consumed,
// covering changes made while the worker was down.
func (w *MirrorWorker) StartupSync(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Performing startup sync")
	if err := w.sync(ctx); err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	return nil
}

// Resync is the periodic job that repairs missed events.
func (w *MirrorWorker) Resync(ctx context.Context) error {
	return w.sync(ctx)
}

func (w *MirrorWorker) sync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	records, err := w.lister.List(ctx)
	if err != nil {
		metrics.MirrorRuns.WithLabelValues("list_error").Inc()
		return fmt.Errorf("list records: %w", err)
	}
	if err := w.sheet.Replace(ctx, records); err != nil {
		metrics.MirrorRuns.WithLabelValues("write_error").Inc()
		return fmt.Errorf("write sheet: %w", err)
	}

	metrics.MirrorRuns.WithLabelValues("ok").Inc()
	w.logger.InfoContext(ctx, "Mirror synced", applog.FieldCount, len(records))
	return nil
}
