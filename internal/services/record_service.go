package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"acessorios/internal/amqp"
	"acessorios/internal/core"
	applog "acessorios/internal/log"
	"acessorios/internal/ports"
)

// ErrInvalidRecord wraps domain validation failures so the transport can
// answer 400 without knowing every core sentinel.
var ErrInvalidRecord = errors.New("invalid record")

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, t amqp.EventType, id string) error
}

// RecordService validates writes, persists them through a store and
// announces them on the event bus. The store is the source of truth:
// publish failures are logged and never fail the request.
type RecordService struct {
	store     ports.RecordStore
	publisher EventPublisher
	logger    *applog.Logger
}

// NewRecordService builds the service; publisher may be nil.
func NewRecordService(store ports.RecordStore, publisher EventPublisher) *RecordService {
	return &RecordService{
		store:     store,
		publisher: publisher,
		logger:    applog.Default(applog.ComponentStore),
	}
}

func (s *RecordService) List(ctx context.Context) ([]core.Record, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (s *RecordService) Create(ctx context.Context, d core.Draft) (core.Record, error) {
	if err := d.Validate(); err != nil {
		return core.Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	rec, err := s.store.Create(ctx, d)
	if err != nil {
		return core.Record{}, fmt.Errorf("save record: %w", err)
	}
	s.publish(ctx, amqp.EventCreated, rec.ID)
	return rec, nil
}

func (s *RecordService) Update(ctx context.Context, id string, r core.Record) (core.Record, error) {
	if err := r.Draft.Validate(); err != nil {
		return core.Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	rec, err := s.store.Update(ctx, id, r)
	if err != nil {
		return core.Record{}, fmt.Errorf("update record: %w", err)
	}
	s.publish(ctx, amqp.EventUpdated, id)
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.publish(ctx, amqp.EventDeleted, id)
	return nil
}

func (s *RecordService) publish(ctx context.Context, t amqp.EventType, id string) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping event", applog.FieldRecordID, id)
		return
	}
	if err := s.publisher.PublishRecordEvent(ctx, t, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish record event",
			"type", t,
			applog.FieldRecordID, id,
			applog.FieldError, err)
	}
}

// Close closes the store and the publisher when they hold resources.
func (s *RecordService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %w", errors.Join(errs...))
	}
	return nil
}
