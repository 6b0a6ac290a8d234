package ports

import (
	"context"
	"errors"

	"acessorios/internal/core"
)

// ErrNotFound is returned by stores when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Ports for record persistence. The dashboard talks to them through the
// remote client; the store server implements them over memory or SQLite.
type (
	RecordLister interface {
		// List returns every record in store order.
		List(ctx context.Context) ([]core.Record, error)
	}

	RecordCreator interface {
		// Create persists d and returns it with its assigned id and timestamp.
		Create(ctx context.Context, d core.Draft) (core.Record, error)
	}

	RecordUpdater interface {
		// Update replaces the record stored under id.
		Update(ctx context.Context, id string, r core.Record) (core.Record, error)
	}

	RecordDeleter interface {
		Delete(ctx context.Context, id string) error
	}

	// RecordStore is the full collection contract of the /usuarios endpoint.
	RecordStore interface {
		RecordLister
		RecordCreator
		RecordUpdater
		RecordDeleter
	}
)
