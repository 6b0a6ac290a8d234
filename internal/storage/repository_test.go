package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acessorios/internal/core"
	"acessorios/internal/ports"
)

var _ ports.RecordStore = (*SQLiteRepository)(nil)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func draft(t *testing.T, product int, sector string, qty int) core.Draft {
	t.Helper()
	d, err := core.NewDraft(product, sector, qty, 5, 2025)
	require.NoError(t, err)
	return d
}

func TestSQLiteRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	repo.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 123456789, time.UTC) }

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	a, err := repo.Create(ctx, draft(t, 101, "TI", 3))
	require.NoError(t, err)
	b, err := repo.Create(ctx, draft(t, 107, "MANUTENÇÃO", 1))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int64(1746100800123), a.CreatedAt.UnixMilli())

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a, list[0])
	assert.Equal(t, "MANUTENÇÃO", list[1].Sector)
	assert.Equal(t, int64(21840), list[0].Total.Cents)

	changed := a
	changed.Draft = draft(t, 102, "RH", 1)
	repo.now = func() time.Time { return time.Now() }
	updated, err := repo.Update(ctx, a.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, "RH", updated.Sector)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt, "update keeps the original timestamp")

	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, list[0].ID, "update keeps position")

	require.NoError(t, repo.Delete(ctx, a.ID))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestSQLiteRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	err := repo.Delete(ctx, "missing")
	assert.True(t, errors.Is(err, ports.ErrNotFound))

	_, err = repo.Update(ctx, "missing", core.Record{Draft: draft(t, 101, "TI", 1)})
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	require.NoError(t, RunMigrations(path))
}
