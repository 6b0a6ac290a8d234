package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"acessorios/internal/core"
	applog "acessorios/internal/log"
	"acessorios/internal/ports"

	_ "modernc.org/sqlite"
)

const recordColumns = `id, product_id, name, sector, quantity, unit_cents, total_cents, stock_after, month, year, created_ms`

// SQLiteRepository implements ports.RecordStore on a local SQLite file.
type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
	now    func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps
	// seq assignment in Create race-free.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: applog.Default(applog.ComponentStorage),
		now:    time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// List implements ports.RecordLister; records come back in insertion order.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := []core.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Create implements ports.RecordCreator. The id and timestamp are assigned here.
func (r *SQLiteRepository) Create(ctx context.Context, d core.Draft) (core.Record, error) {
	rec := core.Record{
		ID:        core.NewID(),
		Draft:     d,
		CreatedAt: core.NewTimestamp(r.now()),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records))`,
		rec.ID, d.ProductID, d.Name, d.Sector, d.Quantity,
		d.UnitPrice.Cents, d.Total.Cents, d.StockAfter, d.Month, d.Year,
		rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}

	r.logger.InfoContext(ctx, "Record saved to SQLite", applog.NewFields().
		WithRecord(rec.ID, d.ProductID, d.Sector, d.Quantity, d.Total.Cents).
		WithPeriod(d.Month, d.Year).ToSlice()...)
	return rec, nil
}

// Update implements ports.RecordUpdater. The original timestamp is kept.
func (r *SQLiteRepository) Update(ctx context.Context, id string, rec core.Record) (core.Record, error) {
	d := rec.Draft
	res, err := r.db.ExecContext(ctx, `
		UPDATE records
		SET product_id = ?, name = ?, sector = ?, quantity = ?, unit_cents = ?,
		    total_cents = ?, stock_after = ?, month = ?, year = ?
		WHERE id = ?`,
		d.ProductID, d.Name, d.Sector, d.Quantity, d.UnitPrice.Cents,
		d.Total.Cents, d.StockAfter, d.Month, d.Year, id,
	)
	if err != nil {
		return core.Record{}, fmt.Errorf("update record %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return core.Record{}, fmt.Errorf("update record %s: %w", id, err)
	} else if n == 0 {
		return core.Record{}, ports.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	out, err := scanRecord(row)
	if err != nil {
		return core.Record{}, fmt.Errorf("reload record %s: %w", id, err)
	}

	r.logger.InfoContext(ctx, "Record updated in SQLite", applog.NewFields().
		WithRecord(id, d.ProductID, d.Sector, d.Quantity, d.Total.Cents).ToSlice()...)
	return out, nil
}

// Delete implements ports.RecordDeleter.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Record deleted from SQLite", applog.FieldRecordID, id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (core.Record, error) {
	var (
		rec       core.Record
		createdMs int64
	)
	err := s.Scan(
		&rec.ID, &rec.ProductID, &rec.Name, &rec.Sector, &rec.Quantity,
		&rec.UnitPrice.Cents, &rec.Total.Cents, &rec.StockAfter,
		&rec.Month, &rec.Year, &createdMs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, ports.ErrNotFound
	}
	if err != nil {
		return core.Record{}, err
	}
	rec.CreatedAt = core.Timestamp{Time: time.UnixMilli(createdMs).UTC()}
	return rec, nil
}
