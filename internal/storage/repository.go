// Package storage implements the SQLite-backed transaction source.
//
// The database is an ingestion sink for donation exports: an external
// process (or the Import helper) writes transactions and line items, and
// the engine loads the full set on startup and on reset. Aggregated state
// is never persisted here.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"donordash/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements source.TransactionSource: the full historical dataset,
// line items attached, in insertion order.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, phone, country, city, state, postcode,
		       value_cents, entry_date, payment_method, status, device,
		       gclid, fbclid, ttclid
		FROM transactions
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	var ids []int64
	for rows.Next() {
		var (
			id        int64
			rec       core.Record
			cents     int64
			entryDate string
		)
		if err := rows.Scan(&id, &rec.Name, &rec.Email, &rec.Phone, &rec.Country,
			&rec.City, &rec.State, &rec.Postcode, &cents, &entryDate,
			&rec.PaymentMethod, &rec.Status, &rec.Device,
			&rec.Gclid, &rec.Fbclid, &rec.Ttclid); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		rec.Value = core.Money{Cents: cents}
		rec.EntryDate = core.ParseDate(entryDate)
		records = append(records, rec)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	if err := r.attachItems(ctx, ids, records); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Loaded transactions from SQLite", "count", len(records))
	return records, nil
}

func (r *SQLiteRepository) attachItems(ctx context.Context, ids []int64, records []core.Record) error {
	if len(ids) == 0 {
		return nil
	}

	idx := make(map[int64]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT transaction_id, item_name, item_category, price_cents, quantity
		FROM line_items
		ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			txID  int64
			item  core.LineItem
			cents int64
		)
		if err := rows.Scan(&txID, &item.Name, &item.Category, &cents, &item.Quantity); err != nil {
			return fmt.Errorf("scan line item: %w", err)
		}
		item.Price = core.Money{Cents: cents}
		if i, ok := idx[txID]; ok {
			records[i].Items = append(records[i].Items, item)
		}
	}
	return rows.Err()
}

// Import inserts a batch of records, replacing the existing dataset. Used
// to seed the database from a JSON export.
func (r *SQLiteRepository) Import(ctx context.Context, records []core.Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM line_items`); err != nil {
		return fmt.Errorf("clear line items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	insertTx, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions
			(name, email, phone, country, city, state, postcode, value_cents,
			 entry_date, payment_method, status, device, gclid, fbclid, ttclid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare transaction insert: %w", err)
	}
	defer insertTx.Close()

	insertItem, err := tx.PrepareContext(ctx, `
		INSERT INTO line_items (transaction_id, item_name, item_category, price_cents, quantity)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare line item insert: %w", err)
	}
	defer insertItem.Close()

	for _, rec := range records {
		res, err := insertTx.ExecContext(ctx,
			rec.Name, rec.Email, rec.Phone, rec.Country, rec.City, rec.State,
			rec.Postcode, rec.Value.Cents, rec.EntryDate.Key(), rec.PaymentMethod,
			rec.Status, rec.Device, rec.Gclid, rec.Fbclid, rec.Ttclid)
		if err != nil {
			return fmt.Errorf("insert transaction for %s: %w", rec.Email, err)
		}
		txID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("transaction id for %s: %w", rec.Email, err)
		}
		for _, item := range rec.Items {
			if _, err := insertItem.ExecContext(ctx,
				txID, item.Name, item.Category, item.Price.Cents, item.Quantity); err != nil {
				return fmt.Errorf("insert line item %s: %w", item.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Imported transactions into SQLite", "count", len(records))
	return nil
}
