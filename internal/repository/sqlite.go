package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"receipt-digitizer/internal/common"
	"receipt-digitizer/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	id           TEXT PRIMARY KEY,
	vendor       TEXT,
	date         TEXT,
	total        REAL,
	tax          REAL,
	raw_text     TEXT NOT NULL,
	needs_review INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_receipts_raw_text ON receipts (raw_text);

CREATE TABLE IF NOT EXISTS items (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	receipt_id TEXT NOT NULL REFERENCES receipts (id),
	name       TEXT NOT NULL,
	quantity   INTEGER NOT NULL,
	price      REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_receipt_id ON items (receipt_id);
`

type sqliteStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the sqlite database at path.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open sqlite")
	}
	// modernc sqlite is happiest with a single writer connection.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "ping sqlite")
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "init sqlite schema")
	}
	logger.Info("sqlite.open", "path", path)
	return &sqliteStore{db: db, logger: logger}, nil
}

type receiptRow struct {
	ID          string   `db:"id"`
	Vendor      *string  `db:"vendor"`
	Date        *string  `db:"date"`
	Total       *float64 `db:"total"`
	Tax         *float64 `db:"tax"`
	RawText     string   `db:"raw_text"`
	NeedsReview int      `db:"needs_review"`
	CreatedAt   string   `db:"created_at"`
}

type itemRow struct {
	Name     string  `db:"name"`
	Quantity int     `db:"quantity"`
	Price    float64 `db:"price"`
}

func (s *sqliteStore) ExistsByRawText(ctx context.Context, rawText string) (bool, error) {
	var one int
	err := s.db.QueryRowxContext(ctx,
		`SELECT 1 FROM receipts WHERE raw_text = ? LIMIT 1`, rawText).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, common.WrapError(err, "duplicate lookup")
	}
	return true, nil
}

func (s *sqliteStore) Insert(ctx context.Context, rec *entity.Receipt) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	needsReview := 0
	if rec.NeedsReview {
		needsReview = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id, vendor, date, total, tax, raw_text, needs_review, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Vendor, rec.Date, rec.Total, rec.Tax,
		rec.RawText, needsReview, rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return common.WrapError(err, "insert receipt")
	}

	for _, it := range rec.LineItems {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO items (receipt_id, name, quantity, price) VALUES (?, ?, ?, ?)`,
			rec.ID.String(), it.Name, it.Quantity, it.Price)
		if err != nil {
			return common.WrapError(err, "insert item")
		}
	}

	if err := tx.Commit(); err != nil {
		return common.WrapError(err, "commit")
	}
	s.logger.Debug("sqlite.insert", "receipt_id", rec.ID, "items", len(rec.LineItems))
	return nil
}

func (s *sqliteStore) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	var row receiptRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, vendor, date, total, tax, raw_text, needs_review, created_at
		 FROM receipts WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get receipt")
	}
	return s.hydrate(ctx, &row)
}

func (s *sqliteStore) List(ctx context.Context) ([]*entity.Receipt, error) {
	var rows []receiptRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, vendor, date, total, tax, raw_text, needs_review, created_at
		 FROM receipts ORDER BY created_at DESC`)
	if err != nil {
		return nil, common.WrapError(err, "list receipts")
	}
	out := make([]*entity.Receipt, 0, len(rows))
	for i := range rows {
		rec, err := s.hydrate(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *sqliteStore) hydrate(ctx context.Context, row *receiptRow) (*entity.Receipt, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt receipt id %q: %w", row.ID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at %q: %w", row.CreatedAt, err)
	}

	var items []itemRow
	err = s.db.SelectContext(ctx, &items,
		`SELECT name, quantity, price FROM items WHERE receipt_id = ? ORDER BY id`, row.ID)
	if err != nil {
		return nil, common.WrapError(err, "list items")
	}

	rec := &entity.Receipt{
		ID:          id,
		Vendor:      row.Vendor,
		Date:        row.Date,
		Total:       row.Total,
		Tax:         row.Tax,
		RawText:     row.RawText,
		NeedsReview: row.NeedsReview != 0,
		CreatedAt:   createdAt,
		LineItems:   make([]entity.LineItem, 0, len(items)),
	}
	for _, it := range items {
		rec.LineItems = append(rec.LineItems, entity.LineItem{
			Name: it.Name, Quantity: it.Quantity, Price: it.Price,
		})
	}
	return rec, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
