package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"receipt-digitizer/internal/common"
	"receipt-digitizer/internal/entity"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	id           UUID PRIMARY KEY,
	vendor       TEXT,
	date         TEXT,
	total        DOUBLE PRECISION,
	tax          DOUBLE PRECISION,
	raw_text     TEXT NOT NULL,
	needs_review BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_receipts_raw_text ON receipts (raw_text);

CREATE TABLE IF NOT EXISTS items (
	id         BIGSERIAL PRIMARY KEY,
	receipt_id UUID NOT NULL REFERENCES receipts (id),
	name       TEXT NOT NULL,
	quantity   INTEGER NOT NULL,
	price      DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_receipt_id ON items (receipt_id);
`

// PostgresConfig tunes the pgx pool.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

type postgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool, verifies connectivity, and ensures the schema.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, common.WrapError(err, "parse postgres dsn")
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "receipt-digitizer"

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, common.WrapError(err, "connect postgres")
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, common.WrapError(err, "ping postgres")
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, common.WrapError(err, "init postgres schema")
	}
	logger.Info("postgres.open", "max_conns", cfg.MaxConns)
	return &postgresStore{pool: pool, logger: logger}, nil
}

func (s *postgresStore) ExistsByRawText(ctx context.Context, rawText string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM receipts WHERE raw_text = $1 LIMIT 1`, rawText).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, common.WrapError(err, "duplicate lookup")
	}
	return true, nil
}

func (s *postgresStore) Insert(ctx context.Context, rec *entity.Receipt) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return common.WrapError(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO receipts (id, vendor, date, total, tax, raw_text, needs_review, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Vendor, rec.Date, rec.Total, rec.Tax,
		rec.RawText, rec.NeedsReview, rec.CreatedAt.UTC())
	if err != nil {
		return common.WrapError(err, "insert receipt")
	}

	for _, it := range rec.LineItems {
		_, err = tx.Exec(ctx,
			`INSERT INTO items (receipt_id, name, quantity, price) VALUES ($1, $2, $3, $4)`,
			rec.ID, it.Name, it.Quantity, it.Price)
		if err != nil {
			return common.WrapError(err, "insert item")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return common.WrapError(err, "commit")
	}
	s.logger.Debug("postgres.insert", "receipt_id", rec.ID, "items", len(rec.LineItems))
	return nil
}

func (s *postgresStore) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	rec := &entity.Receipt{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, vendor, date, total, tax, raw_text, needs_review, created_at
		 FROM receipts WHERE id = $1`, id).
		Scan(&rec.ID, &rec.Vendor, &rec.Date, &rec.Total, &rec.Tax,
			&rec.RawText, &rec.NeedsReview, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get receipt")
	}
	if err := s.loadItems(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *postgresStore) List(ctx context.Context) ([]*entity.Receipt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, vendor, date, total, tax, raw_text, needs_review, created_at
		 FROM receipts ORDER BY created_at DESC`)
	if err != nil {
		return nil, common.WrapError(err, "list receipts")
	}
	defer rows.Close()

	var out []*entity.Receipt
	for rows.Next() {
		rec := &entity.Receipt{}
		if err := rows.Scan(&rec.ID, &rec.Vendor, &rec.Date, &rec.Total, &rec.Tax,
			&rec.RawText, &rec.NeedsReview, &rec.CreatedAt); err != nil {
			return nil, common.WrapError(err, "scan receipt")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "iterate receipts")
	}
	for _, rec := range out {
		if err := s.loadItems(ctx, rec); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *postgresStore) loadItems(ctx context.Context, rec *entity.Receipt) error {
	rows, err := s.pool.Query(ctx,
		`SELECT name, quantity, price FROM items WHERE receipt_id = $1 ORDER BY id`, rec.ID)
	if err != nil {
		return common.WrapError(err, "list items")
	}
	defer rows.Close()

	rec.LineItems = []entity.LineItem{}
	for rows.Next() {
		var it entity.LineItem
		if err := rows.Scan(&it.Name, &it.Quantity, &it.Price); err != nil {
			return common.WrapError(err, "scan item")
		}
		rec.LineItems = append(rec.LineItems, it)
	}
	return rows.Err()
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}
