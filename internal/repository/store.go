// Package repository persists reconciled records. The engine never touches
// this layer; orchestration hands it finished records unchanged.
package repository

import (
	"context"

	"github.com/google/uuid"

	"receipt-digitizer/internal/entity"
)

// Store is the persistence boundary. Identity assignment happens before
// Insert; the store writes the record as-is.
type Store interface {
	// ExistsByRawText is the duplicate-detection hook: exact-match lookup on
	// the cleaned OCR text, checked before the pipeline runs.
	ExistsByRawText(ctx context.Context, rawText string) (bool, error)

	Insert(ctx context.Context, rec *entity.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	List(ctx context.Context) ([]*entity.Receipt, error)
	Close() error
}
