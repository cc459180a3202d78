package entity

import (
	"time"

	"github.com/google/uuid"
)

// LineItem is a single purchased item after normalization. Quantity is always
// a positive integer and Price a non-negative amount rounded to two decimals.
type LineItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Receipt is the reconciled record produced by the engine: one per upload,
// immutable once built. Nil pointers mean the field could not be resolved
// from any source; they are never silently defaulted.
type Receipt struct {
	ID          uuid.UUID  `json:"id"`
	Vendor      *string    `json:"vendor,omitempty"`
	Date        *string    `json:"date,omitempty"` // ISO YYYY-MM-DD
	Total       *float64   `json:"total,omitempty"`
	Tax         *float64   `json:"tax,omitempty"`
	LineItems   []LineItem `json:"line_items"`
	RawText     string     `json:"-"`
	NeedsReview bool       `json:"needs_review"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Subtotal is the line-item arithmetic Σ(price × quantity).
func (r *Receipt) Subtotal() float64 {
	var sum float64
	for _, it := range r.LineItems {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}
