package llm

import (
	"context"

	"receipt-digitizer/internal/entity"
)

// Payload is the untrusted structured guess recovered from a model response.
// Every field is optional; the interpreter guarantees LineItems is non-nil
// and each item is well-typed.
type Payload struct {
	Vendor    *string           `json:"vendor"`
	Date      *string           `json:"date"`
	Total     *float64          `json:"total"`
	Tax       *float64          `json:"tax"`
	LineItems []entity.LineItem `json:"line_items"`
}

// ReceiptParser is the boundary to the external model call. The engine never
// invokes it; orchestration does, and hands the raw response text down.
type ReceiptParser interface {
	// Parse asks the model for a structured read of the OCR text and returns
	// the raw response text. Transport failures surface unchanged.
	Parse(ctx context.Context, ocrText string) (string, error)

	// VerifyKey checks the configured credential with a minimal call.
	VerifyKey(ctx context.Context) error
}
