// Package reconcile merges the model payload, the regex fallback extractors,
// and line-item arithmetic into one internally consistent record.
package reconcile

import (
	"receipt-digitizer/constants"
	"receipt-digitizer/internal/entity"
	"receipt-digitizer/internal/extract"
	"receipt-digitizer/internal/llm"
	"receipt-digitizer/internal/normalize"
)

// Result carries the reconciled record plus signals about the model payload
// that orchestration uses for review flagging and logging.
type Result struct {
	Receipt *entity.Receipt

	// RawPayload is the JSON span recovered from the model response, nil when
	// no braces were found. PayloadOK reports whether it parsed as JSON.
	RawPayload []byte
	PayloadOK  bool

	// InvoiceID is exposed for callers; it is not part of the record.
	InvoiceID *string
}

// Reconcile runs the fixed five-step pipeline over clean OCR text and the
// model's raw response. A single deterministic pass, pure, no I/O; no error
// can escape for any pair of string inputs.
func Reconcile(ocrText, modelResponse string) Result {
	// 1. Interpret the model payload.
	payload, raw, ok := llm.ExtractPayload(modelResponse)

	// 2. Regex fallback for fields the model left absent.
	date := payload.Date
	if date == nil {
		date = extract.Date(ocrText)
	}
	total := payload.Total
	if total == nil {
		total = extract.Total(ocrText)
	}

	// 3. Tax always comes from the text, anchored on the resolved total. The
	// model's tax value is the least reliable signal and is discarded.
	tax := extract.Tax(ocrText, total)

	// 4. Normalize.
	date = normalize.Date(date)
	total = normalize.FixDecimal(total)
	tax = normalize.FixDecimal(tax)

	// 5. Cross-validate the total against line-item arithmetic. The override
	// is a fixed point: re-running reconciliation cannot move the total again.
	if len(payload.LineItems) > 0 && tax != nil {
		subtotal := 0.0
		for _, it := range payload.LineItems {
			subtotal += it.Price * float64(it.Quantity)
		}
		computed := normalize.Round2(subtotal + *tax)
		if total == nil || abs(computed-*total) > constants.TotalOverrideTolerance {
			total = &computed
		}
	}

	return Result{
		Receipt: &entity.Receipt{
			Vendor:    payload.Vendor,
			Date:      date,
			Total:     total,
			Tax:       tax,
			LineItems: payload.LineItems,
			RawText:   ocrText,
		},
		RawPayload: raw,
		PayloadOK:  ok,
		InvoiceID:  extract.InvoiceID(ocrText),
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
