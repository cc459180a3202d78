// Package pipeline coordinates one upload event end to end: clean the OCR
// text, check for duplicates, call the model, reconcile, and persist.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"receipt-digitizer/internal/common"
	"receipt-digitizer/internal/entity"
	"receipt-digitizer/internal/llm"
	"receipt-digitizer/internal/normalize"
	"receipt-digitizer/internal/reconcile"
	"receipt-digitizer/internal/repository"
	"receipt-digitizer/internal/validate"
)

type Processor struct {
	logger *slog.Logger
	parser llm.ReceiptParser
	store  repository.Store
}

func NewProcessor(parser llm.ReceiptParser, store repository.Store, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, parser: parser, store: store}
}

// Process runs a single deterministic pass over one document. Duplicate
// documents (exact cleaned-text match) are rejected before any model call.
// If the model call fails, the failure surfaces unchanged and reconciliation
// is never attempted for that document.
func (p *Processor) Process(ctx context.Context, rawText string) (*entity.Receipt, error) {
	start := time.Now()

	clean := normalize.CleanText(rawText)
	if clean == "" {
		return nil, common.WrapError(common.ErrInvalidInput, "empty document text")
	}

	exists, err := p.store.ExistsByRawText(ctx, clean)
	if err != nil {
		return nil, err
	}
	if exists {
		p.logger.Warn("pipeline.duplicate", "text_len", len(clean))
		return nil, common.ErrDuplicate
	}

	response, err := p.parser.Parse(ctx, clean)
	if err != nil {
		return nil, common.WrapError(err, "model extraction")
	}

	res := reconcile.Reconcile(clean, response)
	rec := res.Receipt
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	rec.NeedsReview = p.needsReview(res)

	if err := p.store.Insert(ctx, rec); err != nil {
		return nil, err
	}

	attrs := []any{
		"receipt_id", rec.ID,
		"payload_ok", res.PayloadOK,
		"needs_review", rec.NeedsReview,
		"items", len(rec.LineItems),
		"elapsed_ms", time.Since(start).Milliseconds(),
	}
	if res.InvoiceID != nil {
		attrs = append(attrs, "invoice_id", *res.InvoiceID)
	}
	p.logger.Info("pipeline.ok", attrs...)
	return rec, nil
}

// needsReview flags records whose model payload failed to parse, failed
// strict schema validation, or still lacks required fields after fallbacks.
// The record is stored either way; review is a warning, not a rejection.
func (p *Processor) needsReview(res reconcile.Result) bool {
	if !res.PayloadOK {
		return true
	}
	if err := llm.ValidateAgainstSchema(llm.BuildReceiptSchema(), res.RawPayload); err != nil {
		p.logger.Warn("pipeline.payload_schema_mismatch", "error", err)
		return true
	}
	return !validate.Check(res.Receipt).RequiredFields
}
