// Package extract holds the regex fallback extractors for receipt fields.
// Each extractor is a pure function over raw OCR text and returns nil when no
// candidate survives; the tie-break rules (last match for date/total, maximum
// surviving candidate for tax) are deliberate and relied on downstream.
package extract

import (
	"regexp"
	"strconv"
)

var (
	reDate    = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{4}[/-]\d{2}[/-]\d{2})\b`)
	reTotal   = regexp.MustCompile(`(?i)\b(?:total|grand\s*total|amount\s*payable)\s*[:$]?\s*(\d+\.\d{2})`)
	reTax     = regexp.MustCompile(`(?i)\b(?:tax|gst|vat|cgst|sgst)\s*\d*\s*[:$]?\s*(\d+\.\d{2})`)
	reInvoice = regexp.MustCompile(`(?i)\b(?:invoice|receipt|bill)\s*(?:no|#)?\s*[:\-]?\s*([A-Za-z0-9/-]+)`)
)

// Date returns the last date-like token in the text. Receipts often print an
// issue date near the top and a footer date near the bottom; the footer date
// is the more reliable one for this corpus.
func Date(text string) *string {
	ms := reDate.FindAllStringSubmatch(text, -1)
	if len(ms) == 0 {
		return nil
	}
	d := ms[len(ms)-1][1]
	return &d
}

// Total returns the last labelled total amount. Subtotal lines precede the
// grand total in typical layouts, so the last match wins.
func Total(text string) *float64 {
	ms := reTotal.FindAllStringSubmatch(text, -1)
	if len(ms) == 0 {
		return nil
	}
	v, err := strconv.ParseFloat(ms[len(ms)-1][1], 64)
	if err != nil {
		return nil
	}
	return &v
}

// Tax returns the largest tax-labelled amount strictly below the known total.
// A tax amount can never reach the total it is part of, so candidates at or
// above the anchor are mis-OCR'd totals and are discarded. Picking the
// maximum survivor guards against partial tax-line fragments.
func Tax(text string, total *float64) *float64 {
	ms := reTax.FindAllStringSubmatch(text, -1)
	var best *float64
	for _, m := range ms {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if total != nil && v >= *total {
			continue
		}
		if best == nil || v > *best {
			v := v
			best = &v
		}
	}
	return best
}

// InvoiceID returns the first invoice/receipt/bill identifier token.
func InvoiceID(text string) *string {
	m := reInvoice.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	id := m[1]
	return &id
}
