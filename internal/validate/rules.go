// Package validate is a read-only battery of business-rule checks over a
// reconciled record. Nothing here mutates or corrects; failures are reported
// so downstream surfaces can flag the record instead of rejecting it.
package validate

import (
	"time"

	"receipt-digitizer/constants"
	"receipt-digitizer/internal/entity"
)

// Date status values, surfaced as-is by display layers.
const (
	StatusNoDate      = "no date found"
	StatusInvalidDate = "invalid date format"
	StatusValidDate   = "valid date format"
)

// Report is derived on demand from a record and never stored.
type Report struct {
	Subtotal         float64 `json:"subtotal"`
	TotalConsistent  bool    `json:"total_consistent"`
	DateStatus       string  `json:"date_status"`
	RequiredFields   bool    `json:"required_fields"`
	TaxRatePlausible bool    `json:"tax_rate_plausible"`
}

// Check runs every rule. Each is independent and side-effect-free.
func Check(rec *entity.Receipt) Report {
	subtotal := rec.Subtotal()
	return Report{
		Subtotal:         subtotal,
		TotalConsistent:  totalConsistent(rec, subtotal),
		DateStatus:       dateStatus(rec.Date),
		RequiredFields:   requiredFields(rec),
		TaxRatePlausible: taxRatePlausible(rec.Tax, subtotal),
	}
}

// totalConsistent passes iff |subtotal + (tax or 0) − total| is within
// tolerance. Reported, never corrected: the engine's override already ran.
func totalConsistent(rec *entity.Receipt, subtotal float64) bool {
	if rec.Total == nil || len(rec.LineItems) == 0 {
		return false
	}
	tax := 0.0
	if rec.Tax != nil {
		tax = *rec.Tax
	}
	diff := subtotal + tax - *rec.Total
	if diff < 0 {
		diff = -diff
	}
	return diff < constants.TotalValidationTolerance
}

func dateStatus(date *string) string {
	if date == nil || *date == "" || *date == constants.UnknownSentinel {
		return StatusNoDate
	}
	if _, err := time.Parse("2006-01-02", *date); err != nil {
		return StatusInvalidDate
	}
	return StatusValidDate
}

func requiredFields(rec *entity.Receipt) bool {
	if rec.Vendor == nil || *rec.Vendor == "" {
		return false
	}
	if rec.Date == nil || *rec.Date == "" {
		return false
	}
	if rec.Total == nil {
		return false
	}
	return len(rec.LineItems) > 0
}

func taxRatePlausible(tax *float64, subtotal float64) bool {
	if subtotal <= 0 || tax == nil {
		return false
	}
	rate := *tax / subtotal * 100
	return rate >= 0 && rate <= constants.MaxPlausibleTaxRate
}
