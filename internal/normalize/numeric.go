// Package normalize repairs OCR-typical defects in extracted values: decimal
// placement errors, free-format dates, and noisy whitespace in raw text.
package normalize

import (
	"math"
	"time"

	"receipt-digitizer/constants"
)

// dateLayouts is an ordered precedence list: month/day/year, then
// day/month/year, then ISO. Ambiguous day/month tokens resolve to the first
// layout that parses; there is no locale inference.
var dateLayouts = []string{"1/2/2006", "2/1/2006", "2006-01-02"}

// Date canonicalizes a free-format date string to ISO YYYY-MM-DD.
// Nil input and unparsable input both yield nil.
func Date(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			iso := t.Format("2006-01-02")
			return &iso
		}
	}
	return nil
}

// FixDecimal corrects the observed OCR failure mode of a spurious extra digit:
// values above the shift threshold are divided by ten until plausible, then
// rounded to two decimals. The transform is a fixed point: re-applying it
// never changes the result.
func FixDecimal(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	for f > constants.DecimalShiftThreshold {
		f /= 10
	}
	f = Round2(f)
	return &f
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
