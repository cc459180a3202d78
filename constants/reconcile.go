package constants

// Thresholds used by the reconciliation engine and the validation rule set.
const (
	// DecimalShiftThreshold is the cutoff above which a monetary value is
	// assumed to carry a spurious OCR digit and is shifted right.
	DecimalShiftThreshold = 100000.0

	// QuantityGuardPrice guards against an OCR line number being misread as a
	// quantity multiplier: items above this price never keep quantity > 1.
	QuantityGuardPrice = 20.0

	// TotalOverrideTolerance is the absolute disagreement between the resolved
	// total and the line-item arithmetic beyond which the total is overridden.
	TotalOverrideTolerance = 0.5

	// TotalValidationTolerance is the (looser) tolerance used when reporting
	// arithmetic consistency, without correcting anything.
	TotalValidationTolerance = 1.0

	// MaxPlausibleTaxRate is the upper bound (percent) of the tax-rate sanity check.
	MaxPlausibleTaxRate = 30.0
)

// UnknownSentinel marks a field the upstream extraction could not resolve.
const UnknownSentinel = "UNKNOWN"
