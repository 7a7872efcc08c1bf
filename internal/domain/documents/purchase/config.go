package purchase

import "khaata/internal/core/numerator"

const (
	// NumberPrefix starts every purchase number (PU-2026-00001).
	NumberPrefix = "PU"

	// NumeratorStrategy defines the numbering strategy for this document type.
	// A purchase is a primary accounting document, so numbers must not have gaps.
	NumeratorStrategy = numerator.StrategyStrict
)
