package sale

import "khaata/internal/core/numerator"

const (
	// NumberPrefix starts every sale number (SA-2026-00001).
	NumberPrefix = "SA"

	// NumeratorStrategy defines the numbering strategy for this document type.
	NumeratorStrategy = numerator.StrategyStrict
)
