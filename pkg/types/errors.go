package types

import "errors"

// Domain errors for type validation
var (
	// Query errors
	ErrEmptyQuery = errors.New("requirement query must populate at least one field")

	// Pattern errors
	ErrMissingPatternID   = errors.New("pattern id is required")
	ErrMissingPatternName = errors.New("pattern name is required")
	ErrInvalidPropSpec    = errors.New("prop spec must have a name")
	ErrPatternNotFound    = errors.New("pattern not found")

	// Result errors
	ErrInvalidRank       = errors.New("rank must be >= 1")
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
)
