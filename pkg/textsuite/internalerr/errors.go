package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")

	// ErrAnalysisFailed wraps numerical failures inside topic modeling.
	// A caller that sees it must not use any partial result.
	ErrAnalysisFailed = errors.New("analysis failed")

	// Extraction boundary errors.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrExtractionFailed  = errors.New("text extraction failed")
)
