package cache

import "errors"

// Cache-specific errors
var (
	ErrNoEventFound     = errors.New("no event found")
	ErrUnknownKind      = errors.New("unknown event kind")
	ErrInvalidMaxSize   = errors.New("cache maxSize must be positive")
	ErrInvalidHorizon   = errors.New("cache prefillHorizon must be positive")
	ErrInvalidTolerance = errors.New("cache mergeTolerance must not be negative")
	ErrFetcherRequired  = errors.New("cache fetcher is required")
)
