package domain

import "errors"

// Progression errors
var (
	ErrPlayerNotFound = errors.New("player not found")
)

// Season errors
var (
	ErrSeasonNotFound       = errors.New("season not found")
	ErrSeasonRecordNotFound = errors.New("season record not found")
	ErrMalformedSeason      = errors.New("malformed season data")
)

// Claim errors
var (
	// ErrAlreadyClaimed is internal bookkeeping: callers translate it to a
	// zero-gem grant, never to a user-facing failure.
	ErrAlreadyClaimed = errors.New("season reward already claimed")
)
