package campaign

import "errors"

// Sentinel errors for the campaign service layer.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotProcessed    = errors.New("session has not been processed")
	ErrRowOutOfRange   = errors.New("row out of range")
	ErrInvalidSegment  = errors.New("invalid segment")
	ErrSessionBusy     = errors.New("session is already being processed")
	ErrNoSource        = errors.New("no source query configured")
)
