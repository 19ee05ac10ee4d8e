package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Generation itself never fails. These belong to the surfaces around it.

var (
	// Request validation
	ErrInvalidCount  = errors.New("count must be a non-negative integer")
	ErrCountTooLarge = errors.New("count exceeds the maximum batch size")
	ErrUnknownStatus = errors.New("unknown task status")
	ErrUnknownUser   = errors.New("unknown task user")
	ErrUnknownFormat = errors.New("unknown output format")

	// Storage
	ErrStoreClosed = errors.New("task store is closed")
)
