package errors

import "errors"

// Ledger error kinds. Callers match them with errors.Is; the store wraps them
// with the operation context.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNotInitialized     = errors.New("date is not initialized")
	ErrPartialWrite       = errors.New("seat and sale records diverged")
	ErrInvalidSeat        = errors.New("invalid seat code")
	ErrInvalidShowing     = errors.New("invalid showing")
	ErrInvalidPrice       = errors.New("ticket price must be positive")
	ErrInvalidRange       = errors.New("invalid date range")
	ErrShowingClosed      = errors.New("showing is closed for sales and returns")
)
