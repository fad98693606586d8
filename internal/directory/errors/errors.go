package errors

import (
	"errors"
	"fmt"
)

var (
	ErrFetchFailed  = fmt.Errorf("failed to fetch companies")
	ErrNotReady     = fmt.Errorf("directory not ready")
	ErrNotFound     = fmt.Errorf("not found")
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrDisposed     = fmt.Errorf("directory disposed")
)

// Message returns the text shown to end users for err. Causes wrapped
// inside err are never part of it.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFetchFailed):
		return "Failed to fetch companies"
	case errors.Is(err, ErrNotReady):
		return "Companies are still loading"
	case errors.Is(err, ErrDisposed):
		return "The directory is shutting down"
	case errors.Is(err, ErrNotFound):
		return "Company not found"
	default:
		return "Something went wrong"
	}
}
