package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"fetch failed", ErrFetchFailed, "Failed to fetch companies"},
		{"fetch failed hides cause", fmt.Errorf("%w: %w", ErrFetchFailed, fmt.Errorf("dial tcp 10.0.0.7:5432: connection refused")), "Failed to fetch companies"},
		{"not ready", ErrNotReady, "Companies are still loading"},
		{"disposed", ErrDisposed, "The directory is shutting down"},
		{"not found", fmt.Errorf("%w: company 42", ErrNotFound), "Company not found"},
		{"unknown", context.DeadlineExceeded, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}
