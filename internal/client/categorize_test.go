package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"transport", fmt.Errorf("%w: dial tcp: connection refused", ErrTransport), ErrorCategoryTransport},
		{"transport wrapping cancel", fmt.Errorf("%w: %w", ErrTransport, context.Canceled), ErrorCategoryTransport},
		{"service", fmt.Errorf("%w: HTTP 503", ErrServiceUnavailable), ErrorCategoryServiceUnavailable},
		{"api", &APIError{Code: "404", Message: "city not found"}, ErrorCategoryAPI},
		{"wrapped api", fmt.Errorf("lookup: %w", &APIError{Code: "401"}), ErrorCategoryAPI},
		{"format", fmt.Errorf("%w: missing [name]", ErrFormat), ErrorCategoryFormat},
		{"unknown", errors.New("something else"), ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.want {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
