package client

import "errors"

// ErrorCategory is a stable label for error classification in metrics and logs.
type ErrorCategory string

const (
	ErrorCategoryTransport          ErrorCategory = "transport"
	ErrorCategoryServiceUnavailable ErrorCategory = "service_unavailable"
	ErrorCategoryAPI                ErrorCategory = "api"
	ErrorCategoryFormat             ErrorCategory = "format"
	ErrorCategoryUnknown            ErrorCategory = "unknown"
)

// CategorizeError maps a Fetch error to its ErrorCategory. nil maps to "".
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	switch {
	case errors.Is(err, ErrTransport):
		return ErrorCategoryTransport
	case errors.Is(err, ErrServiceUnavailable):
		return ErrorCategoryServiceUnavailable
	case errors.As(err, &apiErr):
		return ErrorCategoryAPI
	case errors.Is(err, ErrFormat):
		return ErrorCategoryFormat
	}
	return ErrorCategoryUnknown
}
