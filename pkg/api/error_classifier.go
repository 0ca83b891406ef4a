package api

import (
	"context"
	"errors"
	"net"
	"strings"
)

type ErrorSeverity int

const (
	ErrorSeverityTemporary ErrorSeverity = iota
	ErrorSeverityRetryable
	ErrorSeverityFatal
)

func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityTemporary:
		return "temporary"
	case ErrorSeverityRetryable:
		return "retryable"
	default:
		return "fatal"
	}
}

type ErrorClassifier interface {
	ClassifyError(err error) ErrorSeverity
	ShouldStopProcessing(err error) bool
}

type defaultClassifier struct{}

func NewErrorClassifier() ErrorClassifier {
	return defaultClassifier{}
}

func (defaultClassifier) ClassifyError(err error) ErrorSeverity {
	return ClassifyError(err)
}

func (defaultClassifier) ShouldStopProcessing(err error) bool {
	return ClassifyError(err) == ErrorSeverityFatal
}

// ClassifyError maps an error to a retry decision. Auth, payment and
// validation failures are fatal. Rate limits, server errors and network
// timeouts can be retried.
func ClassifyError(err error) ErrorSeverity {
	if err == nil {
		return ErrorSeverityTemporary
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrNoCredentials) || errors.Is(err, ErrCircuitOpen) {
		return ErrorSeverityFatal
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.RateLimited():
			return ErrorSeverityRetryable
		case apiErr.HTTPStatus >= 500, apiErr.StatusCode >= 50000:
			return ErrorSeverityRetryable
		case apiErr.HTTPStatus >= 400, apiErr.StatusCode >= 40000:
			return ErrorSeverityFatal
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorSeverityTemporary
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "forbidden") {
		return ErrorSeverityFatal
	}
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "dns") {
		return ErrorSeverityTemporary
	}
	return ErrorSeverityRetryable
}
