package api

import (
	"context"
	"math"
	"time"
)

// SimpleRetry retries with exponential backoff until the classifier calls
// an error fatal.
type SimpleRetry struct {
	maxRetries        int
	retryDelay        time.Duration
	backoffMultiplier float64
	classifier        ErrorClassifier
}

func NewSimpleRetry(maxRetries int, retryDelay time.Duration) *SimpleRetry {
	return &SimpleRetry{
		maxRetries:        maxRetries,
		retryDelay:        retryDelay,
		backoffMultiplier: 2.0,
		classifier:        NewErrorClassifier(),
	}
}

// WithClassifier replaces the default classifier.
func (sr *SimpleRetry) WithClassifier(c ErrorClassifier) *SimpleRetry {
	sr.classifier = c
	return sr
}

// Execute runs fn at most maxRetries+1 times.
func (sr *SimpleRetry) Execute(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= sr.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == sr.maxRetries || sr.classifier.ShouldStopProcessing(err) {
			break
		}

		delay := time.Duration(float64(sr.retryDelay) * math.Pow(sr.backoffMultiplier, float64(attempt)))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
