package api

import (
	"errors"
	"fmt"
)

// ErrNoCredentials is returned when the client has no login or password.
var ErrNoCredentials = errors.New("dataforseo credentials are not configured")

// Error is a failed request. HTTPStatus is set for transport level
// failures, StatusCode for DataForSEO level ones.
type Error struct {
	Op         string
	HTTPStatus int
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: dataforseo status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.HTTPStatus != 0:
		return fmt.Sprintf("%s: http status %d: %s", e.Op, e.HTTPStatus, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

// RateLimited reports a 429 or a DataForSEO rate limit status.
func (e *Error) RateLimited() bool {
	return e.HTTPStatus == 429 || e.StatusCode == 40202
}
