package neis

import (
	"errors"
	"fmt"
)

// ErrBodyTooLarge is wrapped by UpstreamError when the response exceeds the configured limit.
var ErrBodyTooLarge = errors.New("upstream response body too large")

// UpstreamError reports a failed call to the meal service: either the
// request never completed (StatusCode is 0) or it returned a non-2xx status.
type UpstreamError struct {
	StatusCode int
	// Message is the upstream's own "error" field, when the body carried one.
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("upstream request failed: %v", e.Err)
	}
	return "upstream request failed"
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
