package backend

import (
	"fmt"
	"time"
)

// TimeoutError reports a query that exceeded the configured bound.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("backend did not respond within %s", e.Timeout)
}

// UnreachableError reports a connection, DNS, or HTTP-status failure.
// Status is set when the backend answered with a non-2xx code; Err carries
// the transport cause or the response body.
type UnreachableError struct {
	URL    string
	Status string
	Err    error
}

func (e *UnreachableError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("backend %s returned %s: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("backend %s unreachable: %v", e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }
