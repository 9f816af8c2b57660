package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// HTTPError is returned for non-2xx backend responses.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

// Advisory maps a transport error onto the single user-facing string shown
// in the session error slot. Wording matches what customers have seen
// since the first release.
func Advisory(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.Status == 503:
			return "Service temporarily unavailable. Please try again in a moment."
		case httpErr.Status >= 500:
			return "Server error. Please try again later."
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "Request timed out. Please check your connection and try again."
	}

	return "Failed to reach the insurance agent. Please try again."
}
