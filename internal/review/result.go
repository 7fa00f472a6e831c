package review

import (
	"errors"
	"strings"
)

const failureMarker = "❌ "

// ResultText converts a review outcome into the text cached under its key.
// Failures are cached just like successes, marked so they read as terminal
// results rather than transient errors.
func ResultText(text string, err error) string {
	if err == nil {
		return text
	}
	var be *BackendError
	if errors.As(err, &be) && be.Msg != "" {
		return failureMarker + be.Msg
	}
	return failureMarker + "Error during review"
}

// IsFailure reports whether a cached value records a failed review.
func IsFailure(cached string) bool {
	return strings.HasPrefix(cached, failureMarker)
}
