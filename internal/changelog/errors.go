package changelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/danielolaszy/changelog/internal/github"
	gh "github.com/google/go-github/v41/github"
)

// ErrorKind classifies why a changelog could not be fetched.
type ErrorKind int

const (
	// NetworkFailure covers transport errors, non-2xx responses and cancellation.
	NetworkFailure ErrorKind = iota
	// UnexpectedResponseShape covers payloads that did not decode or lack required fields.
	UnexpectedResponseShape
	// Other is everything else, e.g. an unusable repository URL.
	Other
)

// FallbackPrefix starts every rendered error string.
const FallbackPrefix = "Error fetching changelog:"

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case NetworkFailure:
		return "network failure"
	case UnexpectedResponseShape:
		return "unexpected response"
	default:
		return "other"
	}
}

// Error is a classified fetch failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Fallback returns the text rendered in place of the changelog.
func (e *Error) Fallback() string {
	switch e.Kind {
	case NetworkFailure, UnexpectedResponseShape:
		return fmt.Sprintf("%s %s: %s", FallbackPrefix, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s %s", FallbackPrefix, e.Err)
	}
}

// Classify wraps err in an *Error with its kind. A nil err yields nil and an
// existing *Error is returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	return &Error{Kind: kindOf(err), Err: err}
}

func kindOf(err error) ErrorKind {
	var (
		errResp   *gh.ErrorResponse
		rateErr   *gh.RateLimitError
		abuseErr  *gh.AbuseRateLimitError
		urlErr    *url.Error
		netErr    net.Error
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &errResp),
		errors.As(err, &rateErr),
		errors.As(err, &abuseErr),
		errors.As(err, &urlErr),
		errors.As(err, &netErr),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return NetworkFailure
	case errors.Is(err, github.ErrUnexpectedShape),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr):
		return UnexpectedResponseShape
	default:
		return Other
	}
}
