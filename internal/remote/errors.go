package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNetwork           = errors.New("could not connect to the server")
	ErrMalformedResponse = errors.New("unexpected server response")
	ErrUnavailable       = errors.New("server temporarily unavailable")
)

// StatusError is a response outside the 2xx range. Message is the server's
// "message" field when the body carried one.
type StatusError struct {
	Code    int
	Message string
	// set when the body was not JSON
	malformed bool
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("remote returned %d %s", e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() error {
	if e.malformed {
		return ErrMalformedResponse
	}
	return nil
}

// Definitive reports whether the server certainly did not act on the request.
// Server faults leave that open.
func (e *StatusError) Definitive() bool {
	return e.Code < http.StatusInternalServerError
}

// Ambiguous reports whether a failed call may still have been applied by the
// server: the request never got a definitive answer.
func Ambiguous(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return !statusErr.Definitive()
	}
	return errors.Is(err, ErrNetwork)
}

// Message returns the server supplied message of a StatusError, or "".
func Message(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message
	}
	return ""
}
