// ABOUTME: Error taxonomy for calls to the remote calorie service.
// ABOUTME: Sentinels match with errors.Is; *Error carries status and body text.
package api

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEndpoint means the base URL is unset or unusable.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrUnauthorized means the server rejected the credentials or token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDecode means the response body did not have the expected shape.
	ErrDecode = errors.New("decode error")
	// ErrServer means the server answered with a non-success status.
	ErrServer = errors.New("server error")
	// ErrConnection means the request never got a response.
	ErrConnection = errors.New("connection failure")
)

// Error is a failed API call. Kind is one of the sentinel errors above.
type Error struct {
	Kind       error
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (%d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, status int, message string, err error) *Error {
	return &Error{Kind: kind, StatusCode: status, Message: message, Err: err}
}

// UserMessage renders err as a short human-readable message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	detail := ""
	if errors.As(err, &apiErr) {
		detail = apiErr.Message
	}

	var base string
	switch {
	case errors.Is(err, ErrInvalidEndpoint):
		base = "The server address is not configured correctly"
	case errors.Is(err, ErrUnauthorized):
		base = "Authorization failed"
	case errors.Is(err, ErrDecode):
		base = "The server sent an unexpected response"
	case errors.Is(err, ErrServer):
		base = "The server reported an error"
	case errors.Is(err, ErrConnection):
		base = "Could not connect to the server"
	default:
		return err.Error()
	}
	if detail != "" {
		return base + ": " + detail
	}
	return base
}
