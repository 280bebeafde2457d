package identity

import (
	"errors"
	"fmt"
)

// Provider error codes. These are the stable identifiers callers switch on.
const (
	CodeWeakPassword         = "auth/weak-password"
	CodeInternalError        = "auth/internal-error"
	CodeInvalidEmail         = "auth/invalid-email"
	CodeEmailAlreadyInUse    = "auth/email-already-in-use"
	CodeNetworkRequestFailed = "auth/network-request-failed"
	CodeUserNotFound         = "auth/user-not-found"
	CodeWrongPassword        = "auth/wrong-password"
)

var (
	// ErrStreamLagged is delivered to a subscriber that fell behind and missed notifications
	ErrStreamLagged = errors.New("auth state stream: subscriber lagged, notifications dropped")
	// ErrStreamClosed is returned when subscribing to a stopped stream
	ErrStreamClosed = errors.New("auth state stream closed")
)

// Error is a failure reported by the identity provider
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// CodeOf returns the provider code carried by err, or "" if err is not a provider error
func CodeOf(err error) string {
	var idErr *Error
	if errors.As(err, &idErr) {
		return idErr.Code
	}
	return ""
}
