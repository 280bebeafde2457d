package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/services/docstore"
	"github.com/mcoot/fitness-tracking/internal/services/identity"
	"github.com/mcoot/fitness-tracking/internal/services/signup"
)

// APIError represents an API error response
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes. Identity provider failures keep the provider's own code.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodePasswordMismatch = "PASSWORD_MISMATCH"
	CodeProfileNotFound  = "PROFILE_NOT_FOUND"
	CodeAccountNotFound  = "ACCOUNT_NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var idErr *identity.Error
	if errors.As(err, &idErr) {
		return identityError(idErr)
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrDocumentNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeProfileNotFound, Message: "Profile not found"}}
	case errors.Is(err, model.ErrAccountNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeAccountNotFound, Message: "Account not found"}}
	case errors.Is(err, docstore.ErrInvalidRef), errors.Is(err, model.ErrInvalidDocument):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: "Invalid document reference"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// identityError maps a provider failure. Signup codes carry the same
// message the signup form shows; sign-in codes get a generic one.
func identityError(err *identity.Error) *httpError {
	switch err.Code {
	case identity.CodeWeakPassword, identity.CodeInternalError, identity.CodeInvalidEmail:
		return &httpError{http.StatusBadRequest, APIError{Code: err.Code, Message: signup.MessageForCode(err.Code)}}
	case identity.CodeEmailAlreadyInUse:
		return &httpError{http.StatusConflict, APIError{Code: err.Code, Message: signup.MessageForCode(err.Code)}}
	case identity.CodeUserNotFound, identity.CodeWrongPassword:
		return &httpError{http.StatusUnauthorized, APIError{Code: err.Code, Message: "Email or password is incorrect."}}
	case identity.CodeNetworkRequestFailed:
		return &httpError{http.StatusServiceUnavailable, APIError{Code: err.Code, Message: signup.MsgUnknown}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: err.Code, Message: signup.MsgUnknown}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewPasswordMismatchError reports a signup whose password and confirmation differ
func NewPasswordMismatchError() error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodePasswordMismatch, Message: signup.MsgPasswordMismatch}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewSignInRequiredError is returned when the client has no signed-in account
func NewSignInRequiredError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Sign in required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) error {
	return &httpError{http.StatusForbidden, APIError{Code: CodeForbidden, Message: message}}
}

// NewInternalError is an internal error that names the request it was
// logged under. An empty requestID is omitted from the body.
func NewInternalError(requestID string) error {
	return &httpError{http.StatusInternalServerError, APIError{
		Code:      CodeInternalError,
		Message:   "Internal server error",
		RequestID: requestID,
	}}
}
