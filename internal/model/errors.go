package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrEmailTaken         = errors.New("email already registered")

	// Document errors
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidDocument  = errors.New("invalid document reference")
)
