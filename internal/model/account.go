package model

import "time"

// AccountID uniquely identifies an account issued by the identity provider
type AccountID string

// ClientID identifies one browser or CLI instance talking to the service.
// A client holds at most one signed-in account at a time.
type ClientID string

// Account is the identity provider's view of a user
type Account struct {
	ID        AccountID
	Email     string
	CreatedAt time.Time
}

// Credential holds the secret half of an account
// Stored separately so the hash never travels with a session
type Credential struct {
	AccountID    AccountID
	Email        string // normalized, unique
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
}
