package response

import (
	"time"

	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/services/gate"
)

// Client is the response for POST /clients
type Client struct {
	ClientID string `json:"client_id"`
}

// Account represents an account in API responses
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountFromModel converts a model.Account to a response Account
func AccountFromModel(a *model.Account) Account {
	return Account{
		ID:        string(a.ID),
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}

// Profile represents a profile document
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProfileFromModel converts model.Profile
func ProfileFromModel(p model.Profile) Profile {
	return Profile{
		ID:   string(p.AccountID),
		Name: p.Name,
	}
}

// SignupResponse is the response for POST /accounts
type SignupResponse struct {
	Account Account  `json:"account"`
	Profile *Profile `json:"profile"`
	// Warning is set when the account exists but its profile was not saved
	Warning  string `json:"warning,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// LoginResponse is the response for POST /session
type LoginResponse struct {
	Account  Account `json:"account"`
	Redirect string  `json:"redirect,omitempty"`
}

// SessionResponse is the response for GET /session. Redirect is where the
// gate sends a client at Location, empty when it may stay.
type SessionResponse struct {
	User      *Account   `json:"user"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Location  string     `json:"location"`
	Redirect  string     `json:"redirect,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// SessionResponseFrom builds a SessionResponse from the gate's decision
func SessionResponseFrom(user *model.Account, expiresAt *time.Time, location string, decision gate.Decision) SessionResponse {
	var account *Account
	if user != nil {
		a := AccountFromModel(user)
		account = &a
	}
	return SessionResponse{
		User:      account,
		ExpiresAt: expiresAt,
		Location:  location,
		Redirect:  decision.Redirect,
		Reason:    decision.Reason,
	}
}

// Health is the response for GET /health
type Health struct {
	Status string `json:"status"`
}
