package ids

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mcoot/fitness-tracking/internal/model"
)

// Generator issues identifiers and can be mocked for testing
type Generator interface {
	// AccountID returns a fresh account identifier
	AccountID() model.AccountID

	// ClientID returns a fresh client identifier
	ClientID() model.ClientID
}

// UUIDGenerator implements Generator with random (v4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// AccountID returns a 32 character hex identifier
func (g *UUIDGenerator) AccountID() model.AccountID {
	return model.AccountID(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// ClientID returns a canonical UUID string
func (g *UUIDGenerator) ClientID() model.ClientID {
	return model.ClientID(uuid.NewString())
}

// ValidClientID reports whether s is acceptable as a client identifier
// coming back from a cookie or bearer token
func ValidClientID(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
