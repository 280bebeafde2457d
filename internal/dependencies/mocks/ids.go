package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/fitness-tracking/internal/dependencies/ids"
	"github.com/mcoot/fitness-tracking/internal/model"
)

// MockIDs is a mock implementation of ids.Generator for testing.
// Queued values are returned first; once a queue is drained a
// sequential fallback ("account-1", "client-1", ...) is used.
type MockIDs struct {
	mu sync.Mutex

	accountIDs []model.AccountID
	clientIDs  []model.ClientID

	accountSeq int
	clientSeq  int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// AccountID returns the next queued account ID
func (m *MockIDs) AccountID() model.AccountID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.accountIDs) > 0 {
		id := m.accountIDs[0]
		m.accountIDs = m.accountIDs[1:]
		return id
	}
	m.accountSeq++
	return model.AccountID(fmt.Sprintf("account-%d", m.accountSeq))
}

// ClientID returns the next queued client ID
func (m *MockIDs) ClientID() model.ClientID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.clientIDs) > 0 {
		id := m.clientIDs[0]
		m.clientIDs = m.clientIDs[1:]
		return id
	}
	m.clientSeq++
	return model.ClientID(fmt.Sprintf("client-%d", m.clientSeq))
}

// QueueAccountIDs adds values to the account ID queue
func (m *MockIDs) QueueAccountIDs(values ...model.AccountID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountIDs = append(m.accountIDs, values...)
}

// QueueClientIDs adds values to the client ID queue
func (m *MockIDs) QueueClientIDs(values ...model.ClientID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clientIDs = append(m.clientIDs, values...)
}
