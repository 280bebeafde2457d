package factory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/fitness-tracking/internal/dependencies/mocks"
	"github.com/mcoot/fitness-tracking/internal/services/identity"
	"github.com/mcoot/fitness-tracking/internal/storage/memory"
	"github.com/mcoot/fitness-tracking/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockIDs     *mocks.MockIDs
	MemoryStore *memory.Storage
}

// NewTestApp creates a started App with mocked clock and IDs and cheap password hashing
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()

	cfg := identity.DefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost

	app := newWithDependencies(store, mockClock, mockIDs, prometheus.NewRegistry(), cfg, testutil.NopLogger())
	_ = app.Start()

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockIDs:     mockIDs,
		MemoryStore: store,
	}
}
