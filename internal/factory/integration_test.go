package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/services/gate"
	"github.com/mcoot/fitness-tracking/internal/services/signup"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

func (s *IntegrationSuite) awaitUser(clientID model.ClientID, accountID model.AccountID) {
	ctx, cancel := context.WithTimeout(s.ctx, time.Second)
	defer cancel()
	s.Require().True(s.app.Gate.AwaitUser(ctx, clientID, accountID), "gate never saw the session change")
}

// Test: signup creates account and profile, and the gate routes the client to the dashboard
func (s *IntegrationSuite) TestSignupRoutesToDashboard() {
	s.app.MockIDs.QueueAccountIDs("abc123")

	// The client is on the signup page
	s.Equal(gate.Decision{}, s.app.Gate.Visit("c1", "/account/signup"))

	result := s.app.Signup.Submit(s.ctx, "c1", signup.Form{
		Email:          "a@b.com",
		Password:       "secret1",
		PasswordRepeat: "secret1",
	})
	s.Require().NoError(result.Err)
	s.Require().NotNil(result.ProfileRef)
	s.Equal("profiles/abc123", result.ProfileRef.Path())

	doc, err := s.app.Docs.Get(s.ctx, model.ProfileRef("abc123"))
	s.Require().NoError(err)
	s.Equal("Henk", doc["name"])

	s.awaitUser("c1", "abc123")
	decision := s.app.Gate.Visit("c1", "/account/signup")
	s.Equal(gate.RouteDashboardHome, decision.Redirect)
	s.False(s.app.Gate.Visit("c1", gate.RouteDashboardHome).ShouldRedirect())
}

// Test: a rejected signup leaves no account, no profile and no session
func (s *IntegrationSuite) TestRejectedSignupLeavesNoTrace() {
	result := s.app.Signup.Submit(s.ctx, "c1", signup.Form{
		Email:          "a@b.com",
		Password:       "abc",
		PasswordRepeat: "abc",
	})
	s.Equal(signup.MsgWeakPassword, result.Form.Error)

	s.Equal(0, s.app.MemoryStore.DocumentCount(model.ProfilesCollection))
	s.Nil(s.app.Provider.CurrentUser("c1"))
	s.Equal(gate.RouteLogin, s.app.Gate.Visit("c1", "/dashboard/home").Redirect)
}

// Test: logout and session expiry both send the client back to login
func (s *IntegrationSuite) TestLogoutAndExpiry() {
	s.app.MockIDs.QueueAccountIDs("u1")
	_ = s.app.Signup.Submit(s.ctx, "c1", signup.Form{Email: "a@b.com", Password: "secret1", PasswordRepeat: "secret1"})
	s.awaitUser("c1", "u1")
	s.app.Gate.Visit("c1", gate.RouteDashboardHome)

	s.Require().NoError(s.app.Provider.SignOut(s.ctx, "c1"))
	s.awaitUser("c1", "")
	s.Equal(gate.RouteLogin, s.app.Gate.Visit("c1", gate.RouteDashboardHome).Redirect)

	// Sign back in on another client and let the session expire
	_, err := s.app.Provider.SignInWithEmailAndPassword(s.ctx, "c2", "a@b.com", "secret1")
	s.Require().NoError(err)
	s.awaitUser("c2", "u1")
	s.app.Gate.Visit("c2", gate.RouteDashboardHome)

	s.app.MockClock.Advance(25 * time.Hour)
	s.app.Sweep(time.Hour)
	s.awaitUser("c2", "")
	s.Nil(s.app.Gate.CurrentUser("c2"))
}

// Test: metrics reflect signup outcomes
func (s *IntegrationSuite) TestSignupMetrics() {
	_ = s.app.Signup.Submit(s.ctx, "c1", signup.Form{Email: "a@b.com", Password: "x", PasswordRepeat: "y"})

	families, err := s.app.Registry.Gather()
	s.Require().NoError(err)

	found := false
	for _, mf := range families {
		if mf.GetName() == "fitness_signup_total" {
			found = true
			s.Equal(1.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	s.True(found)
}

// Test: sweeping drops signup forms left behind by failed submissions
func (s *IntegrationSuite) TestSweepPrunesIdleSignupForms() {
	_ = s.app.Signup.Submit(s.ctx, "c1", signup.Form{Email: "a@b.com", Password: "secret-pw", PasswordRepeat: "other"})
	s.Equal(1, s.app.Signup.Len())
	s.Empty(s.app.Signup.State("c1").Password)

	s.app.MockClock.Advance(2 * time.Hour)
	s.app.Sweep(time.Hour)

	s.Equal(0, s.app.Signup.Len())
	s.Equal(signup.Form{}, s.app.Signup.State("c1"))
}
