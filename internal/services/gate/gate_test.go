package gate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/fitness-tracking/internal/dependencies/mocks"
	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/testutil"
)

// fakeSource delivers notifications synchronously
type fakeSource struct {
	mu           sync.Mutex
	subscribes   int
	unsubscribes int
	next         func(model.ClientID, *model.Account)
	onError      func(error)
}

func (f *fakeSource) OnAuthStateChanged(next func(model.ClientID, *model.Account), onError func(error)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribes++
	f.next = next
	f.onError = onError
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubscribes++
		f.next = nil
		f.onError = nil
	}
}

func (f *fakeSource) emit(clientID model.ClientID, user *model.Account) {
	f.mu.Lock()
	next := f.next
	f.mu.Unlock()
	if next != nil {
		next(clientID, user)
	}
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	onError := f.onError
	f.mu.Unlock()
	if onError != nil {
		onError(err)
	}
}

type navigation struct {
	clientID model.ClientID
	route    string
}

type fakeNavigator struct {
	mu          sync.Mutex
	navigations []navigation
}

func (n *fakeNavigator) Navigate(_ context.Context, clientID model.ClientID, route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.navigations = append(n.navigations, navigation{clientID, route})
}

func (n *fakeNavigator) all() []navigation {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]navigation(nil), n.navigations...)
}

type GateSuite struct {
	suite.Suite
	source    *fakeSource
	navigator *fakeNavigator
	clock     *mocks.MockClock
	errs      []error
	gate      *Gate
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.source = &fakeSource{}
	s.navigator = &fakeNavigator{}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.errs = nil
	s.gate = New(s.source, s.navigator, s.clock, nil, testutil.NopLogger(), Config{
		OnError: func(err error) { s.errs = append(s.errs, err) },
	})
	s.Require().NoError(s.gate.Start())
}

func (s *GateSuite) TearDownTest() {
	s.gate.Close()
}

func account(id string) *model.Account {
	return &model.Account{ID: model.AccountID(id), Email: id + "@example.com"}
}

// Subscription lifecycle

func (s *GateSuite) TestStartSubscribesOnce() {
	s.Require().NoError(s.gate.Start())
	s.Require().NoError(s.gate.Start())
	s.Equal(1, s.source.subscribes)
}

func (s *GateSuite) TestCloseUnsubscribesOnce() {
	s.gate.Close()
	s.gate.Close()
	s.Equal(1, s.source.unsubscribes)
	s.ErrorIs(s.gate.Start(), ErrClosed)
	s.Equal(1, s.source.subscribes)
}

func (s *GateSuite) TestNoSubscriptionBeforeStart() {
	source := &fakeSource{}
	g := New(source, s.navigator, s.clock, nil, testutil.NopLogger(), Config{})
	s.Equal(0, source.subscribes)
	g.Close()
	s.Equal(0, source.unsubscribes)
}

// Session present

func (s *GateSuite) TestSessionPresentNavigatesToDashboard() {
	s.gate.Visit("c1", "/account/signup")

	s.source.emit("c1", account("u1"))

	s.Equal([]navigation{{"c1", RouteDashboardHome}}, s.navigator.all())
	s.Require().NotNil(s.gate.CurrentUser("c1"))
	s.Equal(model.AccountID("u1"), s.gate.CurrentUser("c1").ID)
}

func (s *GateSuite) TestSessionPresentNavigatesEvenWhenAlreadyThere() {
	s.gate.Visit("c1", RouteDashboardHome)

	s.source.emit("c1", account("u1"))

	s.Equal([]navigation{{"c1", RouteDashboardHome}}, s.navigator.all())
}

func (s *GateSuite) TestSessionPresentRedirectsNextVisit() {
	s.source.emit("c1", account("u1"))

	decision := s.gate.Visit("c1", "/account/signup")
	s.True(decision.ShouldRedirect())
	s.Equal(RouteDashboardHome, decision.Redirect)
	s.Equal(ReasonSignedIn, decision.Reason)

	// Consumed once
	s.False(s.gate.Visit("c1", "/account/signup").ShouldRedirect())
}

func (s *GateSuite) TestPendingNavigationConsumedWhenAlreadyThere() {
	s.source.emit("c1", account("u1"))

	s.False(s.gate.Visit("c1", RouteDashboardHome).ShouldRedirect())
	s.False(s.gate.Visit("c1", "/account/signup").ShouldRedirect())
}

func (s *GateSuite) TestNotificationsArePerClient() {
	s.source.emit("c1", account("u1"))

	s.Nil(s.gate.CurrentUser("c2"))
	decision := s.gate.Visit("c2", "/dashboard/home")
	s.Equal(RouteLogin, decision.Redirect)
}

// Session absent

func (s *GateSuite) TestSignedOutClientIsSentToLogin() {
	decision := s.gate.Visit("c1", RouteDashboardHome)
	s.Equal(Decision{Redirect: RouteLogin, Reason: ReasonGuard}, decision)
}

func (s *GateSuite) TestGuardUsesSubstringMatch() {
	cases := []struct {
		location string
		redirect bool
	}{
		{"/", true},
		{"/dashboard/home", true},
		{"/account/login", false},
		{"/account/signup", false},
		{"/settings/account-info", false},
		{"/settings/profile", true},
		{"/foo/account/bar", false},
		{"/x/accounts", false},
	}

	for _, tc := range cases {
		s.Run(tc.location, func() {
			decision := s.gate.Visit("guard-client", tc.location)
			s.Equal(tc.redirect, decision.ShouldRedirect())
			if tc.redirect {
				s.Equal(RouteLogin, decision.Redirect)
			}
		})
	}
}

func (s *GateSuite) TestSignedInClientIsNotGuarded() {
	s.source.emit("c1", account("u1"))
	s.gate.Visit("c1", RouteDashboardHome)

	s.False(s.gate.Visit("c1", "/settings").ShouldRedirect())
}

func (s *GateSuite) TestSessionAbsentClearsUserAndNavigatesToLogin() {
	s.source.emit("c1", account("u1"))
	s.gate.Visit("c1", RouteDashboardHome)

	s.source.emit("c1", nil)

	s.Nil(s.gate.CurrentUser("c1"))
	s.Equal([]navigation{
		{"c1", RouteDashboardHome},
		{"c1", RouteLogin},
	}, s.navigator.all())
}

func (s *GateSuite) TestSessionAbsentOnAccountPageStays() {
	s.gate.Visit("c1", "/account/signup")

	s.source.emit("c1", nil)

	s.Empty(s.navigator.all())
	s.False(s.gate.Visit("c1", "/account/signup").ShouldRedirect())
}

func (s *GateSuite) TestSessionAbsentCancelsPendingDashboard() {
	s.gate.Visit("c1", "/account/signup")
	s.source.emit("c1", account("u1"))
	s.source.emit("c1", nil)

	s.False(s.gate.Visit("c1", "/account/signup").ShouldRedirect())
}

func (s *GateSuite) TestSessionAbsentForUnknownClientDoesNotNavigate() {
	s.source.emit("c9", nil)
	s.Empty(s.navigator.all())
}

// Errors

func (s *GateSuite) TestStreamErrorIsReported() {
	streamErr := errors.New("stream broke")

	s.source.fail(streamErr)

	s.ErrorIs(s.gate.Err(), streamErr)
	s.Require().Len(s.errs, 1)
	s.ErrorIs(s.errs[0], streamErr)
}

func (s *GateSuite) TestNoNotificationsAfterClose() {
	s.gate.Close()
	s.source.emit("c1", account("u1"))
	s.Nil(s.gate.CurrentUser("c1"))
}

// Await

func (s *GateSuite) TestAwaitUser() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go s.source.emit("c1", account("u1"))

	s.True(s.gate.AwaitUser(ctx, "c1", "u1"))
}

func (s *GateSuite) TestAwaitUserTimesOut() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s.False(s.gate.AwaitUser(ctx, "c1", "u1"))
}

func (s *GateSuite) TestAwaitSignedOut() {
	s.source.emit("c1", account("u1"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go s.source.emit("c1", nil)

	s.True(s.gate.AwaitUser(ctx, "c1", ""))
}

// Store

func (s *GateSuite) TestPruneDropsIdleSignedOutClients() {
	s.gate.Visit("idle", "/account/login")
	s.source.emit("active", account("u1"))
	s.clock.Advance(time.Hour)
	s.gate.Visit("recent", "/account/login")

	removed := s.gate.Store().Prune(s.clock.Now().Add(-30 * time.Minute))

	s.Equal(1, removed)
	s.Equal(2, s.gate.Store().Len())
}
