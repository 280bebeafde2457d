package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/fitness-tracking/internal/dependencies/mocks"
	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/testutil"
)

func TestClientCookieIssuesID(t *testing.T) {
	gen := mocks.NewMockIDs()
	gen.QueueClientIDs("client-abc")

	var seen model.ClientID
	handler := ClientCookie(gen, true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClientID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, model.ClientID("client-abc"), seen)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, "client-abc", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
}

func TestClientCookieReusesValidCookie(t *testing.T) {
	gen := mocks.NewMockIDs()
	var seen model.ClientID
	handler := ClientCookie(gen, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClientID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "existing-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, model.ClientID("existing-1"), seen)
	assert.Empty(t, rec.Result().Cookies())
}

func TestClientCookieReplacesMalformedCookie(t *testing.T) {
	gen := mocks.NewMockIDs()
	gen.QueueClientIDs("fresh")
	var seen model.ClientID
	handler := ClientCookie(gen, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClientID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "bad value!"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, model.ClientID("fresh"), seen)
}

type staticUsers map[model.ClientID]*model.Account

func (s staticUsers) CurrentUser(clientID model.ClientID) *model.Account {
	return s[clientID]
}

func TestCurrentUser(t *testing.T) {
	users := staticUsers{"c1": {ID: "u1"}}
	var seen *model.Account
	handler := CurrentUser(users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithClientID(context.Background(), "c1")))
	require.NotNil(t, seen)
	assert.Equal(t, model.AccountID("u1"), seen.ID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithClientID(context.Background(), "c2")))
	assert.Nil(t, seen)
}

func TestFlashRoundTrip(t *testing.T) {
	setter := httptest.NewRecorder()
	SetFlash(setter, "error", "Your account was created, but your profile could not be saved.")

	req := httptest.NewRequest(http.MethodGet, "/dashboard/home", nil)
	for _, c := range setter.Result().Cookies() {
		req.AddCookie(c)
	}

	var message string
	rec := httptest.NewRecorder()
	Flash()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f := GetFlash(r.Context()); f != nil {
			message = f.Message
		}
	})).ServeHTTP(rec, req)

	assert.Equal(t, "Your account was created, but your profile could not be saved.", message)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestFlashIgnoresGarbage(t *testing.T) {
	assert.Nil(t, decodeFlash("%%%"))
	assert.Nil(t, decodeFlash("bm90IGpzb24"))
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, testutil.NopLogger())
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	post := func(clientID model.ClientID) int {
		req := httptest.NewRequest(http.MethodPost, "/account/signup", nil)
		req = req.WithContext(WithClientID(req.Context(), clientID))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, post("c1"))
	assert.Equal(t, http.StatusNoContent, post("c1"))
	assert.Equal(t, http.StatusTooManyRequests, post("c1"))
	// Other clients have their own budget
	assert.Equal(t, http.StatusNoContent, post("c2"))
}

func TestRateLimiterIgnoresGet(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, testutil.NopLogger())
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account/signup", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1, testutil.NopLogger())
	rl.Allow("c1")

	assert.Equal(t, 0, rl.Cleanup(time.Hour))
	assert.Equal(t, 1, rl.Cleanup(-time.Second))
}
