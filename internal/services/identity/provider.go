package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/fitness-tracking/internal/dependencies/clock"
	"github.com/mcoot/fitness-tracking/internal/dependencies/ids"
	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/storage"
)

// Session is the signed-in state of one client
type Session struct {
	ClientID  model.ClientID
	Account   model.Account
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Config holds configuration for the identity provider
type Config struct {
	SessionDuration   time.Duration
	MinPasswordLength int
	BcryptCost        int
	StreamBuffer      int
}

// DefaultConfig returns default provider configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration:   24 * time.Hour,
		MinPasswordLength: 6,
		BcryptCost:        bcrypt.DefaultCost,
		StreamBuffer:      64,
	}
}

// Provider owns accounts, credentials and per-client sessions, and
// publishes every session change on its auth state stream
type Provider struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	logger  *slog.Logger
	cfg     Config

	mu       sync.RWMutex
	sessions map[model.ClientID]*Session

	stream *stream
}

// New creates a Provider and starts its stream dispatcher
func New(store storage.Storage, clk clock.Clock, gen ids.Generator, logger *slog.Logger, cfg Config) *Provider {
	defaults := DefaultConfig()
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.MinPasswordLength == 0 {
		cfg.MinPasswordLength = defaults.MinPasswordLength
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	if cfg.StreamBuffer == 0 {
		cfg.StreamBuffer = defaults.StreamBuffer
	}

	logger = logger.With(slog.String("component", "identity"))
	p := &Provider{
		storage:  store,
		clock:    clk,
		ids:      gen,
		logger:   logger,
		cfg:      cfg,
		sessions: make(map[model.ClientID]*Session),
		stream:   newStream(logger, cfg.StreamBuffer),
	}
	go p.stream.run()
	return p
}

// Close stops the auth state stream
func (p *Provider) Close() {
	p.stream.close()
}

// CreateUserWithEmailAndPassword registers a new account and signs the client in
func (p *Provider) CreateUserWithEmailAndPassword(ctx context.Context, clientID model.ClientID, email, password string) (*model.Account, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, newError(CodeInternalError, "A password is required.", nil)
	}
	if utf8.RuneCountInString(password) < p.cfg.MinPasswordLength {
		return nil, newError(CodeWeakPassword,
			fmt.Sprintf("Password should be at least %d characters.", p.cfg.MinPasswordLength), nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return nil, newError(CodeInternalError, "Password could not be processed.", err)
	}

	now := p.clock.Now()
	account := &model.Account{
		ID:        p.ids.AccountID(),
		Email:     email,
		CreatedAt: now,
	}
	cred := &model.Credential{
		AccountID:    account.ID,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}

	// The email is claimed only once the account it points at exists
	if err := p.storage.SaveAccount(ctx, account); err != nil {
		return nil, newError(CodeNetworkRequestFailed, "The account could not be stored.", err)
	}
	if err := p.storage.CreateCredential(ctx, cred); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return nil, newError(CodeEmailAlreadyInUse, "The email address is already in use by another account.", err)
		}
		return nil, newError(CodeNetworkRequestFailed, "The account could not be stored.", err)
	}

	p.logger.Info("account created", slog.String("account_id", string(account.ID)))
	p.startSession(clientID, account)
	return account, nil
}

// SignInWithEmailAndPassword authenticates an existing account and signs the client in
func (p *Provider) SignInWithEmailAndPassword(ctx context.Context, clientID model.ClientID, email, password string) (*model.Account, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	cred, err := p.storage.GetCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrCredentialNotFound) {
			return nil, newError(CodeUserNotFound, "There is no account for this email.", err)
		}
		return nil, newError(CodeNetworkRequestFailed, "The account could not be loaded.", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, newError(CodeWrongPassword, "The password is invalid.", nil)
	}

	account, err := p.storage.GetAccount(ctx, cred.AccountID)
	if err != nil {
		return nil, newError(CodeNetworkRequestFailed, "The account could not be loaded.", err)
	}

	p.logger.Info("account signed in", slog.String("account_id", string(account.ID)))
	p.startSession(clientID, account)
	return account, nil
}

// SignOut ends the client's session. Signing out without a session is a no-op
// apart from the notification, which is still emitted.
func (p *Provider) SignOut(_ context.Context, clientID model.ClientID) error {
	p.mu.Lock()
	session, ok := p.sessions[clientID]
	delete(p.sessions, clientID)
	p.mu.Unlock()

	if ok {
		p.logger.Info("account signed out", slog.String("account_id", string(session.Account.ID)))
	}
	p.stream.emit(AuthStateChange{ClientID: clientID})
	return nil
}

// CurrentUser returns the client's signed-in account, or nil
func (p *Provider) CurrentUser(clientID model.ClientID) *model.Account {
	p.mu.RLock()
	session, ok := p.sessions[clientID]
	p.mu.RUnlock()

	if !ok || p.clock.Now().After(session.ExpiresAt) {
		return nil
	}
	account := session.Account
	return &account
}

// Session returns a copy of the client's session
func (p *Provider) Session(clientID model.ClientID) (Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	session, ok := p.sessions[clientID]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// SweepExpired destroys expired sessions and notifies subscribers (call periodically)
func (p *Provider) SweepExpired() int {
	now := p.clock.Now()

	var expired []model.ClientID
	p.mu.Lock()
	for clientID, session := range p.sessions {
		if now.After(session.ExpiresAt) {
			delete(p.sessions, clientID)
			expired = append(expired, clientID)
		}
	}
	p.mu.Unlock()

	for _, clientID := range expired {
		p.stream.emit(AuthStateChange{ClientID: clientID})
	}
	if len(expired) > 0 {
		p.logger.Info("expired sessions swept", slog.Int("count", len(expired)))
	}
	return len(expired)
}

// OnAuthStateChanged subscribes to session changes. next is called with a nil
// account when a client signs out or its session expires. onError receives
// stream failures such as ErrStreamLagged.
func (p *Provider) OnAuthStateChanged(next func(model.ClientID, *model.Account), onError func(error)) (unsubscribe func()) {
	unsubscribe, err := p.stream.subscribe(next, onError)
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return func() {}
	}
	return unsubscribe
}

func (p *Provider) startSession(clientID model.ClientID, account *model.Account) {
	now := p.clock.Now()
	p.mu.Lock()
	p.sessions[clientID] = &Session{
		ClientID:  clientID,
		Account:   *account,
		CreatedAt: now,
		ExpiresAt: now.Add(p.cfg.SessionDuration),
	}
	p.mu.Unlock()

	snapshot := *account
	p.stream.emit(AuthStateChange{ClientID: clientID, Account: &snapshot})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return newError(CodeInvalidEmail, "An email address is required.", nil)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return newError(CodeInvalidEmail, "The email address is badly formatted.", err)
	}
	return nil
}
