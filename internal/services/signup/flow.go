package signup

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/fitness-tracking/internal/dependencies/clock"
	"github.com/mcoot/fitness-tracking/internal/metrics"
	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/services/identity"
)

// AccountCreator is the part of the identity provider the flow needs
type AccountCreator interface {
	CreateUserWithEmailAndPassword(ctx context.Context, clientID model.ClientID, email, password string) (*model.Account, error)
}

// DocumentWriter is the part of the document store the flow needs
type DocumentWriter interface {
	Doc(collection, key string) model.DocumentRef
	Set(ctx context.Context, ref model.DocumentRef, data map[string]any) error
}

// Form is the signup form state. Error is empty when no message is shown.
type Form struct {
	Email          string
	Password       string
	PasswordRepeat string
	Error          string
}

// Result is the outcome of one submission
type Result struct {
	Form Form
	// Account is set when the provider created an account
	Account *model.Account
	// ProfileRef is set when a profile document was written
	ProfileRef *model.DocumentRef
	// Err is the underlying failure, if any
	Err error
}

// Created reports whether the submission produced an account
func (r Result) Created() bool {
	return r.Account != nil
}

// storedForm is a client's form as kept between requests. Password fields
// are never stored.
type storedForm struct {
	form     Form
	lastSeen time.Time
}

// Flow runs signup submissions and keeps per-client form state
type Flow struct {
	accounts AccountCreator
	docs     DocumentWriter
	clock    clock.Clock
	metrics  metrics.Recorder
	logger   *slog.Logger

	mu    sync.RWMutex
	forms map[model.ClientID]storedForm
}

// New creates a signup Flow
func New(accounts AccountCreator, docs DocumentWriter, clk clock.Clock, recorder metrics.Recorder, logger *slog.Logger) *Flow {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Flow{
		accounts: accounts,
		docs:     docs,
		clock:    clk,
		metrics:  recorder,
		logger:   logger.With(slog.String("component", "signup")),
		forms:    make(map[model.ClientID]storedForm),
	}
}

// Submit validates the form, creates the account and writes its profile.
// The resulting form, including any error message, becomes the client's state
// with the password fields left out.
func (f *Flow) Submit(ctx context.Context, clientID model.ClientID, form Form) Result {
	result := f.submit(ctx, clientID, form)
	f.Update(clientID, result.Form)
	return result
}

func (f *Flow) submit(ctx context.Context, clientID model.ClientID, form Form) Result {
	if form.Password != form.PasswordRepeat {
		form.Error = MsgPasswordMismatch
		f.metrics.RecordSignup(metrics.SignupPasswordMismatch)
		return Result{Form: form}
	}

	account, err := f.accounts.CreateUserWithEmailAndPassword(ctx, clientID, form.Email, form.Password)
	if err != nil {
		form.Error = f.messageFor(err)
		f.metrics.RecordSignup(metrics.SignupRejected)
		return Result{Form: form, Err: err}
	}

	form.Error = ""
	result := Result{Form: form, Account: account}

	if account == nil || account.ID == "" {
		f.logger.Warn("account created without identifier, profile not written")
		f.metrics.RecordSignup(metrics.SignupCreated)
		return result
	}

	ref := f.docs.Doc(model.ProfilesCollection, string(account.ID))
	if err := f.docs.Set(ctx, ref, model.NewProfileDocument()); err != nil {
		f.logger.Error("profile write failed",
			slog.String("account_id", string(account.ID)),
			slog.String("path", ref.Path()),
			slog.String("error", err.Error()))
		result.Form.Error = MsgProfileNotSaved
		result.Err = err
		f.metrics.RecordSignup(metrics.SignupProfileFailed)
		return result
	}

	f.logger.Info("signup completed",
		slog.String("account_id", string(account.ID)),
		slog.String("profile", ref.Path()))
	result.ProfileRef = &ref
	f.metrics.RecordSignup(metrics.SignupCreated)
	return result
}

func (f *Flow) messageFor(err error) string {
	var idErr *identity.Error
	if !errors.As(err, &idErr) {
		f.logger.Warn("signup failed with unexpected error", slog.String("error", err.Error()))
		return MsgUnknown
	}

	msg, known := lookupMessage(idErr.Code)
	if !known {
		f.logger.Warn("signup failed with undocumented code",
			slog.String("code", idErr.Code),
			slog.String("message", idErr.Message))
	}
	return msg
}

// DismissError clears the error message and leaves every field untouched
func DismissError(form Form) Form {
	form.Error = ""
	return form
}

// Dismiss clears the error in the client's stored form and returns it
func (f *Flow) Dismiss(clientID model.ClientID) Form {
	f.mu.Lock()
	defer f.mu.Unlock()
	form := DismissError(f.forms[clientID].form)
	f.store(clientID, form)
	return form
}

// State returns the client's current form. Password fields are always empty.
func (f *Flow) State(clientID model.ClientID) Form {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.forms[clientID].form
}

// Update replaces the client's form, dropping the password fields
func (f *Flow) Update(clientID model.ClientID, form Form) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store(clientID, form)
}

// Forget drops the client's form state
func (f *Flow) Forget(clientID model.ClientID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.forms, clientID)
}

// Prune drops forms not touched since before and returns how many were removed
func (f *Flow) Prune(before time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	removed := 0
	for id, stored := range f.forms {
		if stored.lastSeen.Before(before) {
			delete(f.forms, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of clients with form state
func (f *Flow) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.forms)
}

// store must be called with f.mu held
func (f *Flow) store(clientID model.ClientID, form Form) {
	form.Password = ""
	form.PasswordRepeat = ""
	f.forms[clientID] = storedForm{form: form, lastSeen: f.clock.Now()}
}
