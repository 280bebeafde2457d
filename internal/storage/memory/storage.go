package memory

import (
	"context"
	"sync"

	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	accounts    map[model.AccountID]*model.Account
	credentials map[model.AccountID]*model.Credential
	emailIndex  map[string]model.AccountID
	documents   map[model.DocumentRef]model.Document
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:    make(map[model.AccountID]*model.Account),
		credentials: make(map[model.AccountID]*model.Credential),
		emailIndex:  make(map[string]model.AccountID),
		documents:   make(map[model.DocumentRef]model.Document),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *account
	s.accounts[account.ID] = &stored
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	out := *account
	return &out, nil
}

// Credential operations

func (s *Storage) CreateCredential(ctx context.Context, cred *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emailIndex[cred.Email]; taken {
		return model.ErrEmailTaken
	}
	stored := *cred
	s.credentials[cred.AccountID] = &stored
	s.emailIndex[cred.Email] = cred.AccountID
	return nil
}

func (s *Storage) GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountID, ok := s.emailIndex[email]
	if !ok {
		return nil, model.ErrCredentialNotFound
	}
	cred, ok := s.credentials[accountID]
	if !ok {
		return nil, model.ErrCredentialNotFound
	}
	out := *cred
	return &out, nil
}

// Document operations

func (s *Storage) SetDocument(ctx context.Context, ref model.DocumentRef, doc model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[ref] = doc.Clone()
	return nil
}

func (s *Storage) GetDocument(ctx context.Context, ref model.DocumentRef) (model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[ref]
	if !ok {
		return nil, model.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

func (s *Storage) DeleteDocument(ctx context.Context, ref model.DocumentRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, ref)
	return nil
}

// DocumentCount returns the number of stored documents in a collection
func (s *Storage) DocumentCount(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for ref := range s.documents {
		if ref.Collection == collection {
			n++
		}
	}
	return n
}
