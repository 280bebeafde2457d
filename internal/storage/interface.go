package storage

import (
	"context"

	"github.com/mcoot/fitness-tracking/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Account operations
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)

	// Credential operations
	// CreateCredential fails with model.ErrEmailTaken if the email is already indexed
	CreateCredential(ctx context.Context, cred *model.Credential) error
	GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error)

	// Document operations
	SetDocument(ctx context.Context, ref model.DocumentRef, doc model.Document) error
	GetDocument(ctx context.Context, ref model.DocumentRef) (model.Document, error)
	DeleteDocument(ctx context.Context, ref model.DocumentRef) error
}
