package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/fitness-tracking/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Account tests

func (s *StorageSuite) TestSaveAndGetAccount() {
	account := &model.Account{
		ID:        "u1",
		Email:     "a@b.com",
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	err := s.storage.SaveAccount(s.ctx, account)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetAccount(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(account.Email, retrieved.Email)
	s.True(account.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *StorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccount(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestAccountKeyUsesPrefix() {
	_ = s.storage.SaveAccount(s.ctx, &model.Account{ID: "u1"})
	s.True(s.mini.Exists("fitness:account:u1"))
}

// Credential tests

func (s *StorageSuite) TestCreateCredentialIndexesEmail() {
	cred := &model.Credential{AccountID: "u1", Email: "a@b.com", PasswordHash: "hash"}

	err := s.storage.CreateCredential(s.ctx, cred)
	s.Require().NoError(err)

	indexed, err := s.mini.Get("fitness:idx:email:a@b.com")
	s.Require().NoError(err)
	s.Equal("u1", indexed)

	retrieved, err := s.storage.GetCredentialByEmail(s.ctx, "a@b.com")
	s.Require().NoError(err)
	s.Equal(model.AccountID("u1"), retrieved.AccountID)
	s.Equal("hash", retrieved.PasswordHash)
}

func (s *StorageSuite) TestCreateCredentialRejectsDuplicateEmail() {
	_ = s.storage.CreateCredential(s.ctx, &model.Credential{AccountID: "u1", Email: "a@b.com"})

	err := s.storage.CreateCredential(s.ctx, &model.Credential{AccountID: "u2", Email: "a@b.com"})
	s.ErrorIs(err, model.ErrEmailTaken)

	// Original owner is untouched
	retrieved, err := s.storage.GetCredentialByEmail(s.ctx, "a@b.com")
	s.Require().NoError(err)
	s.Equal(model.AccountID("u1"), retrieved.AccountID)
}

func (s *StorageSuite) TestGetCredentialByEmailNotFound() {
	_, err := s.storage.GetCredentialByEmail(s.ctx, "nobody@b.com")
	s.ErrorIs(err, model.ErrCredentialNotFound)
}

// Document tests

func (s *StorageSuite) TestSetAndGetDocument() {
	ref := model.ProfileRef("abc123")

	err := s.storage.SetDocument(s.ctx, ref, model.Document{"name": "Henk"})
	s.Require().NoError(err)
	s.True(s.mini.Exists("fitness:doc:profiles:abc123"))

	doc, err := s.storage.GetDocument(s.ctx, ref)
	s.Require().NoError(err)
	s.Equal("Henk", doc["name"])
}

func (s *StorageSuite) TestGetDocumentNotFound() {
	_, err := s.storage.GetDocument(s.ctx, model.ProfileRef("missing"))
	s.ErrorIs(err, model.ErrDocumentNotFound)
}

func (s *StorageSuite) TestDeleteDocument() {
	ref := model.ProfileRef("u1")
	_ = s.storage.SetDocument(s.ctx, ref, model.Document{"name": "Henk"})

	err := s.storage.DeleteDocument(s.ctx, ref)
	s.Require().NoError(err)

	_, err = s.storage.GetDocument(s.ctx, ref)
	s.ErrorIs(err, model.ErrDocumentNotFound)
}

func (s *StorageSuite) TestConnectionErrorIsReturned() {
	s.mini.Close()

	_, err := s.storage.GetDocument(s.ctx, model.ProfileRef("u1"))
	s.Error(err)
	s.NotErrorIs(err, model.ErrDocumentNotFound)
}
