package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		keys:   keys{prefix: prefix},
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.keys.account(account.ID), data, 0).Err()
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	var account model.Account
	if err := s.getJSON(ctx, s.keys.account(id), &account); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Credential operations

func (s *Storage) CreateCredential(ctx context.Context, cred *model.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}

	// Claim the email first so concurrent signups cannot both win
	claimed, err := s.client.SetNX(ctx, s.keys.emailIndex(cred.Email), string(cred.AccountID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrEmailTaken
	}

	if err := s.client.Set(ctx, s.keys.credential(cred.AccountID), data, 0).Err(); err != nil {
		// Release the claim so the email can be retried
		_ = s.client.Del(ctx, s.keys.emailIndex(cred.Email)).Err()
		return err
	}
	return nil
}

func (s *Storage) GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	accountID, err := s.client.Get(ctx, s.keys.emailIndex(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCredentialNotFound
		}
		return nil, err
	}

	var cred model.Credential
	if err := s.getJSON(ctx, s.keys.credential(model.AccountID(accountID)), &cred); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCredentialNotFound
		}
		return nil, err
	}
	return &cred, nil
}

// Document operations

func (s *Storage) SetDocument(ctx context.Context, ref model.DocumentRef, doc model.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.keys.document(ref), data, 0).Err()
}

func (s *Storage) GetDocument(ctx context.Context, ref model.DocumentRef) (model.Document, error) {
	var doc model.Document
	if err := s.getJSON(ctx, s.keys.document(ref), &doc); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *Storage) DeleteDocument(ctx context.Context, ref model.DocumentRef) error {
	return s.client.Del(ctx, s.keys.document(ref)).Err()
}

func (s *Storage) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
