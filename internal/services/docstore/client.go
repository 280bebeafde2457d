package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/storage"
)

// ErrInvalidRef is returned for a reference with an empty segment or a segment containing '/'
var ErrInvalidRef = errors.New("invalid document reference")

// Client reads and writes documents addressed by collection and key
type Client struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a document store client
func New(store storage.Storage, logger *slog.Logger) *Client {
	return &Client{
		storage: store,
		logger:  logger.With(slog.String("component", "docstore")),
	}
}

// Doc builds a reference to collection/key. The reference is validated when used.
func (c *Client) Doc(collection, key string) model.DocumentRef {
	return model.DocumentRef{Collection: collection, Key: key}
}

// Set replaces the document at ref with data
func (c *Client) Set(ctx context.Context, ref model.DocumentRef, data map[string]any) error {
	if err := validateRef(ref); err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("%w: nil payload for %s", model.ErrInvalidDocument, ref.Path())
	}

	if err := c.storage.SetDocument(ctx, ref, model.Document(data).Clone()); err != nil {
		return fmt.Errorf("set %s: %w", ref.Path(), err)
	}
	c.logger.Debug("document written", slog.String("path", ref.Path()))
	return nil
}

// Get returns the document at ref, or model.ErrDocumentNotFound
func (c *Client) Get(ctx context.Context, ref model.DocumentRef) (model.Document, error) {
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	doc, err := c.storage.GetDocument(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", ref.Path(), err)
	}
	return doc, nil
}

// Delete removes the document at ref. Deleting a missing document is not an error.
func (c *Client) Delete(ctx context.Context, ref model.DocumentRef) error {
	if err := validateRef(ref); err != nil {
		return err
	}
	if err := c.storage.DeleteDocument(ctx, ref); err != nil {
		return fmt.Errorf("delete %s: %w", ref.Path(), err)
	}
	return nil
}

func validateRef(ref model.DocumentRef) error {
	for _, segment := range []string{ref.Collection, ref.Key} {
		if segment == "" || strings.Contains(segment, "/") {
			return fmt.Errorf("%w: %q", ErrInvalidRef, ref.Path())
		}
	}
	return nil
}
