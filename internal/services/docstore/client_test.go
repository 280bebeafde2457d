package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/fitness-tracking/internal/model"
	"github.com/mcoot/fitness-tracking/internal/storage/memory"
	"github.com/mcoot/fitness-tracking/internal/testutil"
)

type ClientSuite struct {
	suite.Suite
	storage *memory.Storage
	client  *Client
	ctx     context.Context
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.storage = memory.New()
	s.client = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ClientSuite) TestDocPath() {
	ref := s.client.Doc("profiles", "abc123")
	s.Equal("profiles/abc123", ref.Path())
	s.Equal(model.ProfileRef("abc123"), ref)
}

func (s *ClientSuite) TestSetThenGet() {
	ref := s.client.Doc("profiles", "abc123")

	err := s.client.Set(s.ctx, ref, map[string]any{"name": "Henk"})
	s.Require().NoError(err)

	doc, err := s.client.Get(s.ctx, ref)
	s.Require().NoError(err)
	s.Equal(model.Document{"name": "Henk"}, doc)
}

func (s *ClientSuite) TestSetReplacesWholeDocument() {
	ref := s.client.Doc("profiles", "u1")
	_ = s.client.Set(s.ctx, ref, map[string]any{"name": "Henk", "age": 40})

	err := s.client.Set(s.ctx, ref, map[string]any{"name": "Jan"})
	s.Require().NoError(err)

	doc, _ := s.client.Get(s.ctx, ref)
	s.Equal(model.Document{"name": "Jan"}, doc)
}

func (s *ClientSuite) TestSetDoesNotAliasCallerMap() {
	ref := s.client.Doc("profiles", "u1")
	data := map[string]any{"name": "Henk"}
	_ = s.client.Set(s.ctx, ref, data)

	data["name"] = "changed"

	doc, _ := s.client.Get(s.ctx, ref)
	s.Equal("Henk", doc["name"])
}

func (s *ClientSuite) TestSetNilPayload() {
	err := s.client.Set(s.ctx, s.client.Doc("profiles", "u1"), nil)
	s.ErrorIs(err, model.ErrInvalidDocument)
}

func (s *ClientSuite) TestGetMissing() {
	_, err := s.client.Get(s.ctx, s.client.Doc("profiles", "missing"))
	s.ErrorIs(err, model.ErrDocumentNotFound)
}

func (s *ClientSuite) TestDelete() {
	ref := s.client.Doc("profiles", "u1")
	_ = s.client.Set(s.ctx, ref, map[string]any{"name": "Henk"})

	s.Require().NoError(s.client.Delete(s.ctx, ref))
	s.Equal(0, s.storage.DocumentCount("profiles"))

	// Deleting again is fine
	s.NoError(s.client.Delete(s.ctx, ref))
}

func (s *ClientSuite) TestInvalidRefs() {
	refs := []model.DocumentRef{
		s.client.Doc("", "u1"),
		s.client.Doc("profiles", ""),
		s.client.Doc("profiles", "a/b"),
		s.client.Doc("pro/files", "u1"),
	}

	for _, ref := range refs {
		s.ErrorIs(s.client.Set(s.ctx, ref, map[string]any{"name": "Henk"}), ErrInvalidRef, ref.Path())
		_, err := s.client.Get(s.ctx, ref)
		s.ErrorIs(err, ErrInvalidRef, ref.Path())
		s.ErrorIs(s.client.Delete(s.ctx, ref), ErrInvalidRef, ref.Path())
	}
	s.Equal(0, s.storage.DocumentCount("profiles"))
}
