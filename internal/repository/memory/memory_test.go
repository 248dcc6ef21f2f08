package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/repository"
)

func TestAuthorStore_EmailIsCaseInsensitiveAndUnique(t *testing.T) {
	ctx := context.Background()
	s := NewAuthorStore()

	require.NoError(t, s.Create(ctx, &domain.Author{ID: uuid.New(), Email: "Alice@Example.com"}))
	err := s.Create(ctx, &domain.Author{ID: uuid.New(), Email: "alice@EXAMPLE.com"})
	require.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, 1, s.Count())

	got, err := s.GetByEmail(ctx, "ALICE@example.COM")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice@example.com", got.Email)
}

func TestArticleStore_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	authors := NewAuthorStore()
	s := NewArticleStore(authors, nil)

	owner, stranger := uuid.New(), uuid.New()
	require.NoError(t, authors.Create(ctx, &domain.Author{ID: owner, Email: "o@x.io", DisplayName: "Owner"}))

	a := &domain.Article{ID: uuid.New(), AuthorID: owner, Title: "T", Subtitle: "S", Content: "C", CreatedAt: time.Now()}
	require.NoError(t, s.Create(ctx, a))

	got, err := s.GetForAuthor(ctx, a.ID, stranger)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = s.Update(ctx, &domain.Article{ID: a.ID, AuthorID: stranger, Title: "hijack"})
	require.ErrorIs(t, err, repository.ErrNotFound)

	ok, err := s.Publish(ctx, a.ID, stranger, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	require.ErrorIs(t, s.Delete(ctx, a.ID, stranger), repository.ErrNotFound)

	got, err = s.GetForAuthor(ctx, a.ID, owner)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "Owner", got.AuthorDisplayName)
}

func TestArticleStore_PublishOnce(t *testing.T) {
	ctx := context.Background()
	s := NewArticleStore(nil, nil)
	owner := uuid.New()

	a := &domain.Article{ID: uuid.New(), AuthorID: owner, Title: "T", Subtitle: "S", Content: "C"}
	require.NoError(t, s.Create(ctx, a))

	first := time.Now()
	ok, err := s.Publish(ctx, a.ID, owner, first)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Publish(ctx, a.ID, owner, first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.GetPublished(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.PublishedAt.Equal(first))
}

func TestArticleStore_ListPublishedHidesDrafts(t *testing.T) {
	ctx := context.Background()
	s := NewArticleStore(nil, nil)
	owner := uuid.New()

	older, newer := time.Now().Add(-time.Hour), time.Now()
	draft := &domain.Article{ID: uuid.New(), AuthorID: owner}
	p1 := &domain.Article{ID: uuid.New(), AuthorID: owner, PublishedAt: &older}
	p2 := &domain.Article{ID: uuid.New(), AuthorID: owner, PublishedAt: &newer}
	for _, a := range []*domain.Article{draft, p1, p2} {
		require.NoError(t, s.Create(ctx, a))
	}

	list, err := s.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, p2.ID, list[0].ID)
	assert.Equal(t, p1.ID, list[1].ID)

	mine, err := s.ListByAuthor(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, draft.ID, mine[0].ID)
}

func TestArticleStore_DeleteDropsComments(t *testing.T) {
	ctx := context.Background()
	comments := NewCommentStore()
	s := NewArticleStore(nil, comments)
	owner := uuid.New()

	doomed := &domain.Article{ID: uuid.New(), AuthorID: owner}
	kept := &domain.Article{ID: uuid.New(), AuthorID: owner}
	for _, a := range []*domain.Article{doomed, kept} {
		require.NoError(t, s.Create(ctx, a))
		require.NoError(t, comments.Create(ctx, &domain.Comment{ID: uuid.New(), ArticleID: a.ID, Content: "hi", CreatedAt: time.Now()}))
	}

	require.NoError(t, s.Delete(ctx, doomed.ID, owner))

	list, err := comments.ListByArticle(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = comments.ListByArticle(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSessionStore_ExpiryAndSweep(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore()
	now := time.Now()

	require.NoError(t, s.Create(ctx, &domain.Session{ID: "live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, s.Create(ctx, &domain.Session{ID: "old", ExpiresAt: now.Add(-time.Second)}))
	require.ErrorIs(t, s.Create(ctx, &domain.Session{ID: "live"}), repository.ErrConflict)

	got, err := s.Get(ctx, "old", now)
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := s.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, s.Len())
}
