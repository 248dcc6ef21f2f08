package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/password"
	"github.com/vedran77/inkwell/internal/repository"
	"github.com/vedran77/inkwell/internal/repository/memory"
)

type fixture struct {
	authors  *memory.AuthorStore
	auth     *AuthService
	author   *AuthorService
	articles *ArticleService
	comments *CommentService
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher, err := password.New(password.Params{Iterations: 1, KeyLength: 32, SaltLength: 16}, 2)
	require.NoError(t, err)

	authors := memory.NewAuthorStore()
	commentStore := memory.NewCommentStore()
	articleStore := memory.NewArticleStore(authors, commentStore)
	notifier := &recordingNotifier{}

	f := &fixture{
		authors:  authors,
		auth:     NewAuthService(authors, hasher),
		author:   NewAuthorService(authors),
		articles: NewArticleService(articleStore),
		comments: NewCommentService(commentStore, articleStore),
		notifier: notifier,
	}
	f.articles.SetNotifier(notifier)
	f.comments.SetNotifier(notifier)
	return f
}

func (f *fixture) register(t *testing.T, email, name string) *domain.Author {
	t.Helper()
	a, err := f.auth.Register(context.Background(), RegisterInput{Email: email, Password: "Passw0rd!", DisplayName: name})
	require.NoError(t, err)
	return a
}

func (f *fixture) publishedArticle(t *testing.T, authorID uuid.UUID) *domain.Article {
	t.Helper()
	ctx := context.Background()

	draft, err := f.articles.CreateDraft(ctx, authorID)
	require.NoError(t, err)
	_, err = f.articles.Update(ctx, authorID, draft.ID, UpdateArticleInput{Title: "T", Subtitle: "S", Content: "C"})
	require.NoError(t, err)
	a, err := f.articles.Publish(ctx, authorID, draft.ID)
	require.NoError(t, err)
	return a
}

type recordingNotifier struct {
	mu        sync.Mutex
	comments  []*domain.Comment
	published []*domain.Article
}

func (n *recordingNotifier) NotifyNewComment(c *domain.Comment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.comments = append(n.comments, c)
}

func (n *recordingNotifier) NotifyPublished(a *domain.Article) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, a)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice@example.com", "Alice")
	assert.Len(t, alice.Salt, 16)
	assert.Len(t, alice.PasswordHash, 32)

	got, err := f.auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
}

func TestAuthService_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com", "Alice")

	_, err := f.auth.Register(context.Background(), RegisterInput{Email: "alice@example.com", Password: "Other0ne!", DisplayName: "Imposter"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, 1, f.authors.Count())
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com", "Alice")
	ctx := context.Background()

	_, wrongPassword := f.auth.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong"})
	_, unknownEmail := f.auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Passw0rd!"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCreds)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCreds)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_ConcurrentRegistrationCreatesOneAuthor(t *testing.T) {
	f := newFixture(t)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.auth.Register(context.Background(), RegisterInput{Email: "race@example.com", Password: "Passw0rd!", DisplayName: "R"})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrEmailTaken)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, f.authors.Count())
}

func TestAuthorService_UpdateSettings(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com", "Alice")
	ctx := context.Background()

	updated, err := f.author.UpdateSettings(ctx, alice.ID, SettingsInput{DisplayName: "Alice B", BlogTitle: "Notes", BlogSubtitle: "Mostly Go"})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.DisplayName)
	assert.Equal(t, "Notes", updated.BlogTitle)

	_, err = f.author.UpdateSettings(ctx, uuid.New(), SettingsInput{DisplayName: "x", BlogTitle: "x", BlogSubtitle: "x"})
	assert.ErrorIs(t, err, ErrAuthorNotFound)

	_, err = f.author.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAuthorNotFound)
}

func TestArticleService_DraftLifecycle(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com", "Alice")
	ctx := context.Background()

	draft, err := f.articles.CreateDraft(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, draft.IsPublished())

	_, err = f.articles.Publish(ctx, alice.ID, draft.ID)
	assert.ErrorIs(t, err, ErrArticleIncomplete)

	_, err = f.articles.GetPublished(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrArticleNotFound, "drafts are invisible to readers")

	updated, err := f.articles.Update(ctx, alice.ID, draft.ID, UpdateArticleInput{Title: "Hello", Subtitle: "World", Content: "Body"})
	require.NoError(t, err)
	assert.NotNil(t, updated.UpdatedAt)

	published, err := f.articles.Publish(ctx, alice.ID, draft.ID)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, "Alice", published.AuthorDisplayName)

	again, err := f.articles.Publish(ctx, alice.ID, draft.ID)
	require.NoError(t, err)
	assert.True(t, published.PublishedAt.Equal(*again.PublishedAt), "republish keeps the first timestamp")
	assert.Len(t, f.notifier.published, 1)

	list, err := f.articles.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, draft.ID, list[0].ID)
}

func TestArticleService_NonOwnerCannotTouch(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com", "Alice")
	bob := f.register(t, "bob@example.com", "Bob")
	ctx := context.Background()

	draft, err := f.articles.CreateDraft(ctx, alice.ID)
	require.NoError(t, err)

	_, err = f.articles.GetMine(ctx, bob.ID, draft.ID)
	assert.ErrorIs(t, err, ErrArticleNotFound)
	_, err = f.articles.Update(ctx, bob.ID, draft.ID, UpdateArticleInput{Title: "pwned"})
	assert.ErrorIs(t, err, ErrArticleNotFound)
	_, err = f.articles.Publish(ctx, bob.ID, draft.ID)
	assert.ErrorIs(t, err, ErrArticleNotFound)
	assert.ErrorIs(t, f.articles.Delete(ctx, bob.ID, draft.ID), ErrArticleNotFound)

	mine, err := f.articles.GetMine(ctx, alice.ID, draft.ID)
	require.NoError(t, err)
	assert.Empty(t, mine.Title)

	bobs, err := f.articles.ListMine(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobs)
	assert.NotNil(t, bobs)
}

func TestArticleService_PublishedArticleCannotBeBlanked(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com", "Alice")
	ctx := context.Background()

	a := f.publishedArticle(t, alice.ID)

	_, err := f.articles.Update(ctx, alice.ID, a.ID, UpdateArticleInput{})
	assert.ErrorIs(t, err, ErrArticleIncomplete)
	_, err = f.articles.Update(ctx, alice.ID, a.ID, UpdateArticleInput{Title: "T", Subtitle: "S", Content: "\n\t"})
	assert.ErrorIs(t, err, ErrArticleIncomplete)

	got, err := f.articles.GetPublished(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "C", got.Content)

	edited, err := f.articles.Update(ctx, alice.ID, a.ID, UpdateArticleInput{Title: "T2", Subtitle: "S2", Content: "C2"})
	require.NoError(t, err)
	assert.Equal(t, "T2", edited.Title)
}

func TestArticleService_PublishRejectsWhitespaceContent(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com", "Alice")
	ctx := context.Background()

	draft, err := f.articles.CreateDraft(ctx, alice.ID)
	require.NoError(t, err)
	_, err = f.articles.Update(ctx, alice.ID, draft.ID, UpdateArticleInput{Title: "T", Subtitle: "S", Content: "\n\t\r"})
	require.NoError(t, err)

	_, err = f.articles.Publish(ctx, alice.ID, draft.ID)
	assert.ErrorIs(t, err, ErrArticleIncomplete)
	assert.Empty(t, f.notifier.published)
}

func TestArticleService_Delete(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com", "Alice")
	ctx := context.Background()

	a := f.publishedArticle(t, alice.ID)
	require.NoError(t, f.articles.Delete(ctx, alice.ID, a.ID))

	_, err := f.articles.GetPublished(ctx, a.ID)
	assert.ErrorIs(t, err, ErrArticleNotFound)
	assert.ErrorIs(t, f.articles.Delete(ctx, alice.ID, a.ID), ErrArticleNotFound)
}

func TestCommentService_Add(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com", "Alice")
	ctx := context.Background()
	a := f.publishedArticle(t, alice.ID)

	anon, err := f.comments.Add(ctx, nil, a.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousName, anon.AuthorDisplayName)

	p := alice.Principal()
	named, err := f.comments.Add(ctx, &p, a.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, "Alice", named.AuthorDisplayName)

	list, err := f.comments.List(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Len(t, f.notifier.comments, 2)
}

func TestCommentService_RejectsDraftsAndUnknownArticles(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice@example.com", "Alice")
	ctx := context.Background()

	draft, err := f.articles.CreateDraft(ctx, alice.ID)
	require.NoError(t, err)

	_, err = f.comments.Add(ctx, nil, draft.ID, "too early")
	assert.ErrorIs(t, err, ErrArticleNotFound)
	_, err = f.comments.Add(ctx, nil, uuid.New(), "nowhere")
	assert.ErrorIs(t, err, ErrArticleNotFound)

	list, err := f.comments.List(ctx, draft.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.notifier.comments)
}

type failingAuthors struct{ repository.AuthorRepository }

func (failingAuthors) GetByEmail(context.Context, string) (*domain.Author, error) {
	return nil, errors.New("db down")
}

func TestAuthService_StoreErrorIsNotInvalidCreds(t *testing.T) {
	hasher, err := password.New(password.Params{Iterations: 1, KeyLength: 32, SaltLength: 16}, 1)
	require.NoError(t, err)
	svc := NewAuthService(failingAuthors{}, hasher)

	_, err = svc.Login(context.Background(), LoginInput{Email: "a@b.io", Password: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCreds)
}
