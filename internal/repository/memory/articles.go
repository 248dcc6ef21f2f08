package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/repository"
)

type ArticleStore struct {
	mu       sync.RWMutex
	articles map[uuid.UUID]domain.Article
	authors  *AuthorStore
	comments *CommentStore
}

// NewArticleStore joins author display names from authors, like the SQL views
// do. Deleting an article drops its comments from comments, matching the
// ON DELETE CASCADE in the schema. Either store may be nil.
func NewArticleStore(authors *AuthorStore, comments *CommentStore) *ArticleStore {
	return &ArticleStore{
		articles: make(map[uuid.UUID]domain.Article),
		authors:  authors,
		comments: comments,
	}
}

func (s *ArticleStore) Create(_ context.Context, article *domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[article.ID] = *article
	return nil
}

func (s *ArticleStore) GetForAuthor(_ context.Context, id, authorID uuid.UUID) (*domain.Article, error) {
	s.mu.RLock()
	a, ok := s.articles[id]
	s.mu.RUnlock()

	if !ok || a.AuthorID != authorID {
		return nil, nil
	}
	return s.joined(a), nil
}

func (s *ArticleStore) GetPublished(_ context.Context, id uuid.UUID) (*domain.Article, error) {
	s.mu.RLock()
	a, ok := s.articles[id]
	s.mu.RUnlock()

	if !ok || !a.IsPublished() {
		return nil, nil
	}
	return s.joined(a), nil
}

func (s *ArticleStore) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]domain.Article, error) {
	list := s.filter(func(a domain.Article) bool { return a.AuthorID == authorID })
	// drafts first, then most recently published
	sort.SliceStable(list, func(i, j int) bool {
		pi, pj := list[i].PublishedAt, list[j].PublishedAt
		switch {
		case pi == nil && pj == nil:
			return list[i].CreatedAt.After(list[j].CreatedAt)
		case pi == nil:
			return true
		case pj == nil:
			return false
		default:
			return pi.After(*pj)
		}
	})
	return list, nil
}

func (s *ArticleStore) ListPublished(_ context.Context) ([]domain.Article, error) {
	list := s.filter(func(a domain.Article) bool { return a.IsPublished() })
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].PublishedAt.After(*list[j].PublishedAt)
	})
	return list, nil
}

func (s *ArticleStore) Update(_ context.Context, article *domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[article.ID]
	if !ok || a.AuthorID != article.AuthorID {
		return repository.ErrNotFound
	}
	now := time.Now()
	a.Title, a.Subtitle, a.Content = article.Title, article.Subtitle, article.Content
	a.UpdatedAt = &now
	s.articles[a.ID] = a
	article.UpdatedAt = &now
	return nil
}

func (s *ArticleStore) Publish(_ context.Context, id, authorID uuid.UUID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[id]
	if !ok || a.AuthorID != authorID || a.IsPublished() || !a.IsComplete() {
		return false, nil
	}
	a.PublishedAt = &at
	s.articles[id] = a
	return true, nil
}

func (s *ArticleStore) Delete(_ context.Context, id, authorID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[id]
	if !ok || a.AuthorID != authorID {
		return repository.ErrNotFound
	}
	delete(s.articles, id)
	if s.comments != nil {
		s.comments.deleteByArticle(id)
	}
	return nil
}

func (s *ArticleStore) filter(keep func(domain.Article) bool) []domain.Article {
	s.mu.RLock()
	var out []domain.Article
	for _, a := range s.articles {
		if keep(a) {
			out = append(out, a)
		}
	}
	s.mu.RUnlock()

	for i := range out {
		out[i] = *s.joined(out[i])
	}
	return out
}

func (s *ArticleStore) joined(a domain.Article) *domain.Article {
	if s.authors != nil {
		a.AuthorDisplayName = s.authors.displayName(a.AuthorID)
	}
	return &a
}
