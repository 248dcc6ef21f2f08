package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/domain"
)

type CommentStore struct {
	mu        sync.RWMutex
	byArticle map[uuid.UUID][]domain.Comment
}

func NewCommentStore() *CommentStore {
	return &CommentStore{byArticle: make(map[uuid.UUID][]domain.Comment)}
}

func (s *CommentStore) Create(_ context.Context, comment *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byArticle[comment.ArticleID] = append(s.byArticle[comment.ArticleID], *comment)
	return nil
}

func (s *CommentStore) ListByArticle(_ context.Context, articleID uuid.UUID) ([]domain.Comment, error) {
	s.mu.RLock()
	list := append([]domain.Comment(nil), s.byArticle[articleID]...)
	s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *CommentStore) deleteByArticle(articleID uuid.UUID) {
	s.mu.Lock()
	delete(s.byArticle, articleID)
	s.mu.Unlock()
}
