package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	notifier    Notifier
}

func NewCommentService(commentRepo repository.CommentRepository, articleRepo repository.ArticleRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *CommentService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Add records a comment on a published article. A nil principal comments
// as domain.AnonymousName.
func (s *CommentService) Add(ctx context.Context, principal *domain.Principal, articleID uuid.UUID, content string) (*domain.Comment, error) {
	article, err := s.articleRepo.GetPublished(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}

	name := domain.AnonymousName
	if principal != nil {
		name = principal.DisplayName
	}

	comment := &domain.Comment{
		ID:                uuid.New(),
		ArticleID:         articleID,
		AuthorDisplayName: name,
		Content:           content,
		CreatedAt:         time.Now(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNewComment(comment)
	}

	return comment, nil
}

// List returns the comments of an article, newest first.
func (s *CommentService) List(ctx context.Context, articleID uuid.UUID) ([]domain.Comment, error) {
	comments, err := s.commentRepo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}
