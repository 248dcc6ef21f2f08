package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/repository"
)

var (
	ErrArticleNotFound   = errors.New("article not found")
	ErrArticleIncomplete = errors.New("published articles need a title, subtitle and content")
)

type ArticleService struct {
	articleRepo repository.ArticleRepository
	notifier    Notifier
}

func NewArticleService(articleRepo repository.ArticleRepository) *ArticleService {
	return &ArticleService{articleRepo: articleRepo}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *ArticleService) SetNotifier(n Notifier) {
	s.notifier = n
}

type UpdateArticleInput struct {
	Title    string
	Subtitle string
	Content  string
}

// CreateDraft starts an empty, unpublished article owned by authorID.
func (s *ArticleService) CreateDraft(ctx context.Context, authorID uuid.UUID) (*domain.Article, error) {
	article := &domain.Article{
		ID:        uuid.New(),
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("creating article: %w", err)
	}
	return article, nil
}

func (s *ArticleService) ListMine(ctx context.Context, authorID uuid.UUID) ([]domain.Article, error) {
	articles, err := s.articleRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	return articles, nil
}

// GetMine returns the article in any state, but only to its owner.
func (s *ArticleService) GetMine(ctx context.Context, authorID, id uuid.UUID) (*domain.Article, error) {
	article, err := s.articleRepo.GetForAuthor(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

func (s *ArticleService) Update(ctx context.Context, authorID, id uuid.UUID, input UpdateArticleInput) (*domain.Article, error) {
	article, err := s.GetMine(ctx, authorID, id)
	if err != nil {
		return nil, err
	}

	article.Title = input.Title
	article.Subtitle = input.Subtitle
	article.Content = input.Content

	// drafts may be saved half written, published articles may not be blanked
	if article.IsPublished() && !article.IsComplete() {
		return nil, ErrArticleIncomplete
	}

	if err := s.articleRepo.Update(ctx, article); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("updating article: %w", err)
	}

	return article, nil
}

// Publish makes a complete draft visible to readers. Publishing an already
// published article returns it unchanged.
func (s *ArticleService) Publish(ctx context.Context, authorID, id uuid.UUID) (*domain.Article, error) {
	article, err := s.GetMine(ctx, authorID, id)
	if err != nil {
		return nil, err
	}
	if article.IsPublished() {
		return article, nil
	}
	if !article.IsComplete() {
		return nil, ErrArticleIncomplete
	}

	published, err := s.articleRepo.Publish(ctx, id, authorID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("publishing article: %w", err)
	}

	// the row may have changed since it was read
	article, err = s.GetMine(ctx, authorID, id)
	if err != nil {
		return nil, err
	}

	if !published {
		if article.IsPublished() {
			return article, nil
		}
		return nil, ErrArticleIncomplete
	}

	if s.notifier != nil {
		s.notifier.NotifyPublished(article)
	}

	return article, nil
}

func (s *ArticleService) Delete(ctx context.Context, authorID, id uuid.UUID) error {
	err := s.articleRepo.Delete(ctx, id, authorID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrArticleNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	return nil
}

func (s *ArticleService) ListPublished(ctx context.Context) ([]domain.Article, error) {
	articles, err := s.articleRepo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	return articles, nil
}

// GetPublished hides drafts: they are reported as not found.
func (s *ArticleService) GetPublished(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	article, err := s.articleRepo.GetPublished(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}
