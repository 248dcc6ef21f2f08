package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/domain"
)

var (
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("conflict")
	// ErrNotFound is returned when a scoped mutation matches no row.
	ErrNotFound = errors.New("not found")
)

// AuthorRepository is the credential store. Lookups that find nothing return nil, nil.
type AuthorRepository interface {
	Create(ctx context.Context, author *domain.Author) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Author, error)
	GetByEmail(ctx context.Context, email string) (*domain.Author, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, settings domain.AuthorSettings) error
}

// ArticleRepository mutations are scoped by owner: a non-owner matches no
// row and gets ErrNotFound.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	GetForAuthor(ctx context.Context, id, authorID uuid.UUID) (*domain.Article, error)
	GetPublished(ctx context.Context, id uuid.UUID) (*domain.Article, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Article, error)
	ListPublished(ctx context.Context) ([]domain.Article, error)
	Update(ctx context.Context, article *domain.Article) error
	// Publish sets published_at once. It reports false when the article is
	// already published or incomplete.
	Publish(ctx context.Context, id, authorID uuid.UUID, at time.Time) (bool, error)
	Delete(ctx context.Context, id, authorID uuid.UUID) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]domain.Comment, error)
}

// SessionRepository persists server-side sessions. Get returns nil, nil for
// unknown or expired sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string, now time.Time) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	UpdateDisplayName(ctx context.Context, authorID uuid.UUID, displayName string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
