package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/repository"
)

const authorColumns = "id, email, password_hash, salt, display_name, blog_title, blog_subtitle, created_at, updated_at"

type AuthorRepo struct {
	db DB
}

func NewAuthorRepo(db DB) *AuthorRepo {
	return &AuthorRepo{db: db}
}

func (r *AuthorRepo) Create(ctx context.Context, author *domain.Author) error {
	query := `
		INSERT INTO authors (id, email, password_hash, salt, display_name, blog_title, blog_subtitle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		author.ID, normalizeEmail(author.Email), author.PasswordHash, author.Salt,
		author.DisplayName, author.BlogTitle, author.BlogSubtitle, author.CreatedAt, author.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting author: %w", mapError(err))
	}
	return nil
}

func (r *AuthorRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Author, error) {
	return r.scanAuthor(ctx, "SELECT "+authorColumns+" FROM authors WHERE id = $1", id)
}

func (r *AuthorRepo) GetByEmail(ctx context.Context, email string) (*domain.Author, error) {
	return r.scanAuthor(ctx, "SELECT "+authorColumns+" FROM authors WHERE email = $1", normalizeEmail(email))
}

func (r *AuthorRepo) UpdateSettings(ctx context.Context, id uuid.UUID, settings domain.AuthorSettings) error {
	query := `
		UPDATE authors SET display_name = $1, blog_title = $2, blog_subtitle = $3, updated_at = $4
		WHERE id = $5`

	tag, err := r.db.Exec(ctx, query, settings.DisplayName, settings.BlogTitle, settings.BlogSubtitle, time.Now(), id)
	if err != nil {
		return fmt.Errorf("updating author: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AuthorRepo) scanAuthor(ctx context.Context, query string, arg any) (*domain.Author, error) {
	var a domain.Author
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Salt,
		&a.DisplayName, &a.BlogTitle, &a.BlogSubtitle,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
