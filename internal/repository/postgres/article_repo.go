package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/repository"
)

const articleSelect = `
	SELECT a.id, a.author_id, a.title, a.subtitle, a.content,
		a.created_at, a.updated_at, a.published_at, a.like_count, au.display_name
	FROM articles a
	JOIN authors au ON a.author_id = au.id`

type ArticleRepo struct {
	db DB
}

func NewArticleRepo(db DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

func (r *ArticleRepo) Create(ctx context.Context, article *domain.Article) error {
	query := `
		INSERT INTO articles (id, author_id, title, subtitle, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query,
		article.ID, article.AuthorID, article.Title, article.Subtitle, article.Content, article.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting article: %w", err)
	}
	return nil
}

func (r *ArticleRepo) GetForAuthor(ctx context.Context, id, authorID uuid.UUID) (*domain.Article, error) {
	return r.getOne(ctx, articleSelect+" WHERE a.id = $1 AND a.author_id = $2", id, authorID)
}

func (r *ArticleRepo) GetPublished(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	return r.getOne(ctx, articleSelect+" WHERE a.id = $1 AND a.published_at IS NOT NULL", id)
}

func (r *ArticleRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Article, error) {
	return r.list(ctx, articleSelect+`
		WHERE a.author_id = $1
		ORDER BY a.published_at DESC NULLS FIRST, a.created_at DESC`, authorID)
}

func (r *ArticleRepo) ListPublished(ctx context.Context) ([]domain.Article, error) {
	return r.list(ctx, articleSelect+`
		WHERE a.published_at IS NOT NULL
		ORDER BY a.published_at DESC`)
}

func (r *ArticleRepo) Update(ctx context.Context, article *domain.Article) error {
	now := time.Now()
	query := `
		UPDATE articles SET title = $1, subtitle = $2, content = $3, updated_at = $4
		WHERE id = $5 AND author_id = $6`
	tag, err := r.db.Exec(ctx, query,
		article.Title, article.Subtitle, article.Content, now, article.ID, article.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("updating article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	article.UpdatedAt = &now
	return nil
}

// blank matches the characters strings.TrimSpace strips in the ASCII range.
const blank = `E' \t\n\r\f\x0B'`

func (r *ArticleRepo) Publish(ctx context.Context, id, authorID uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE articles SET published_at = $1
		WHERE id = $2 AND author_id = $3 AND published_at IS NULL
			AND btrim(title, ` + blank + `) <> ''
			AND btrim(subtitle, ` + blank + `) <> ''
			AND btrim(content, ` + blank + `) <> ''`
	tag, err := r.db.Exec(ctx, query, at, id, authorID)
	if err != nil {
		return false, fmt.Errorf("publishing article: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ArticleRepo) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ArticleRepo) getOne(ctx context.Context, query string, args ...any) (*domain.Article, error) {
	var a domain.Article
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.AuthorID, &a.Title, &a.Subtitle, &a.Content,
		&a.CreatedAt, &a.UpdatedAt, &a.PublishedAt, &a.LikeCount, &a.AuthorDisplayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArticleRepo) list(ctx context.Context, query string, args ...any) ([]domain.Article, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(
			&a.ID, &a.AuthorID, &a.Title, &a.Subtitle, &a.Content,
			&a.CreatedAt, &a.UpdatedAt, &a.PublishedAt, &a.LikeCount, &a.AuthorDisplayName,
		); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
