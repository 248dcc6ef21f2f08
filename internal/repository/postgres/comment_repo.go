package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/domain"
)

type CommentRepo struct {
	db DB
}

func NewCommentRepo(db DB) *CommentRepo {
	return &CommentRepo{db: db}
}

func (r *CommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (id, article_id, author_display_name, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query,
		comment.ID, comment.ArticleID, comment.AuthorDisplayName, comment.Content, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

// ListByArticle returns comments newest first.
func (r *CommentRepo) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]domain.Comment, error) {
	query := `
		SELECT id, article_id, author_display_name, content, created_at
		FROM comments
		WHERE article_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.AuthorDisplayName, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
