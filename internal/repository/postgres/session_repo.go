package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vedran77/inkwell/internal/domain"
)

type SessionRepo struct {
	db DB
}

func NewSessionRepo(db DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (id, author_id, email, display_name, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query,
		s.ID, s.Principal.ID, s.Principal.Email, s.Principal.DisplayName, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", mapError(err))
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string, now time.Time) (*domain.Session, error) {
	query := `
		SELECT id, author_id, email, display_name, created_at, expires_at
		FROM sessions
		WHERE id = $1 AND expires_at > $2`

	var s domain.Session
	err := r.db.QueryRow(ctx, query, id, now).Scan(
		&s.ID, &s.Principal.ID, &s.Principal.Email, &s.Principal.DisplayName, &s.CreatedAt, &s.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (r *SessionRepo) UpdateDisplayName(ctx context.Context, authorID uuid.UUID, displayName string) error {
	_, err := r.db.Exec(ctx, `UPDATE sessions SET display_name = $1 WHERE author_id = $2`, displayName, authorID)
	return err
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
