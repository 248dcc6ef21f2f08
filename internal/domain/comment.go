package domain

import (
	"time"

	"github.com/google/uuid"
)

// AnonymousName is recorded on comments left without a session.
const AnonymousName = "Anonymous"

type Comment struct {
	ID                uuid.UUID `json:"id"`
	ArticleID         uuid.UUID `json:"article_id"`
	AuthorDisplayName string    `json:"author_display_name"`
	Content           string    `json:"content"`
	CreatedAt         time.Time `json:"created_at"`
}
