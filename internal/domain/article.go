package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Article struct {
	ID          uuid.UUID  `json:"id"`
	AuthorID    uuid.UUID  `json:"author_id"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	LikeCount   int        `json:"like_count"`
	// Joined fields
	AuthorDisplayName string `json:"author_display_name,omitempty"`
}

// IsPublished reports whether readers may see the article.
func (a *Article) IsPublished() bool {
	return a.PublishedAt != nil
}

// IsComplete reports whether the article has everything required to publish.
func (a *Article) IsComplete() bool {
	return strings.TrimSpace(a.Title) != "" &&
		strings.TrimSpace(a.Subtitle) != "" &&
		strings.TrimSpace(a.Content) != ""
}
