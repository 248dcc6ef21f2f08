package domain

import (
	"time"

	"github.com/google/uuid"
)

type Author struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Salt         []byte    `json:"-"`
	PasswordHash []byte    `json:"-"`
	DisplayName  string    `json:"display_name"`
	BlogTitle    string    `json:"blog_title"`
	BlogSubtitle string    `json:"blog_subtitle"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthorSettings holds the fields an author may change after registration.
type AuthorSettings struct {
	DisplayName  string
	BlogTitle    string
	BlogSubtitle string
}

// Principal is the non-secret projection of an Author kept in session storage.
type Principal struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}

// Principal strips credentials from the author record.
func (a *Author) Principal() Principal {
	return Principal{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
	}
}
