package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/repository"
)

type AuthorStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]domain.Author
	byEmail map[string]uuid.UUID
}

func NewAuthorStore() *AuthorStore {
	return &AuthorStore{
		byID:    make(map[uuid.UUID]domain.Author),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *AuthorStore) Create(_ context.Context, author *domain.Author) error {
	email := strings.ToLower(strings.TrimSpace(author.Email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[email]; taken {
		return repository.ErrConflict
	}
	a := *author
	a.Email = email
	s.byID[a.ID] = a
	s.byEmail[email] = a.ID
	return nil
}

func (s *AuthorStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *AuthorStore) GetByEmail(ctx context.Context, email string) (*domain.Author, error) {
	s.mu.RLock()
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return s.GetByID(ctx, id)
}

func (s *AuthorStore) UpdateSettings(_ context.Context, id uuid.UUID, settings domain.AuthorSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.DisplayName = settings.DisplayName
	a.BlogTitle = settings.BlogTitle
	a.BlogSubtitle = settings.BlogSubtitle
	a.UpdatedAt = time.Now()
	s.byID[id] = a
	return nil
}

// Count returns the number of stored authors.
func (s *AuthorStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *AuthorStore) displayName(id uuid.UUID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id].DisplayName
}
