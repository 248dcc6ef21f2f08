package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/repository"
)

var ErrAuthorNotFound = errors.New("author not found")

type AuthorService struct {
	authorRepo repository.AuthorRepository
}

func NewAuthorService(authorRepo repository.AuthorRepository) *AuthorService {
	return &AuthorService{authorRepo: authorRepo}
}

type SettingsInput struct {
	DisplayName  string
	BlogTitle    string
	BlogSubtitle string
}

func (s *AuthorService) Get(ctx context.Context, id uuid.UUID) (*domain.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrAuthorNotFound
	}
	return author, nil
}

func (s *AuthorService) UpdateSettings(ctx context.Context, id uuid.UUID, input SettingsInput) (*domain.Author, error) {
	err := s.authorRepo.UpdateSettings(ctx, id, domain.AuthorSettings{
		DisplayName:  input.DisplayName,
		BlogTitle:    input.BlogTitle,
		BlogSubtitle: input.BlogSubtitle,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating settings: %w", err)
	}

	return s.Get(ctx, id)
}
