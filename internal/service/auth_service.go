package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/password"
	"github.com/vedran77/inkwell/internal/repository"
)

var (
	ErrEmailTaken = errors.New("email already taken")
	// ErrInvalidCreds covers both unknown emails and wrong passwords.
	ErrInvalidCreds = errors.New("incorrect username or password")
)

type AuthService struct {
	authorRepo repository.AuthorRepository
	hasher     *password.Hasher
}

func NewAuthService(authorRepo repository.AuthorRepository, hasher *password.Hasher) *AuthService {
	return &AuthService{
		authorRepo: authorRepo,
		hasher:     hasher,
	}
}

// RegisterInput carries already validated and normalized fields.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Author, error) {
	existing, err := s.authorRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	salt, hash, err := s.hasher.Register(ctx, input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	author := &domain.Author{
		ID:           uuid.New(),
		Email:        input.Email,
		Salt:         salt,
		PasswordHash: hash,
		DisplayName:  input.DisplayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.authorRepo.Create(ctx, author); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating author: %w", err)
	}

	return author, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.Author, error) {
	author, err := s.authorRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if author == nil {
		// keep the response time of unknown emails close to a real check
		if err := s.hasher.Burn(ctx, input.Password); err != nil {
			return nil, fmt.Errorf("verifying password: %w", err)
		}
		return nil, ErrInvalidCreds
	}

	ok, err := s.hasher.Verify(ctx, input.Password, author.Salt, author.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCreds
	}

	return author, nil
}
