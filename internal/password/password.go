// Package password derives and verifies salted PBKDF2-HMAC-SHA256 password hashes.
//
// Derivations are CPU heavy, so a Hasher bounds how many run at once. Callers
// waiting for a slot can give up through their context; a derivation that has
// started always runs to completion.
package password

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultIterations = 310000
	DefaultKeyLength  = 32
	DefaultSaltLength = 16

	minSaltLength = 16
)

var ErrInvalidParams = errors.New("invalid password hashing parameters")

type Params struct {
	Iterations int
	KeyLength  int
	SaltLength int
}

func DefaultParams() Params {
	return Params{
		Iterations: DefaultIterations,
		KeyLength:  DefaultKeyLength,
		SaltLength: DefaultSaltLength,
	}
}

func (p Params) validate() error {
	switch {
	case p.Iterations <= 0:
		return fmt.Errorf("%w: iterations must be positive", ErrInvalidParams)
	case p.KeyLength <= 0:
		return fmt.Errorf("%w: key length must be positive", ErrInvalidParams)
	case p.SaltLength < minSaltLength:
		return fmt.Errorf("%w: salt must be at least %d bytes", ErrInvalidParams, minSaltLength)
	}
	return nil
}

type Hasher struct {
	params Params
	slots  *semaphore.Weighted
}

// New returns a Hasher running at most workers derivations concurrently.
// Bad parameters are a configuration error and should stop the process.
func New(params Params, workers int) (*Hasher, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive", ErrInvalidParams)
	}
	return &Hasher{
		params: params,
		slots:  semaphore.NewWeighted(int64(workers)),
	}, nil
}

// Register generates a fresh salt and returns it with the derived hash.
func (h *Hasher) Register(ctx context.Context, password string) (salt, hash []byte, err error) {
	salt = make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("generating salt: %w", err)
	}

	hash, err = h.derive(ctx, password, salt)
	if err != nil {
		return nil, nil, err
	}
	return salt, hash, nil
}

// Verify reports whether password derives to expected under salt.
// A mismatch, including a hash of the wrong length, is false with a nil error.
func (h *Hasher) Verify(ctx context.Context, password string, salt, expected []byte) (bool, error) {
	hash, err := h.derive(ctx, password, salt)
	if err != nil {
		return false, err
	}
	return Equal(hash, expected), nil
}

// Burn runs one derivation against a throwaway salt so that rejecting an
// unknown account costs the same as rejecting a wrong password.
func (h *Hasher) Burn(ctx context.Context, password string) error {
	_, err := h.derive(ctx, password, make([]byte, h.params.SaltLength))
	return err
}

func (h *Hasher) derive(ctx context.Context, password string, salt []byte) ([]byte, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.slots.Release(1)

	return pbkdf2.Key([]byte(password), salt, h.params.Iterations, h.params.KeyLength, sha256.New), nil
}

// Equal compares two hashes in constant time. Different lengths are unequal.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
