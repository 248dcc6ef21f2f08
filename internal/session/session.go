// Package session binds authenticated principals to opaque server-side
// session ids.
//
// The cookie carries an HS256 token whose only claims are the session id and
// its expiry. The signature proves the id was minted here; who the caller is
// always comes from the session store, never from the token.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/logging"
	"github.com/vedran77/inkwell/internal/repository"
)

const idBytes = 32

var ErrNoSecret = errors.New("session secret is required")

type CookieOptions struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
}

type Options struct {
	Secret string
	TTL    time.Duration
	Cookie CookieOptions
	// Now defaults to time.Now.
	Now func() time.Time
}

type Manager struct {
	store  repository.SessionRepository
	secret []byte
	ttl    time.Duration
	cookie CookieOptions
	now    func() time.Time
}

func NewManager(store repository.SessionRepository, opts Options) (*Manager, error) {
	if opts.Secret == "" {
		return nil, ErrNoSecret
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Cookie.Name == "" {
		opts.Cookie.Name = "inkwell_session"
	}
	if opts.Cookie.SameSite == 0 {
		opts.Cookie.SameSite = http.SameSiteLaxMode
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		store:  store,
		secret: []byte(opts.Secret),
		ttl:    opts.TTL,
		cookie: opts.Cookie,
		now:    opts.Now,
	}, nil
}

// Establish starts a new session for author and sets the session cookie.
// Every call mints a fresh id, so logins from different clients never share one.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, author *domain.Author) (*domain.Principal, error) {
	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}

	now := m.now()
	s := &domain.Session{
		ID:        id,
		Principal: author.Principal(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	token, err := m.sign(s)
	if err != nil {
		return nil, fmt.Errorf("signing session: %w", err)
	}
	http.SetCookie(w, m.newCookie(token, s.ExpiresAt))

	p := s.Principal
	return &p, nil
}

// Resolve returns the principal bound to the request's session, or nil for
// anonymous requests. Only store failures are errors.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (*domain.Principal, error) {
	id, ok := m.sessionID(r)
	if !ok {
		return nil, nil
	}

	s, err := m.store.Get(ctx, id, m.now())
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if s == nil {
		return nil, nil
	}
	p := s.Principal
	return &p, nil
}

// Destroy ends the request's session. Later requests carrying the same
// cookie resolve to anonymous.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, m.expiredCookie())

	id, ok := m.sessionID(r)
	if !ok {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// RefreshDisplayName keeps live sessions of an author in step with their settings.
func (m *Manager) RefreshDisplayName(ctx context.Context, authorID uuid.UUID, name string) error {
	return m.store.UpdateDisplayName(ctx, authorID, name)
}

// Sweep removes expired sessions and reports how many went.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

// Sweeper runs RunSweeper as a supervised service.
type Sweeper struct {
	m        *Manager
	interval time.Duration
	log      logging.Logger
}

func NewSweeper(m *Manager, interval time.Duration, log logging.Logger) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{m: m, interval: interval, log: log}
}

func (s *Sweeper) Serve(ctx context.Context) error {
	s.m.RunSweeper(ctx, s.interval, s.log)
	return ctx.Err()
}

func (s *Sweeper) String() string {
	return "session sweeper"
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration, log logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Sweep(ctx)
			if err != nil {
				log.Error(ctx, "session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				log.Debug(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.cookie.Name)
	if err != nil || c.Value == "" {
		return "", false
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(c.Value, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}

func (m *Manager) sign(s *domain.Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        s.ID,
		IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	})
	return token.SignedString(m.secret)
}

func (m *Manager) newCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: m.cookie.SameSite,
	}
}

func (m *Manager) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: m.cookie.SameSite,
	}
}

func newID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
