package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/logging"
	"github.com/vedran77/inkwell/internal/repository/memory"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(t *testing.T) (*Manager, *memory.SessionStore, *clock) {
	t.Helper()
	store := memory.NewSessionStore()
	clk := &clock{t: time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)}
	m, err := NewManager(store, Options{
		Secret: "test-secret",
		TTL:    time.Hour,
		Cookie: CookieOptions{Name: "sid", Secure: true, SameSite: http.SameSiteStrictMode},
		Now:    clk.Now,
	})
	require.NoError(t, err)
	return m, store, clk
}

func testAuthor() *domain.Author {
	return &domain.Author{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		Salt:         []byte("salt"),
		PasswordHash: []byte("hash"),
	}
}

func login(t *testing.T, m *Manager, a *domain.Author) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	_, err := m.Establish(context.Background(), rec, a)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(memory.NewSessionStore(), Options{})
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestEstablish_SetsHardenedCookie(t *testing.T) {
	m, _, _ := newTestManager(t)
	a := testAuthor()

	rec := httptest.NewRecorder()
	p, err := m.Establish(context.Background(), rec, a)
	require.NoError(t, err)
	assert.Equal(t, domain.Principal{ID: a.ID, Email: a.Email, DisplayName: "Alice"}, *p)

	c := rec.Result().Cookies()[0]
	assert.Equal(t, "sid", c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 3600, c.MaxAge)
	assert.NotContains(t, c.Value, a.ID.String())
}

func TestResolve_AfterLogin(t *testing.T) {
	m, _, _ := newTestManager(t)
	a := testAuthor()
	c := login(t, m, a)

	p, err := m.Resolve(context.Background(), requestWith(c))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, a.ID, p.ID)
}

func TestResolve_AnonymousCases(t *testing.T) {
	m, _, _ := newTestManager(t)
	valid := login(t, m, testAuthor())

	other, err := NewManager(memory.NewSessionStore(), Options{Secret: "other-secret", Cookie: CookieOptions{Name: "sid"}})
	require.NoError(t, err)
	forged := login(t, other, testAuthor())

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"empty value", &http.Cookie{Name: "sid", Value: ""}},
		{"garbage", &http.Cookie{Name: "sid", Value: "not-a-token"}},
		{"tampered", &http.Cookie{Name: "sid", Value: swapSignature(valid.Value, forged.Value)}},
		{"foreign signature", &http.Cookie{Name: "sid", Value: forged.Value}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := m.Resolve(context.Background(), requestWith(tc.cookie))
			require.NoError(t, err)
			assert.Nil(t, p)
		})
	}
}

// swapSignature keeps token's header and claims but grafts on donor's signature.
func swapSignature(token, donor string) string {
	parts := strings.Split(token, ".")
	donorParts := strings.Split(donor, ".")
	return parts[0] + "." + parts[1] + "." + donorParts[2]
}

func TestResolve_ValidTokenForUnknownSession(t *testing.T) {
	m, store, _ := newTestManager(t)
	c := login(t, m, testAuthor())

	// signature is fine but the server no longer knows the id
	for _, id := range store.IDs() {
		require.NoError(t, store.Delete(context.Background(), id))
	}

	p, err := m.Resolve(context.Background(), requestWith(c))
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDestroy_RevertsToAnonymous(t *testing.T) {
	m, store, _ := newTestManager(t)
	c := login(t, m, testAuthor())

	rec := httptest.NewRecorder()
	require.NoError(t, m.Destroy(context.Background(), rec, requestWith(c)))

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
	assert.Equal(t, 0, store.Len())

	p, err := m.Resolve(context.Background(), requestWith(c))
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDestroy_WithoutSessionIsNoop(t *testing.T) {
	m, _, _ := newTestManager(t)
	require.NoError(t, m.Destroy(context.Background(), httptest.NewRecorder(), requestWith(nil)))
}

func TestResolve_ExpiredSession(t *testing.T) {
	m, _, clk := newTestManager(t)
	c := login(t, m, testAuthor())

	clk.Advance(59 * time.Minute)
	p, err := m.Resolve(context.Background(), requestWith(c))
	require.NoError(t, err)
	require.NotNil(t, p)

	clk.Advance(2 * time.Minute)
	p, err = m.Resolve(context.Background(), requestWith(c))
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestConcurrentLoginsAreIndependent(t *testing.T) {
	m, _, _ := newTestManager(t)
	a := testAuthor()

	laptop := login(t, m, a)
	phone := login(t, m, a)
	assert.NotEqual(t, laptop.Value, phone.Value)

	require.NoError(t, m.Destroy(context.Background(), httptest.NewRecorder(), requestWith(laptop)))

	p, err := m.Resolve(context.Background(), requestWith(phone))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, a.ID, p.ID)
}

func TestRefreshDisplayName(t *testing.T) {
	m, _, _ := newTestManager(t)
	a := testAuthor()
	c := login(t, m, a)

	require.NoError(t, m.RefreshDisplayName(context.Background(), a.ID, "Alice B."))

	p, err := m.Resolve(context.Background(), requestWith(c))
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", p.DisplayName)
}

func TestSweep(t *testing.T) {
	m, store, clk := newTestManager(t)
	login(t, m, testAuthor())
	login(t, m, testAuthor())

	clk.Advance(2 * time.Hour)
	n, err := m.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 0, store.Len())
}

func TestSweeper_ServeUntilCancelled(t *testing.T) {
	m, store, clk := newTestManager(t)
	login(t, m, testAuthor())
	clk.Advance(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewSweeper(m, 5*time.Millisecond, logging.Discard()).Serve(ctx) }()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

type failingStore struct{ *memory.SessionStore }

func (failingStore) Get(context.Context, string, time.Time) (*domain.Session, error) {
	return nil, errors.New("db down")
}

func TestResolve_StoreFailureIsError(t *testing.T) {
	store := failingStore{memory.NewSessionStore()}
	m, err := NewManager(store, Options{Secret: "s", Cookie: CookieOptions{Name: "sid"}})
	require.NoError(t, err)

	c := login(t, m, testAuthor())
	_, err = m.Resolve(context.Background(), requestWith(c))
	require.Error(t, err)
}
