package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/inkwell/internal/domain"
	"github.com/vedran77/inkwell/internal/logging"
)

type contextKey string

const PrincipalKey contextKey = "principal"

// PrincipalResolver maps a request to the signed-in author, or nil for anonymous.
type PrincipalResolver interface {
	Resolve(ctx context.Context, r *http.Request) (*domain.Principal, error)
}

// Session attaches the resolved principal to every request. Anonymous
// requests pass through untouched.
func Session(resolver PrincipalResolver, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolver.Resolve(r.Context(), r)
			if err != nil {
				logging.FromContext(r.Context(), log).Error(r.Context(), "resolving session", "error", err)
				writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
				return
			}
			if principal == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPrincipal(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "You need to log in first")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetPrincipal returns the signed-in author, or nil for anonymous requests.
func GetPrincipal(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(PrincipalKey).(*domain.Principal)
	return p
}

// GetAuthorID extracts the author id from a request behind RequireAuth.
func GetAuthorID(ctx context.Context) uuid.UUID {
	return GetPrincipal(ctx).ID
}

// WithPrincipal is used by tests and by handlers that establish a session
// mid-request.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
