package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/git21git/travelplanner/internal/domain"
)

// CookieName is the cookie the login handler sets and RequireAuth accepts
// when no Authorization header is present.
const CookieName = "token"

// TokenValidator is the part of TokenService the middleware needs.
type TokenValidator interface {
	Validate(tokenStr string) (uuid.UUID, error)
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext returns the identity stored by RequireAuth.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(domain.Identity)
	return id, ok && id.UserID != uuid.Nil
}

// RequireAuth rejects requests without a valid token with 401 and stores
// the caller's identity on the context of every request it lets through.
func RequireAuth(tokens TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				writeUnauthorized(w)
				return
			}
			userID, err := tokens.Validate(raw)
			if err != nil {
				log.DebugContext(r.Context(), "rejected token", "error", err)
				writeUnauthorized(w)
				return
			}
			ctx := WithIdentity(r.Context(), domain.Identity{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": "valid authentication required"},
	})
}
