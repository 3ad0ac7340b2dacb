package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/mod-depot/pkg/handlers"
)

type contextKey struct{}

// ClaimsFromContext returns the session claims stored by RequireAdmin.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(contextKey{}).(*Claims)
	return c, ok
}

// RequireAdmin returns a handler wrapper that admits requests carrying a
// valid administrator bearer token.
func RequireAdmin(tokens *Tokens, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	logger = logger.With("middleware", "require_admin")

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthorized)
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthorized)
				return
			}
			if !claims.Admin {
				handlers.RespondError(w, logger, http.StatusForbidden, ErrForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
