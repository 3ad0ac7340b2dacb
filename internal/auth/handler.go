package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/mod-depot/internal/users"
	"github.com/JaimeStill/mod-depot/pkg/handlers"
	"github.com/JaimeStill/mod-depot/pkg/routes"
)

// LoginRequest is the login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned by a successful login.
type Session struct {
	User      *users.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Handler provides the authentication endpoints.
type Handler struct {
	verifier Verifier
	users    users.Repository
	tokens   *Tokens
	logger   *slog.Logger
}

func NewHandler(verifier Verifier, repo users.Repository, tokens *Tokens, logger *slog.Logger) *Handler {
	return &Handler{
		verifier: verifier,
		users:    repo,
		tokens:   tokens,
		logger:   logger.With("handler", "auth"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/auth",
		Tags:        []string{"Auth"},
		Description: "Administrator sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/login", Handler: h.Login, OpenAPI: Spec.Login},
			{Method: "GET", Pattern: "/me", Handler: RequireAdmin(h.tokens, h.logger)(h.Me), OpenAPI: Spec.Me},
		},
		Schemas: Spec.Schemas,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	user, err := h.verifier.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	token, expires, err := h.tokens.Issue(user)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	h.logger.Info("administrator signed in", "user", user.ID)
	handlers.RespondJSON(w, http.StatusOK, Session{User: user, Token: token, ExpiresAt: expires})
}

// Me returns the account behind the bearer token. A token whose account no
// longer exists is rejected.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthorized)
		return
	}

	user, err := h.users.Find(r.Context(), claims.Subject)
	if errors.Is(err, users.ErrNotFound) {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthorized)
		return
	}
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, user)
}
