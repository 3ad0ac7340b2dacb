// Package auth checks administrator credentials and issues the session
// tokens that guard mutating mod routes.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/JaimeStill/mod-depot/internal/users"
	"golang.org/x/crypto/bcrypt"
)

// Verifier checks an email and password pair.
type Verifier interface {
	// Verify returns the matching administrator. Unknown emails, wrong
	// passwords and non-admin users all yield ErrInvalidCredentials.
	Verify(ctx context.Context, email, password string) (*users.User, error)
}

type verifier struct {
	users  users.Repository
	dummy  []byte
	logger *slog.Logger
}

// NewVerifier creates a bcrypt Verifier over the user repository.
func NewVerifier(repo users.Repository, logger *slog.Logger) Verifier {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("mod-depot"), bcrypt.DefaultCost)
	return &verifier{
		users:  repo,
		dummy:  dummy,
		logger: logger.With("system", "auth"),
	}
}

func (v *verifier) Verify(ctx context.Context, email, password string) (*users.User, error) {
	acct, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			return nil, err
		}
		// equalize timing with the known-email path
		bcrypt.CompareHashAndPassword(v.dummy, []byte(password))
		v.logger.Debug("login rejected", "reason", "unknown email")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		v.logger.Debug("login rejected", "reason", "password mismatch", "user", acct.ID)
		return nil, ErrInvalidCredentials
	}

	if !acct.IsAdmin {
		v.logger.Debug("login rejected", "reason", "not an administrator", "user", acct.ID)
		return nil, ErrInvalidCredentials
	}

	return &acct.User, nil
}
