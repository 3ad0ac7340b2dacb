package auth

import (
	"fmt"
	"time"

	"github.com/JaimeStill/mod-depot/internal/users"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "mod-depot"

// Claims are the session token claims. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

// Tokens issues and parses HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer signing with secret.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue returns a signed token for u and its expiry.
func (t *Tokens) Issue(u *users.User) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Email: u.Email,
		Admin: u.IsAdmin,
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expires, nil
}

// Parse validates a token and returns its claims. Any failure is ErrUnauthorized.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrUnauthorized
	}

	return claims, nil
}
