package users

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/mod-depot/pkg/docstore"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Repository provides read access to user records.
type Repository interface {
	Find(ctx context.Context, id string) (*User, error)

	// FindByEmail looks up an account by email, ignoring case and
	// surrounding whitespace.
	FindByEmail(ctx context.Context, email string) (*Account, error)
}

// Seed describes the administrator created with a new user document.
type Seed struct {
	Email    string
	Name     string
	Password string
}

// Open loads the user document at path, creating it with the administrator
// from seed when it does not exist. The password is hashed only in that case.
func Open(path string, seed Seed, logger *slog.Logger) (*docstore.Store[Account], error) {
	return docstore.New[Account](path, func() ([]Account, error) {
		admin, err := seed.account(time.Now())
		if err != nil {
			return nil, err
		}
		logger.Info("administrator seeded", "email", admin.Email)
		return []Account{admin}, nil
	}, logger)
}

func (s Seed) account(now time.Time) (Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("%w: %w", ErrSeed, err)
	}

	return Account{
		User: User{
			ID:        strings.ReplaceAll(uuid.NewString(), "-", ""),
			Email:     NormalizeEmail(s.Email),
			Name:      s.Name,
			IsAdmin:   true,
			CreatedAt: now.UTC().Truncate(time.Millisecond),
		},
		PasswordHash: string(hash),
	}, nil
}

type jsonRepo struct {
	store *docstore.Store[Account]
}

// NewJSONRepository creates a Repository over a user document store.
func NewJSONRepository(store *docstore.Store[Account]) Repository {
	return &jsonRepo{store: store}
}

func (r *jsonRepo) Find(ctx context.Context, id string) (*User, error) {
	accounts, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(accounts, func(a Account) bool { return a.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}

	return &accounts[i].User, nil
}

func (r *jsonRepo) FindByEmail(ctx context.Context, email string) (*Account, error) {
	accounts, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	key := NormalizeEmail(email)
	if key == "" {
		return nil, ErrNotFound
	}

	i := slices.IndexFunc(accounts, func(a Account) bool { return NormalizeEmail(a.Email) == key })
	if i < 0 {
		return nil, ErrNotFound
	}

	return &accounts[i], nil
}
