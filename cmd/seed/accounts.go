package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/JaimeStill/mod-depot/internal/users"
)

func init() {
	registerSeeder(&AccountSeeder{})
}

// AccountSeeder confirms the administrator account is present. The users
// document and its administrator are created when the domain opens it.
type AccountSeeder struct{}

func (s *AccountSeeder) Name() string {
	return "accounts"
}

func (s *AccountSeeder) Description() string {
	return "Creates the user document and verifies the administrator account"
}

func (s *AccountSeeder) Seed(ctx context.Context, t *Target) error {
	acct, err := t.Users.FindByEmail(ctx, t.AdminEmail)
	if errors.Is(err, users.ErrNotFound) {
		return fmt.Errorf("administrator %s missing from existing users document; remove it to reseed", t.AdminEmail)
	}
	if err != nil {
		return err
	}
	if !acct.IsAdmin {
		return fmt.Errorf("account %s is not an administrator", acct.Email)
	}

	fmt.Printf("administrator ready: %s\n", acct.Email)
	return nil
}
