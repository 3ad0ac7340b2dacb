package users

import "errors"

var (
	ErrNotFound = errors.New("user not found")
	ErrSeed     = errors.New("user seed failed")
)
