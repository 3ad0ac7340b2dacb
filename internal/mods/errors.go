package mods

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/mod-depot/pkg/storage"
)

// Domain errors for mod operations.
var (
	ErrNotFound      = errors.New("mod not found")
	ErrDuplicate     = errors.New("mod already exists")
	ErrValidation    = errors.New("validation failed")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
	ErrInvalidFile   = errors.New("invalid file")
	ErrFileMissing   = errors.New("mod file not found")
	ErrUnknownAction = errors.New("unknown action")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrFileMissing):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrInvalidKey):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
