package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Clark-Hu/movierank/internal/repository"
	"github.com/Clark-Hu/movierank/internal/validation"
)

// Error kinds surfaced to transports. Anything not matching one of these is a
// storage failure.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidID          = errors.New("invalid identifier")
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrAlreadyPresent     = errors.New("already present")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// checkID accepts only the canonical hyphenated UUID form. uuid.Parse alone
// also takes urn, braced and unhyphenated forms that Postgres rejects.
func checkID(id string) error {
	if len(id) != 36 {
		return ErrInvalidID
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

func storeError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return ErrDuplicateKey
	case errors.Is(err, repository.ErrAlreadyPresent):
		return ErrAlreadyPresent
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ValidationDetails extracts field errors from err, if any.
func ValidationDetails(err error) []validation.FieldError {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
