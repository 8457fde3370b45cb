package application

import (
	"errors"
	"fmt"

	"github.com/shroombros/shroom-api/internal/domains/auth/domain"
	"github.com/shroombros/shroom-api/internal/domains/auth/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid user input")
	// ErrConflict signals the request clashes with an existing account.
	ErrConflict = errors.New("user conflict")
	// ErrUnauthorized wraps every authentication failure.
	ErrUnauthorized = errors.New("authentication failed")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrInvalidRole):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ports.ErrDuplicateEmail):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, ports.ErrInvalidCredentials),
		errors.Is(err, ports.ErrInvalidToken):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return err
}
