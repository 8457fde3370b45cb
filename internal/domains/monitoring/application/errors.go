package application

import (
	"errors"
	"fmt"

	"github.com/shroombros/shroom-api/internal/domains/monitoring/domain"
	"github.com/shroombros/shroom-api/internal/domains/monitoring/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant or could not be parsed.
	ErrInvalidInput = errors.New("invalid monitoring input")
	// ErrConflict signals the request clashes with existing data.
	ErrConflict = errors.New("monitoring conflict")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var parseErr *domain.ParseError
	switch {
	case errors.As(err, &parseErr),
		errors.Is(err, domain.ErrEmptyProductName),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrEmptyLotCode),
		errors.Is(err, domain.ErrMissingProduct),
		errors.Is(err, domain.ErrMissingLot):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ports.ErrDuplicateLot):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
