package application

import (
	"errors"
	"fmt"

	"github.com/shroombros/shroom-api/internal/domains/sales/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrConflict signals a status change the order's current state does not allow.
	ErrConflict = errors.New("order state conflict")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrMissingCustomer) ||
		errors.Is(err, domain.ErrNegativeTotal) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrEmptyCustomerName) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrInvalidTransition) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
