package application

import (
	"errors"
	"fmt"

	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	"github.com/shroombros/shroom-api/internal/domains/logistics/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid route input")
	// ErrConflict signals the request does not fit the current state of a route or order.
	ErrConflict = errors.New("route state conflict")

	ErrOrderNotRoutable = errors.New("order is not ready for routing")
	ErrDriverInactive   = errors.New("driver is inactive")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyRouteName),
		errors.Is(err, domain.ErrMissingDriver),
		errors.Is(err, domain.ErrMissingScheduledDate),
		errors.Is(err, domain.ErrNoOrders),
		errors.Is(err, domain.ErrDuplicateOrder),
		errors.Is(err, domain.ErrInvalidStopStatus),
		errors.Is(err, domain.ErrEmptyDriverName):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrInvalidRouteTransition),
		errors.Is(err, domain.ErrInvalidStopTransition),
		errors.Is(err, ErrOrderNotRoutable),
		errors.Is(err, ports.ErrOrderAlreadyRouted),
		errors.Is(err, ErrDriverInactive):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, domain.ErrStopNotOnRoute):
		return fmt.Errorf("%w: %w", ports.ErrStopNotFound, err)
	}
	return err
}
