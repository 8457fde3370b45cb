package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_Validation(t *testing.T) {
	_, err := NewOrder(uuid.Nil, decimal.NewFromInt(1), time.Now(), "")
	require.ErrorIs(t, err, ErrMissingCustomer)

	_, err = NewOrder(uuid.New(), decimal.NewFromInt(-5), time.Now(), "")
	require.ErrorIs(t, err, ErrNegativeTotal)

	order, err := NewOrder(uuid.New(), decimal.Zero, time.Now(), "  leave at door ")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, "leave at door", order.Notes)
}

func TestStatus_Routable(t *testing.T) {
	routable := map[Status]bool{
		StatusPending:   false,
		StatusConfirmed: true,
		StatusPreparing: false,
		StatusReady:     true,
		StatusInRoute:   false,
		StatusDelivered: false,
		StatusCancelled: false,
	}
	for status, want := range routable {
		assert.Equal(t, want, status.Routable(), string(status))
	}
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" READY ")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, status)

	_, err = ParseStatus("shipped")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTransition_CancelledIsTerminal(t *testing.T) {
	order := &Order{CustomerID: uuid.New(), Status: StatusPending}
	require.NoError(t, order.Transition(StatusCancelled))
	require.ErrorIs(t, order.Transition(StatusConfirmed), ErrInvalidTransition)
}
