package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservation(t *testing.T) {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	period := Period{Start: start, End: start.AddDate(0, 0, 2)}

	r, err := NewReservation(7, 1, period, 2)
	require.NoError(t, err)
	assert.Equal(t, ReservationActive, r.Status)

	_, err = NewReservation(7, 1, period, 0)
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewReservation(7, 0, period, 1)
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewReservation(7, 1, Period{Start: start, End: start}, 1)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCheckReservationTransition(t *testing.T) {
	require.NoError(t, CheckReservationTransition(ReservationActive, ReservationCancelled))
	require.NoError(t, CheckReservationTransition(ReservationActive, ReservationCompleted))

	require.ErrorIs(t, CheckReservationTransition(ReservationActive, ReservationActive), ErrInvalidStateTransition)
	require.ErrorIs(t, CheckReservationTransition(ReservationCancelled, ReservationCompleted), ErrAlreadyTerminal)
	require.ErrorIs(t, CheckReservationTransition(ReservationCompleted, ReservationCancelled), ErrAlreadyTerminal)
}

func TestReservation_TransitionToKeepsStatusOnFailure(t *testing.T) {
	r := &Reservation{Status: ReservationCancelled}
	require.Error(t, r.TransitionTo(ReservationCompleted))
	assert.Equal(t, ReservationCancelled, r.Status)
}

func TestAvailability(t *testing.T) {
	a := ComputeAvailability(1, Period{}, 5, 3, 2)
	assert.Equal(t, 2, a.Available)
	assert.True(t, a.CanReserve)

	a = ComputeAvailability(1, Period{}, 5, 3, 3)
	assert.False(t, a.CanReserve)
}

func TestErrorsUnwrap(t *testing.T) {
	err := &ItemError{Index: 1, VariantID: 4, Err: &AvailabilityError{VariantID: 4, Available: 1, Requested: 2}}
	require.ErrorIs(t, err, ErrInsufficientAvailability)
	assert.Equal(t, "item 2 (variant 4): insufficient availability for variant 4. Available: 1, Requested: 2", err.Error())

	var availability *AvailabilityError
	require.ErrorAs(t, err, &availability)
	assert.Equal(t, 1, availability.Available)
}

func TestCaller(t *testing.T) {
	assert.Equal(t, RoleVendor, ParseRole(" vendor "))
	assert.Equal(t, Role(""), ParseRole("guest"))
	assert.True(t, Caller{UserID: 5, Role: RoleCustomer}.CanActFor(5))
	assert.False(t, Caller{UserID: 5, Role: RoleCustomer}.CanActFor(6))
	assert.True(t, Caller{UserID: 1, Role: RoleAdmin}.CanActFor(6))
	assert.False(t, Caller{}.CanActFor(0))
}
