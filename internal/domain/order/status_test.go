package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, label := range []string{"Pending", "Placed", "Shipped", "Delivered"} {
		s, err := ParseStatus(label)
		require.NoError(t, err)
		assert.Equal(t, Status(label), s)
	}

	for _, label := range []string{"", "pending", "PLACED", "Shipped ", "Returned"} {
		_, err := ParseStatus(label)
		assert.ErrorIs(t, err, ErrUnknownStatus, "label %q", label)
	}
}

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusPlaced, true},
		{StatusPlaced, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusPlaced, StatusDelivered, false},
		{StatusShipped, StatusPlaced, false},
		{StatusDelivered, StatusShipped, false},
		{StatusDelivered, StatusDelivered, false},
		{StatusPlaced, StatusPlaced, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestBefore(t *testing.T) {
	assert.True(t, StatusPending.Before(StatusPlaced))
	assert.True(t, StatusPlaced.Before(StatusDelivered))
	assert.False(t, StatusShipped.Before(StatusShipped))
	assert.False(t, StatusDelivered.Before(StatusPending))
}

func TestActiveStatuses(t *testing.T) {
	active := ActiveStatuses()
	assert.Equal(t, []Status{StatusPlaced, StatusShipped, StatusDelivered}, active)
	assert.NotContains(t, active, StatusPending)
}
