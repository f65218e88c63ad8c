package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to EventStatus
		wantErr  error
	}{
		{EventStatusActive, EventStatusCancelled, nil},
		{EventStatusActive, EventStatusCompleted, nil},
		{EventStatusActive, EventStatusActive, nil},
		{EventStatusCancelled, EventStatusCancelled, nil},
		{EventStatusCompleted, EventStatusActive, ErrInvalidTransition},
		{EventStatusCancelled, EventStatusActive, ErrInvalidTransition},
		{EventStatusCancelled, EventStatusCompleted, ErrInvalidTransition},
		{EventStatusCompleted, EventStatusCancelled, ErrInvalidTransition},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			err := CanTransition(tc.from, tc.to)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("unknown target is a validation error", func(t *testing.T) {
		err := CanTransition(EventStatusActive, "archived")
		require.ErrorIs(t, err, ErrValidation)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "status", ve.Field)
	})
}

func TestEventCapacity(t *testing.T) {
	t.Parallel()

	five := 5
	limited := Event{Capacity: &five, Status: EventStatusActive}
	unlimited := Event{Status: EventStatusActive}

	assert.True(t, limited.Admits(4, 1))
	assert.False(t, limited.Admits(4, 2))
	assert.True(t, unlimited.Admits(1_000_000, 10))

	n, ok := limited.Remaining(3)
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	n, ok = limited.Remaining(9)
	assert.True(t, ok)
	assert.Zero(t, n)

	_, ok = unlimited.Remaining(3)
	assert.False(t, ok)

	assert.True(t, limited.Bookable())
	limited.Status = EventStatusCancelled
	assert.False(t, limited.Bookable())
}
