package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettled(t *testing.T) {
	assert.False(t, Settled(OrderPending))
	assert.True(t, Settled(OrderPaid))
	assert.True(t, Settled(OrderCompleted))
	assert.True(t, Settled(OrderCancelled))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderPending, OrderPaid, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderCompleted, false},
		{OrderPaid, OrderCompleted, true},
		{OrderPaid, OrderPending, false},
		{OrderPaid, OrderCancelled, false},
		{OrderCompleted, OrderPaid, false},
		{OrderCancelled, OrderPending, false},
		{OrderCancelled, OrderPaid, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
