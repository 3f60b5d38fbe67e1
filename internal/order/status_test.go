package order

import (
	"testing"

	"cafepos/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    model.OrderStatus
		to      model.OrderStatus
		allowed bool
	}{
		{"pending to processing", model.OrderStatusPending, model.OrderStatusProcessing, true},
		{"pending to cancelled", model.OrderStatusPending, model.OrderStatusCancelled, true},
		{"pending to ready skips a step", model.OrderStatusPending, model.OrderStatusReady, false},
		{"pending to completed skips two steps", model.OrderStatusPending, model.OrderStatusCompleted, false},
		{"processing to ready", model.OrderStatusProcessing, model.OrderStatusReady, true},
		{"processing to cancelled", model.OrderStatusProcessing, model.OrderStatusCancelled, true},
		{"processing to completed skips a step", model.OrderStatusProcessing, model.OrderStatusCompleted, false},
		{"processing back to pending", model.OrderStatusProcessing, model.OrderStatusPending, false},
		{"ready to completed", model.OrderStatusReady, model.OrderStatusCompleted, true},
		{"ready to cancelled", model.OrderStatusReady, model.OrderStatusCancelled, true},
		{"ready back to processing", model.OrderStatusReady, model.OrderStatusProcessing, false},
		{"completed is terminal", model.OrderStatusCompleted, model.OrderStatusCancelled, false},
		{"cancelled is terminal", model.OrderStatusCancelled, model.OrderStatusPending, false},
		{"cancelled cannot complete", model.OrderStatusCancelled, model.OrderStatusCompleted, false},
		{"same status is not a transition", model.OrderStatusPending, model.OrderStatusPending, false},
		{"unknown status", model.OrderStatus("unknown"), model.OrderStatusProcessing, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to))
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, model.OrderStatusCompleted.Terminal())
	assert.True(t, model.OrderStatusCancelled.Terminal())
	assert.False(t, model.OrderStatusPending.Terminal())
	assert.False(t, model.OrderStatusProcessing.Terminal())
	assert.False(t, model.OrderStatusReady.Terminal())
}
