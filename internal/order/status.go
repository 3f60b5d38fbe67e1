package order

import "cafepos/internal/model"

// validNext is the closed order-status workflow consumed by the kitchen
// display: pending -> processing -> ready -> completed, with cancelled
// reachable from any non-terminal state. Completed and cancelled are
// terminal. The workflow deliberately does not consult payment_status:
// "food ready" and "money settled" are decoupled.
var validNext = map[model.OrderStatus]map[model.OrderStatus]bool{
	model.OrderStatusPending: {
		model.OrderStatusProcessing: true,
		model.OrderStatusCancelled:  true,
	},
	model.OrderStatusProcessing: {
		model.OrderStatusReady:     true,
		model.OrderStatusCancelled: true,
	},
	model.OrderStatusReady: {
		model.OrderStatusCompleted: true,
		model.OrderStatusCancelled: true,
	},
	model.OrderStatusCompleted: {},
	model.OrderStatusCancelled: {},
}

// CanTransition reports whether the workflow allows moving from one status
// to another.
func CanTransition(from, to model.OrderStatus) bool {
	return validNext[from][to]
}
