package payment

import (
	"context"

	"cafepos/internal/model"

	"github.com/shopspring/decimal"
)

// LineItem is one priced cart line forwarded to the gateway so the customer
// sees an itemized payment page.
type LineItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"-"`
	Quantity int             `json:"quantity"`
}

// Gateway issues payment intent tokens for electronic orders. It is
// constructed once at startup and injected into the order engine; there is
// no process-wide gateway state.
type Gateway interface {
	// CreateTransaction registers the order with the gateway and returns the
	// opaque token the client uses to complete payment. Any failure must
	// abort the enclosing order-placement transaction.
	CreateTransaction(ctx context.Context, order *model.Order, items []LineItem) (string, error)
}

// DisabledGateway rejects every token request. Used when the service runs
// without gateway credentials: cash and manual QRIS orders still work, only
// the electronic flow is refused.
type DisabledGateway struct{}

func (DisabledGateway) CreateTransaction(ctx context.Context, order *model.Order, items []LineItem) (string, error) {
	return "", model.ErrGatewayUnavailable
}
