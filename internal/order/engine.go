package order

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cafepos/internal/model"
	"cafepos/internal/payment"
	"cafepos/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CartItem is one requested line of a cart, referencing the product by its
// public UUID.
type CartItem struct {
	ProductUUID string `json:"product_uuid"`
	Quantity    int    `json:"quantity"`
}

// PlaceOrderInput carries everything needed to place an order from the POS
// or the self-order menu.
type PlaceOrderInput struct {
	UserID        *uint
	CustomerName  string
	Type          model.OrderType
	TableNumber   string
	PaymentMethod model.PaymentMethod
	ManualPayment bool
	Items         []CartItem
}

// Engine validates carts, reserves stock and creates orders atomically. The
// database transaction is the sole concurrency-control boundary: every
// product row touched by a cart is locked for the duration of the
// placement, ordered by product UUID so concurrent orders sharing products
// cannot deadlock.
type Engine struct {
	db      *gorm.DB
	gateway payment.Gateway
	log     *zap.Logger
}

// NewEngine creates an order engine with an injected gateway client
func NewEngine(db *gorm.DB, gateway payment.Gateway, log *zap.Logger) *Engine {
	return &Engine{db: db, gateway: gateway, log: log}
}

func (e *Engine) validate(in *PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return model.Validationf("cart must contain at least one item")
	}
	for _, it := range in.Items {
		if it.ProductUUID == "" {
			return model.Validationf("cart item missing product_uuid")
		}
		if it.Quantity < 1 {
			return model.Validationf("cart item quantity must be at least 1, got %d", it.Quantity)
		}
	}
	if in.Type == "" {
		in.Type = model.OrderTypeDineIn
	}
	if !in.Type.Valid() {
		return model.Validationf("unknown order type %q", in.Type)
	}
	if in.Type == model.OrderTypeDineIn && in.TableNumber == "" {
		return model.Validationf("table_number is required for dine-in orders")
	}
	if !in.PaymentMethod.Valid() {
		return model.Validationf("unknown payment method %q", in.PaymentMethod)
	}
	return nil
}

// PlaceOrder runs the whole placement in one transaction: lock products,
// check stock, price the cart at current product prices, create the order
// with its items, decrement stock with audit entries and, for electronic
// payments, obtain the snap token. Any failure rolls back every write, so
// a failed placement leaves no trace.
func (e *Engine) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, error) {
	if err := e.validate(&in); err != nil {
		return nil, err
	}

	// Lock products in a stable order to avoid deadlocks between orders
	// whose carts overlap.
	lines := make([]CartItem, len(in.Items))
	copy(lines, in.Items)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductUUID < lines[j].ProductUUID })

	electronic := in.PaymentMethod == model.PaymentMethodQRIS && !in.ManualPayment

	var order model.Order
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		totalAmount := decimal.Zero
		items := make([]model.OrderItem, 0, len(lines))
		gatewayItems := make([]payment.LineItem, 0, len(lines))
		type decrement struct {
			product  model.Product
			quantity int
		}
		decrements := make([]decrement, 0, len(lines))

		for _, line := range lines {
			var product model.Product
			err := database.LockForUpdate(tx).
				Where("uuid = ?", line.ProductUUID).
				First(&product).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: uuid %s", model.ErrProductNotFound, line.ProductUUID)
				}
				return err
			}

			if product.Stock < line.Quantity {
				return &model.InsufficientStockError{
					ProductName: product.Name,
					Requested:   line.Quantity,
					Available:   product.Stock,
				}
			}

			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			totalAmount = totalAmount.Add(lineTotal)

			items = append(items, model.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     product.Price,
				Total:     lineTotal,
			})
			gatewayItems = append(gatewayItems, payment.LineItem{
				ID:       product.UUID,
				Name:     product.Name,
				Price:    product.Price,
				Quantity: line.Quantity,
			})
			decrements = append(decrements, decrement{product: product, quantity: line.Quantity})
		}

		// Orders always start pending so they surface in the kitchen queue;
		// payment_status alone tracks the money side.
		paymentStatus := model.PaymentStatusSettlement
		if electronic {
			paymentStatus = model.PaymentStatusPending
		}

		order = model.Order{
			UUID:          uuid.NewString(),
			UserID:        in.UserID,
			CustomerName:  in.CustomerName,
			Type:          in.Type,
			TableNumber:   in.TableNumber,
			TotalAmount:   totalAmount,
			PaymentMethod: in.PaymentMethod,
			Status:        model.OrderStatusPending,
			PaymentStatus: paymentStatus,
			Items:         items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, d := range decrements {
			newStock := d.product.Stock - d.quantity
			if err := tx.Model(&model.Product{}).
				Where("id = ?", d.product.ID).
				Update("stock", newStock).Error; err != nil {
				return err
			}

			entry := model.InventoryLog{
				ProductID:    d.product.ID,
				UserID:       in.UserID,
				Type:         model.MovementOut,
				Quantity:     -d.quantity,
				CurrentStock: newStock,
				Note:         fmt.Sprintf("sale for order %s", order.UUID),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		// The gateway call is the one network-bound step inside the
		// transaction: if the token cannot be issued the whole placement
		// rolls back, because an electronic order without its token is
		// unpayable.
		if electronic {
			token, err := e.gateway.CreateTransaction(ctx, &order, gatewayItems)
			if err != nil {
				return err
			}
			if err := tx.Model(&order).Update("snap_token", token).Error; err != nil {
				return err
			}
			order.SnapToken = token
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("Order placed",
		zap.String("order_uuid", order.UUID),
		zap.String("type", string(order.Type)),
		zap.String("payment_method", string(order.PaymentMethod)),
		zap.String("payment_status", string(order.PaymentStatus)),
		zap.String("total_amount", order.TotalAmount.String()),
		zap.Int("item_count", len(order.Items)))
	return &order, nil
}

// UpdateStatus moves an order through the kitchen workflow, rejecting
// transitions outside the allowed table. The order row is locked so
// concurrent updates and webhook notifications cannot interleave.
func (e *Engine) UpdateStatus(ctx context.Context, orderUUID string, to model.OrderStatus) (*model.Order, error) {
	if !to.Valid() {
		return nil, model.Validationf("unknown order status %q", to)
	}

	var order model.Order
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := database.LockForUpdate(tx).Where("uuid = ?", orderUUID).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: uuid %s", model.ErrOrderNotFound, orderUUID)
			}
			return err
		}

		if !CanTransition(order.Status, to) {
			return &model.InvalidTransitionError{From: order.Status, To: to}
		}

		if err := tx.Model(&order).Update("status", to).Error; err != nil {
			return err
		}
		order.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("Order status updated",
		zap.String("order_uuid", order.UUID),
		zap.String("status", string(order.Status)))
	return &order, nil
}
