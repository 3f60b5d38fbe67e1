package payment

import (
	"context"
	"errors"
	"fmt"

	"cafepos/internal/model"
	"cafepos/pkg/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reconciler maps gateway payment lifecycle notifications onto local order
// state. Handling is idempotent: the gateway retries notifications and may
// deliver duplicates concurrently, so every update runs under a row lock on
// the order and re-applying a transition the order is already in is a no-op.
type Reconciler struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewReconciler creates a payment reconciler
func NewReconciler(db *gorm.DB, log *zap.Logger) *Reconciler {
	return &Reconciler{db: db, log: log}
}

// resolve applies the gateway transition table. An empty order status means
// the kitchen-side status is left untouched. applied=false means the
// notification carries a combination this service deliberately ignores.
func resolve(n *Notification) (ps model.PaymentStatus, os model.OrderStatus, applied bool) {
	switch n.TransactionStatus {
	case TxStatusCapture:
		if n.PaymentType != PaymentTypeCreditCard {
			return "", "", false
		}
		if n.FraudStatus == FraudStatusChallenge {
			return model.PaymentStatusChallenge, "", true
		}
		return model.PaymentStatusSettlement, model.OrderStatusCompleted, true
	case TxStatusSettlement:
		return model.PaymentStatusSettlement, model.OrderStatusCompleted, true
	case TxStatusPending:
		return model.PaymentStatusPending, "", true
	case TxStatusDeny:
		return model.PaymentStatusDeny, model.OrderStatusCancelled, true
	case TxStatusExpire:
		return model.PaymentStatusExpire, model.OrderStatusCancelled, true
	case TxStatusCancel:
		return model.PaymentStatusCancel, model.OrderStatusCancelled, true
	}
	return "", "", false
}

// HandleNotification applies one gateway notification to the referenced
// order. Any returned error makes the webhook respond as a failure so the
// gateway retries; partial updates are impossible because payment_status,
// order status and the cancellation restock commit in one transaction.
func (r *Reconciler) HandleNotification(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		err := database.LockForUpdate(tx).Where("uuid = ?", n.OrderID).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: uuid %s", model.ErrOrderNotFound, n.OrderID)
			}
			return err
		}

		newPayment, newStatus, applied := resolve(n)
		if !applied {
			r.log.Warn("Ignoring gateway notification",
				zap.String("order_uuid", n.OrderID),
				zap.String("transaction_status", n.TransactionStatus),
				zap.String("payment_type", n.PaymentType))
			return nil
		}

		prevStatus := order.Status

		updates := map[string]interface{}{"payment_status": newPayment}
		if newStatus != "" {
			updates["status"] = newStatus
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}

		// Restock exactly once: only on the transition into cancelled.
		// Replayed deny/expire/cancel notifications see the order already
		// cancelled and skip this branch.
		if newStatus == model.OrderStatusCancelled && prevStatus != model.OrderStatusCancelled {
			if err := r.restock(tx, &order); err != nil {
				return err
			}
		}

		r.log.Info("Gateway notification applied",
			zap.String("order_uuid", order.UUID),
			zap.String("transaction_status", n.TransactionStatus),
			zap.String("payment_status", string(newPayment)),
			zap.String("order_status", string(newStatus)))
		return nil
	})
}

// restock returns every line's quantity to stock and appends matching ledger
// entries with a system actor. Runs inside the notification transaction.
func (r *Reconciler) restock(tx *gorm.DB, order *model.Order) error {
	var items []model.OrderItem
	if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return err
	}

	for _, item := range items {
		// Unscoped: the product may have been soft-deleted since placement,
		// and its historical row still owns the stock being returned.
		var product model.Product
		if err := database.LockForUpdate(tx.Unscoped()).First(&product, item.ProductID).Error; err != nil {
			return err
		}

		newStock := product.Stock + item.Quantity
		if err := tx.Unscoped().Model(&product).Update("stock", newStock).Error; err != nil {
			return err
		}

		entry := model.InventoryLog{
			ProductID:    product.ID,
			Type:         model.MovementIn,
			Quantity:     item.Quantity,
			CurrentStock: newStock,
			Note:         fmt.Sprintf("restock for cancelled order %s", order.UUID),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}

	return nil
}
