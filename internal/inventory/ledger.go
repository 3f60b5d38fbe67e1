package inventory

import (
	"context"
	"errors"
	"fmt"

	"cafepos/internal/model"
	"cafepos/pkg/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MovementInput describes one stock movement request. For "in" and "out"
// Quantity must be positive and the sign is implied by the type; for
// "adjustment" Quantity is the explicit signed delta to apply.
type MovementInput struct {
	ProductUUID string
	Type        model.MovementType
	Quantity    int
	Note        string
	UserID      *uint
}

// Ledger is the append-only audit trail of stock movements. It shares the
// product row-locking discipline with the order engine: both mutate
// Product.Stock and neither may observe a torn read.
type Ledger struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewLedger creates an inventory ledger
func NewLedger(db *gorm.DB, log *zap.Logger) *Ledger {
	return &Ledger{db: db, log: log}
}

func delta(in MovementInput) (int, error) {
	switch in.Type {
	case model.MovementIn:
		if in.Quantity < 1 {
			return 0, model.Validationf("stock-in quantity must be at least 1, got %d", in.Quantity)
		}
		return in.Quantity, nil
	case model.MovementOut:
		if in.Quantity < 1 {
			return 0, model.Validationf("stock-out quantity must be at least 1, got %d", in.Quantity)
		}
		return -in.Quantity, nil
	case model.MovementAdjustment:
		if in.Quantity == 0 {
			return 0, model.Validationf("adjustment delta must not be zero")
		}
		return in.Quantity, nil
	}
	return 0, model.Validationf("unknown movement type %q", in.Type)
}

// RecordMovement atomically applies the signed delta to the product's stock
// and appends an immutable log entry with the post-movement snapshot. A
// movement that would drive stock below zero aborts with
// InsufficientStockError and leaves no trace.
func (l *Ledger) RecordMovement(ctx context.Context, in MovementInput) (*model.InventoryLog, error) {
	d, err := delta(in)
	if err != nil {
		return nil, err
	}

	var entry model.InventoryLog
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product model.Product
		err := database.LockForUpdate(tx).
			Where("uuid = ?", in.ProductUUID).
			First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: uuid %s", model.ErrProductNotFound, in.ProductUUID)
			}
			return err
		}

		newStock := product.Stock + d
		if newStock < 0 {
			return &model.InsufficientStockError{
				ProductName: product.Name,
				Requested:   -d,
				Available:   product.Stock,
			}
		}

		if err := tx.Model(&product).Update("stock", newStock).Error; err != nil {
			return err
		}

		entry = model.InventoryLog{
			ProductID:    product.ID,
			UserID:       in.UserID,
			Type:         in.Type,
			Quantity:     d,
			CurrentStock: newStock,
			Note:         in.Note,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("Stock movement recorded",
		zap.String("product_uuid", in.ProductUUID),
		zap.String("type", string(in.Type)),
		zap.Int("delta", entry.Quantity),
		zap.Int("current_stock", entry.CurrentStock))
	return &entry, nil
}

// List returns ledger entries newest-first with product and actor preloads.
func (l *Ledger) List(ctx context.Context, page, perPage int) ([]model.InventoryLog, int64, error) {
	var total int64
	if err := l.db.WithContext(ctx).Model(&model.InventoryLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	var logs []model.InventoryLog
	err := l.db.WithContext(ctx).
		Preload("Product").
		Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
