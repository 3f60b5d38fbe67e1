package order

import (
	"context"
	"errors"
	"fmt"

	"cafepos/internal/model"

	"gorm.io/gorm"
)

// KitchenStatuses are the non-terminal statuses shown on the kitchen
// display.
var KitchenStatuses = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusProcessing,
	model.OrderStatusReady,
}

// ListFilter narrows an order listing. Zero values mean "no filter".
type ListFilter struct {
	Status  model.OrderStatus
	Type    model.OrderType
	Kitchen bool
	Page    int
	PerPage int
}

// GetByUUID loads one order with its items, item products and owning user.
func (e *Engine) GetByUUID(ctx context.Context, orderUUID string) (*model.Order, error) {
	var order model.Order
	err := e.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("User").
		Where("uuid = ?", orderUUID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: uuid %s", model.ErrOrderNotFound, orderUUID)
		}
		return nil, err
	}
	return &order, nil
}

// List returns orders newest-first with optional status/type filters. The
// kitchen filter restricts to the non-terminal statuses regardless of the
// status filter.
func (e *Engine) List(ctx context.Context, filter ListFilter) ([]model.Order, int64, error) {
	query := e.db.WithContext(ctx).Model(&model.Order{})

	if filter.Kitchen {
		query = query.Where("status IN ?", KitchenStatuses)
	} else if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 10
	}

	var orders []model.Order
	err := query.
		Preload("Items.Product").
		Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
