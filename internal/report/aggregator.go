package report

import (
	"context"
	"time"

	"cafepos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Aggregator produces read-only rollups over completed orders for the
// dashboard and sales reports. It never writes.
type Aggregator struct {
	db *gorm.DB
}

// NewAggregator creates a reporting aggregator
func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// DashboardStats is the admin landing-page summary.
type DashboardStats struct {
	TotalProducts   int64           `json:"total_products"`
	LowStockCount   int64           `json:"low_stock_count"`
	TotalCategories int64           `json:"total_categories"`
	TotalOrders     int64           `json:"total_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	RecentOrders    []model.Order   `json:"recent_orders"`
}

// Dashboard aggregates catalog and order counters plus the five most recent
// orders. Revenue only counts completed orders.
func (a *Aggregator) Dashboard(ctx context.Context) (*DashboardStats, error) {
	db := a.db.WithContext(ctx)
	stats := &DashboardStats{}

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).
		Where("stock <= min_stock").
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Category{}).Count(&stats.TotalCategories).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	var revenue decimal.NullDecimal
	if err := db.Model(&model.Order{}).
		Where("status = ?", model.OrderStatusCompleted).
		Select("SUM(total_amount)").
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal
	} else {
		stats.TotalRevenue = decimal.Zero
	}

	if err := db.Preload("User").
		Order("created_at DESC").
		Limit(5).
		Find(&stats.RecentOrders).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// DailySales is one day's completed-order rollup.
type DailySales struct {
	Date        string          `json:"date"`
	Revenue     decimal.Decimal `json:"revenue"`
	TotalOrders int64           `json:"total_orders"`
}

// DailySales groups completed orders by calendar day over [start, end).
func (a *Aggregator) DailySales(ctx context.Context, start, end time.Time) ([]DailySales, error) {
	var rows []DailySales
	err := a.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("DATE(created_at) AS date, SUM(total_amount) AS revenue, COUNT(*) AS total_orders").
		Where("status = ?", model.OrderStatusCompleted).
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TopProduct is one row of the best-seller ranking.
type TopProduct struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// TopProducts ranks products by quantity sold across completed orders in
// [start, end).
func (a *Aggregator) TopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error) {
	if limit < 1 {
		limit = 5
	}
	var rows []TopProduct
	err := a.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Select("products.name AS name, SUM(order_items.quantity) AS quantity, SUM(order_items.total) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.status = ?", model.OrderStatusCompleted).
		Where("orders.created_at >= ? AND orders.created_at < ?", start, end).
		Group("products.id, products.name").
		Order("quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CompletedOrders loads completed orders with items and users for CSV
// export, newest first.
func (a *Aggregator) CompletedOrders(ctx context.Context, start, end time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := a.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("User").
		Where("status = ?", model.OrderStatusCompleted).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
