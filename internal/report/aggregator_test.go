package report

import (
	"context"
	"testing"
	"time"

	"cafepos/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryLog{},
	))
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) (model.Product, model.Product) {
	t.Helper()

	latte := model.Product{
		Name: "latte", Slug: "latte", SKU: "SKU-1",
		Price: decimal.NewFromInt(27000), Stock: 10, MinStock: 3,
	}
	croissant := model.Product{
		Name: "croissant", Slug: "croissant", SKU: "SKU-2",
		Price: decimal.NewFromInt(18000), Stock: 2, MinStock: 5,
	}
	require.NoError(t, db.Create(&latte).Error)
	require.NoError(t, db.Create(&croissant).Error)
	return latte, croissant
}

func seedOrder(t *testing.T, db *gorm.DB, status model.OrderStatus, total int64, items []model.OrderItem) model.Order {
	t.Helper()
	order := model.Order{
		Type:          model.OrderTypeTakeAway,
		TotalAmount:   decimal.NewFromInt(total),
		PaymentMethod: model.PaymentMethodCash,
		Status:        status,
		PaymentStatus: model.PaymentStatusSettlement,
		Items:         items,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestDashboard(t *testing.T) {
	db := newTestDB(t)
	latte, croissant := seedCatalog(t, db)

	seedOrder(t, db, model.OrderStatusCompleted, 54000, []model.OrderItem{
		{ProductID: latte.ID, Quantity: 2, Price: decimal.NewFromInt(27000), Total: decimal.NewFromInt(54000)},
	})
	seedOrder(t, db, model.OrderStatusCompleted, 18000, []model.OrderItem{
		{ProductID: croissant.ID, Quantity: 1, Price: decimal.NewFromInt(18000), Total: decimal.NewFromInt(18000)},
	})
	// Cancelled orders never count toward revenue.
	seedOrder(t, db, model.OrderStatusCancelled, 99000, nil)

	agg := NewAggregator(db)
	stats, err := agg.Dashboard(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 1, stats.LowStockCount)
	assert.EqualValues(t, 3, stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(72000)),
		"expected revenue 72000, got %s", stats.TotalRevenue)
	assert.Len(t, stats.RecentOrders, 3)
}

func TestDashboardEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)

	stats, err := agg.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.Empty(t, stats.RecentOrders)
}

func TestDailySalesOnlyCountsCompletedInRange(t *testing.T) {
	db := newTestDB(t)
	latte, _ := seedCatalog(t, db)

	seedOrder(t, db, model.OrderStatusCompleted, 27000, []model.OrderItem{
		{ProductID: latte.ID, Quantity: 1, Price: decimal.NewFromInt(27000), Total: decimal.NewFromInt(27000)},
	})
	seedOrder(t, db, model.OrderStatusCompleted, 54000, []model.OrderItem{
		{ProductID: latte.ID, Quantity: 2, Price: decimal.NewFromInt(27000), Total: decimal.NewFromInt(54000)},
	})
	seedOrder(t, db, model.OrderStatusPending, 27000, nil)

	agg := NewAggregator(db)
	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().AddDate(0, 0, 1)

	rows, err := agg.DailySales(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 2, rows[0].TotalOrders)
	assert.True(t, rows[0].Revenue.Equal(decimal.NewFromInt(81000)),
		"expected revenue 81000, got %s", rows[0].Revenue)

	// A window in the past sees nothing.
	past, err := agg.DailySales(context.Background(),
		time.Now().AddDate(0, -2, 0), time.Now().AddDate(0, -1, 0))
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestTopProductsRanksByQuantity(t *testing.T) {
	db := newTestDB(t)
	latte, croissant := seedCatalog(t, db)

	seedOrder(t, db, model.OrderStatusCompleted, 81000, []model.OrderItem{
		{ProductID: latte.ID, Quantity: 3, Price: decimal.NewFromInt(27000), Total: decimal.NewFromInt(81000)},
	})
	seedOrder(t, db, model.OrderStatusCompleted, 36000, []model.OrderItem{
		{ProductID: croissant.ID, Quantity: 2, Price: decimal.NewFromInt(18000), Total: decimal.NewFromInt(36000)},
	})
	// Pending orders do not move the ranking.
	seedOrder(t, db, model.OrderStatusPending, 90000, []model.OrderItem{
		{ProductID: croissant.ID, Quantity: 5, Price: decimal.NewFromInt(18000), Total: decimal.NewFromInt(90000)},
	})

	agg := NewAggregator(db)
	rows, err := agg.TopProducts(context.Background(),
		time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 1), 5)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "latte", rows[0].Name)
	assert.EqualValues(t, 3, rows[0].Quantity)
	assert.Equal(t, "croissant", rows[1].Name)
	assert.EqualValues(t, 2, rows[1].Quantity)
}

func TestCompletedOrdersLoadsItemsForExport(t *testing.T) {
	db := newTestDB(t)
	latte, _ := seedCatalog(t, db)

	seedOrder(t, db, model.OrderStatusCompleted, 27000, []model.OrderItem{
		{ProductID: latte.ID, Quantity: 1, Price: decimal.NewFromInt(27000), Total: decimal.NewFromInt(27000)},
	})
	seedOrder(t, db, model.OrderStatusCancelled, 18000, nil)

	agg := NewAggregator(db)
	orders, err := agg.CompletedOrders(context.Background(),
		time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 1))
	require.NoError(t, err)

	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	require.NotNil(t, orders[0].Items[0].Product)
	assert.Equal(t, "latte", orders[0].Items[0].Product.Name)
}
