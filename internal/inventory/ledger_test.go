package inventory

import (
	"context"
	"testing"

	"cafepos/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
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

func seedProduct(t *testing.T, db *gorm.DB, stock int) model.Product {
	t.Helper()
	p := model.Product{
		Name:  "beans",
		Slug:  "beans-slug",
		SKU:   "SKU-beans",
		Price: decimal.NewFromInt(90000),
		Stock: stock,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestRecordMovementIn(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 10)
	ledger := NewLedger(db, zap.NewNop())

	entry, err := ledger.RecordMovement(context.Background(), MovementInput{
		ProductUUID: product.UUID,
		Type:        model.MovementIn,
		Quantity:    5,
		Note:        "weekly delivery",
	})
	require.NoError(t, err)

	assert.Equal(t, model.MovementIn, entry.Type)
	assert.Equal(t, 5, entry.Quantity)
	assert.Equal(t, 15, entry.CurrentStock)
	assert.Equal(t, "weekly delivery", entry.Note)

	var stored model.Product
	require.NoError(t, db.First(&stored, product.ID).Error)
	assert.Equal(t, 15, stored.Stock)
}

func TestRecordMovementOut(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 10)
	ledger := NewLedger(db, zap.NewNop())

	entry, err := ledger.RecordMovement(context.Background(), MovementInput{
		ProductUUID: product.UUID,
		Type:        model.MovementOut,
		Quantity:    4,
		Note:        "spoiled batch",
	})
	require.NoError(t, err)

	// Outbound entries carry the negative delta.
	assert.Equal(t, -4, entry.Quantity)
	assert.Equal(t, 6, entry.CurrentStock)

	var stored model.Product
	require.NoError(t, db.First(&stored, product.ID).Error)
	assert.Equal(t, 6, stored.Stock)
}

func TestRecordMovementAdjustment(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 10)
	ledger := NewLedger(db, zap.NewNop())

	up, err := ledger.RecordMovement(context.Background(), MovementInput{
		ProductUUID: product.UUID,
		Type:        model.MovementAdjustment,
		Quantity:    3,
		Note:        "count correction",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, up.Quantity)
	assert.Equal(t, 13, up.CurrentStock)

	down, err := ledger.RecordMovement(context.Background(), MovementInput{
		ProductUUID: product.UUID,
		Type:        model.MovementAdjustment,
		Quantity:    -6,
		Note:        "count correction",
	})
	require.NoError(t, err)
	assert.Equal(t, -6, down.Quantity)
	assert.Equal(t, 7, down.CurrentStock)
}

func TestRecordMovementNeverDrivesStockNegative(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 3)
	ledger := NewLedger(db, zap.NewNop())

	_, err := ledger.RecordMovement(context.Background(), MovementInput{
		ProductUUID: product.UUID,
		Type:        model.MovementOut,
		Quantity:    4,
	})
	var stockErr *model.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	_, err = ledger.RecordMovement(context.Background(), MovementInput{
		ProductUUID: product.UUID,
		Type:        model.MovementAdjustment,
		Quantity:    -5,
	})
	require.ErrorAs(t, err, &stockErr)

	// Rejected movements leave no trace.
	var stored model.Product
	require.NoError(t, db.First(&stored, product.ID).Error)
	assert.Equal(t, 3, stored.Stock)

	var logCount int64
	require.NoError(t, db.Model(&model.InventoryLog{}).Count(&logCount).Error)
	assert.Zero(t, logCount)
}

func TestRecordMovementValidation(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 10)
	ledger := NewLedger(db, zap.NewNop())

	cases := []struct {
		name  string
		input MovementInput
	}{
		{"in with zero quantity", MovementInput{ProductUUID: product.UUID, Type: model.MovementIn, Quantity: 0}},
		{"in with negative quantity", MovementInput{ProductUUID: product.UUID, Type: model.MovementIn, Quantity: -1}},
		{"out with zero quantity", MovementInput{ProductUUID: product.UUID, Type: model.MovementOut, Quantity: 0}},
		{"adjustment with zero delta", MovementInput{ProductUUID: product.UUID, Type: model.MovementAdjustment, Quantity: 0}},
		{"unknown type", MovementInput{ProductUUID: product.UUID, Type: model.MovementType("transfer"), Quantity: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.RecordMovement(context.Background(), tc.input)
			var valErr *model.ValidationError
			assert.ErrorAs(t, err, &valErr)
		})
	}
}

func TestRecordMovementUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, zap.NewNop())

	_, err := ledger.RecordMovement(context.Background(), MovementInput{
		ProductUUID: "no-such-product",
		Type:        model.MovementIn,
		Quantity:    1,
	})
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestLedgerIsAppendOnly(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 10)
	ledger := NewLedger(db, zap.NewNop())

	movements := []MovementInput{
		{ProductUUID: product.UUID, Type: model.MovementIn, Quantity: 5},
		{ProductUUID: product.UUID, Type: model.MovementOut, Quantity: 2},
		{ProductUUID: product.UUID, Type: model.MovementAdjustment, Quantity: -1},
	}
	for _, m := range movements {
		_, err := ledger.RecordMovement(context.Background(), m)
		require.NoError(t, err)
	}

	logs, total, err := ledger.List(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, logs, 3)

	// Each snapshot reflects the stock after its own movement, so the trail
	// replays to the current stock.
	var stored model.Product
	require.NoError(t, db.First(&stored, product.ID).Error)
	assert.Equal(t, 12, stored.Stock)

	replayed := 10
	for _, entry := range logs {
		replayed += entry.Quantity
	}
	assert.Equal(t, stored.Stock, replayed)
}
