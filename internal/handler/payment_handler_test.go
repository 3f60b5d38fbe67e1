package handler

import (
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cafepos/internal/model"
	"cafepos/internal/payment"
	"cafepos/pkg/config"
	"cafepos/prometheus"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{
		Metrics: config.MetricsConfig{Prefix: "cafepos_test"},
	})
	m.Run()
}

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

func seedAwaitingPaymentOrder(t *testing.T, db *gorm.DB) model.Order {
	t.Helper()

	product := model.Product{
		Name: "latte", Slug: "latte", SKU: "SKU-1",
		Price: decimal.NewFromInt(27000), Stock: 8,
	}
	require.NoError(t, db.Create(&product).Error)

	order := model.Order{
		Type:          model.OrderTypeTakeAway,
		TotalAmount:   decimal.NewFromInt(54000),
		PaymentMethod: model.PaymentMethodQRIS,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		Items: []model.OrderItem{{
			ProductID: product.ID,
			Quantity:  2,
			Price:     decimal.NewFromInt(27000),
			Total:     decimal.NewFromInt(54000),
		}},
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func signedPayload(orderUUID, serverKey string) string {
	statusCode := "200"
	grossAmount := "54000.00"
	sum := sha512.Sum512([]byte(orderUUID + statusCode + grossAmount + serverKey))
	signature := hex.EncodeToString(sum[:])
	return `{
		"order_id": "` + orderUUID + `",
		"status_code": "` + statusCode + `",
		"gross_amount": "` + grossAmount + `",
		"signature_key": "` + signature + `",
		"transaction_status": "settlement"
	}`
}

func postWebhook(h *WebhookHandler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = h.Handle(c)
	return rec
}

func TestWebhookAppliesSignedNotification(t *testing.T) {
	db := newTestDB(t)
	order := seedAwaitingPaymentOrder(t, db)
	const serverKey = "server-key"

	h := NewWebhookHandler(payment.NewReconciler(db, zap.NewNop()), serverKey)
	rec := postWebhook(h, signedPayload(order.UUID, serverKey))

	assert.Equal(t, http.StatusOK, rec.Code)

	var stored model.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, model.PaymentStatusSettlement, stored.PaymentStatus)
	assert.Equal(t, model.OrderStatusCompleted, stored.Status)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db := newTestDB(t)
	order := seedAwaitingPaymentOrder(t, db)

	h := NewWebhookHandler(payment.NewReconciler(db, zap.NewNop()), "server-key")
	rec := postWebhook(h, signedPayload(order.UUID, "attacker-key"))

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var stored model.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, model.PaymentStatusPending, stored.PaymentStatus)
}

func TestWebhookSkipsSignatureCheckWithoutServerKey(t *testing.T) {
	db := newTestDB(t)
	order := seedAwaitingPaymentOrder(t, db)

	h := NewWebhookHandler(payment.NewReconciler(db, zap.NewNop()), "")
	rec := postWebhook(h, `{"order_id": "`+order.UUID+`", "transaction_status": "settlement"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookUnknownOrder(t *testing.T) {
	db := newTestDB(t)

	h := NewWebhookHandler(payment.NewReconciler(db, zap.NewNop()), "")
	rec := postWebhook(h, `{"order_id": "no-such-order", "transaction_status": "settlement"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhookMalformedPayload(t *testing.T) {
	db := newTestDB(t)

	h := NewWebhookHandler(payment.NewReconciler(db, zap.NewNop()), "")

	assert.Equal(t, http.StatusBadRequest, postWebhook(h, `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, postWebhook(h, `{"transaction_status": "settlement"}`).Code)
}
