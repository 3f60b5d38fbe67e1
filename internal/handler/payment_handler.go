package handler

import (
	"errors"
	"io"
	"net/http"

	"cafepos/internal/model"
	"cafepos/internal/payment"
	"cafepos/pkg/logger"
	"cafepos/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WebhookHandler receives payment gateway notifications and hands them to
// the reconciler. Any non-2xx response makes the gateway retry, so errors
// are never swallowed here.
type WebhookHandler struct {
	reconciler *payment.Reconciler
	serverKey  string
}

// NewWebhookHandler creates a webhook handler. An empty server key disables
// signature verification (local development against a gateway simulator).
func NewWebhookHandler(reconciler *payment.Reconciler, serverKey string) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler, serverKey: serverKey}
}

// Handle processes one raw gateway notification
func (h *WebhookHandler) Handle(c echo.Context) error {
	log := logger.FromEcho(c)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		log.Error("Failed to read webhook body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "unreadable body"})
	}

	notification, err := payment.ParseNotification(body)
	if err != nil {
		log.Warn("Malformed gateway notification", zap.Error(err))
		prometheus.WebhookCounter.WithLabelValues("unknown", "rejected").Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "malformed notification"})
	}

	if h.serverKey != "" && !notification.VerifySignature(h.serverKey) {
		log.Warn("Gateway notification failed signature check",
			zap.String("order_uuid", notification.OrderID))
		prometheus.WebhookCounter.WithLabelValues(notification.TransactionStatus, "rejected").Inc()
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "invalid signature"})
	}

	if err := h.reconciler.HandleNotification(c.Request().Context(), notification); err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			log.Warn("Notification for unknown order",
				zap.String("order_uuid", notification.OrderID))
			prometheus.WebhookCounter.WithLabelValues(notification.TransactionStatus, "rejected").Inc()
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "order not found"})
		}
		log.Error("Failed to apply gateway notification",
			zap.String("order_uuid", notification.OrderID),
			zap.Error(err))
		prometheus.WebhookCounter.WithLabelValues(notification.TransactionStatus, "error").Inc()
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "failed to process notification"})
	}

	prometheus.WebhookCounter.WithLabelValues(notification.TransactionStatus, "applied").Inc()
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
