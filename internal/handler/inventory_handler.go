package handler

import (
	"errors"
	"net/http"

	"cafepos/internal/inventory"
	"cafepos/internal/middleware"
	"cafepos/internal/model"
	"cafepos/pkg/logger"
	"cafepos/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InventoryHandler exposes the stock movement ledger
type InventoryHandler struct {
	ledger *inventory.Ledger
}

// NewInventoryHandler creates an inventory handler
func NewInventoryHandler(ledger *inventory.Ledger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// MovementRequest is the stock movement payload. Quantity is positive for
// in/out; adjustment carries the signed delta directly.
type MovementRequest struct {
	ProductUUID string             `json:"product_uuid"`
	Type        model.MovementType `json:"type"`
	Quantity    int                `json:"quantity"`
	Note        string             `json:"note"`
}

// CreateMovement records a stock movement and returns the ledger entry
func (h *InventoryHandler) CreateMovement(c echo.Context) error {
	log := logger.FromEcho(c)

	var req MovementRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid movement request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	entry, err := h.ledger.RecordMovement(c.Request().Context(), inventory.MovementInput{
		ProductUUID: req.ProductUUID,
		Type:        req.Type,
		Quantity:    req.Quantity,
		Note:        req.Note,
		UserID:      middleware.UserIDFromContext(c),
	})
	if err != nil {
		var stockErr *model.InsufficientStockError
		var valErr *model.ValidationError
		switch {
		case errors.As(err, &stockErr):
			return c.JSON(http.StatusConflict, echo.Map{"error": stockErr.Error()})
		case errors.As(err, &valErr):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": valErr.Error()})
		case errors.Is(err, model.ErrProductNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		default:
			log.Error("Failed to record stock movement", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to record stock movement"})
		}
	}

	prometheus.StockMovementCounter.WithLabelValues(string(req.Type)).Inc()
	return c.JSON(http.StatusCreated, entry)
}

// ListLogs returns the movement audit trail, newest first
func (h *InventoryHandler) ListLogs(c echo.Context) error {
	log := logger.FromEcho(c)

	page, perPage := pagination(c, 20)
	logs, total, err := h.ledger.List(c.Request().Context(), page, perPage)
	if err != nil {
		log.Error("Failed to list inventory logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve inventory logs"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":     logs,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}
