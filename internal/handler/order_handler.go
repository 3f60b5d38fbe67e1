package handler

import (
	"errors"
	"net/http"

	"cafepos/internal/middleware"
	"cafepos/internal/model"
	"cafepos/internal/order"
	"cafepos/pkg/logger"
	"cafepos/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OrderHandler exposes order placement, listing and the kitchen status
// workflow. It holds the order engine rather than reaching for the global
// DB because the engine carries the injected payment gateway.
type OrderHandler struct {
	engine *order.Engine
}

// NewOrderHandler creates an order handler
func NewOrderHandler(engine *order.Engine) *OrderHandler {
	return &OrderHandler{engine: engine}
}

// CreateOrderRequest is the order placement payload shared by the POS and
// the self-order menu
type CreateOrderRequest struct {
	CustomerName    string              `json:"customer_name"`
	Type            model.OrderType     `json:"type"`
	TableNumber     string              `json:"table_number"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	IsManualPayment bool                `json:"is_manual_payment"`
	Items           []order.CartItem    `json:"items"`
}

// Create places an order. Anonymous customers may call this; staff identity
// is attached when a valid token is present.
func (h *OrderHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid order request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	placed, err := h.engine.PlaceOrder(c.Request().Context(), order.PlaceOrderInput{
		UserID:        middleware.UserIDFromContext(c),
		CustomerName:  req.CustomerName,
		Type:          req.Type,
		TableNumber:   req.TableNumber,
		PaymentMethod: req.PaymentMethod,
		ManualPayment: req.IsManualPayment,
		Items:         req.Items,
	})
	if err != nil {
		var stockErr *model.InsufficientStockError
		var valErr *model.ValidationError
		switch {
		case errors.As(err, &stockErr):
			log.Warn("Order rejected: insufficient stock",
				zap.String("product", stockErr.ProductName),
				zap.Int("requested", stockErr.Requested),
				zap.Int("available", stockErr.Available))
			prometheus.OrderPlacementErrCounter.WithLabelValues("insufficient_stock").Inc()
			return c.JSON(http.StatusConflict, echo.Map{"error": stockErr.Error()})
		case errors.As(err, &valErr):
			prometheus.OrderPlacementErrCounter.WithLabelValues("validation").Inc()
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": valErr.Error()})
		case errors.Is(err, model.ErrProductNotFound):
			prometheus.OrderPlacementErrCounter.WithLabelValues("product_not_found").Inc()
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		case errors.Is(err, model.ErrGatewayUnavailable):
			log.Error("Order rejected: gateway failure", zap.Error(err))
			prometheus.OrderPlacementErrCounter.WithLabelValues("gateway").Inc()
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unavailable"})
		default:
			log.Error("Failed to place order", zap.Error(err))
			prometheus.OrderPlacementErrCounter.WithLabelValues("db").Inc()
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to place order"})
		}
	}

	prometheus.OrdersPlacedCounter.WithLabelValues(
		string(placed.PaymentMethod), string(placed.Type)).Inc()
	return c.JSON(http.StatusCreated, placed)
}

// List returns orders with optional status/type filters. kds=1 restricts to
// the kitchen queue (pending, processing, ready).
func (h *OrderHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	page, perPage := pagination(c, 10)
	filter := order.ListFilter{
		Status:  model.OrderStatus(c.QueryParam("status")),
		Type:    model.OrderType(c.QueryParam("type")),
		Kitchen: c.QueryParam("kds") != "",
		Page:    page,
		PerPage: perPage,
	}

	orders, total, err := h.engine.List(c.Request().Context(), filter)
	if err != nil {
		log.Error("Failed to list orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve orders"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":     orders,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// Get returns one order by UUID with its items
func (h *OrderHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("uuid")

	found, err := h.engine.GetByUUID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		}
		log.Error("Failed to get order", zap.String("order_uuid", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve order"})
	}

	return c.JSON(http.StatusOK, found)
}

// UpdateStatus advances an order through the kitchen workflow
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("uuid")

	var req struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	updated, err := h.engine.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		var transErr *model.InvalidTransitionError
		var valErr *model.ValidationError
		switch {
		case errors.As(err, &transErr):
			log.Warn("Rejected order status transition",
				zap.String("order_uuid", id),
				zap.String("from", string(transErr.From)),
				zap.String("to", string(transErr.To)))
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": transErr.Error()})
		case errors.As(err, &valErr):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": valErr.Error()})
		case errors.Is(err, model.ErrOrderNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		default:
			log.Error("Failed to update order status", zap.String("order_uuid", id), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update order status"})
		}
	}

	prometheus.OrderStatusCounter.WithLabelValues(string(updated.Status)).Inc()
	return c.JSON(http.StatusOK, updated)
}
