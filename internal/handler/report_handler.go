package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cafepos/internal/report"
	"cafepos/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ReportHandler exposes the read-only reporting surface
type ReportHandler struct {
	agg *report.Aggregator
}

// NewReportHandler creates a report handler
func NewReportHandler(agg *report.Aggregator) *ReportHandler {
	return &ReportHandler{agg: agg}
}

// dateRange reads start_date/end_date query params (YYYY-MM-DD), defaulting
// to the last 30 days. The returned end is exclusive.
func dateRange(c echo.Context) (time.Time, time.Time, error) {
	now := time.Now()
	start := now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
	end := now

	if s := c.QueryParam("start_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q", s)
		}
		start = parsed
	}
	if s := c.QueryParam("end_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q", s)
		}
		end = parsed.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// Dashboard returns the admin landing-page summary
func (h *ReportHandler) Dashboard(c echo.Context) error {
	log := logger.FromEcho(c)

	stats, err := h.agg.Dashboard(c.Request().Context())
	if err != nil {
		log.Error("Failed to aggregate dashboard stats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve dashboard stats"})
	}
	return c.JSON(http.StatusOK, stats)
}

// Sales returns the daily completed-order rollup over a date range
func (h *ReportHandler) Sales(c echo.Context) error {
	log := logger.FromEcho(c)

	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	rows, err := h.agg.DailySales(c.Request().Context(), start, end)
	if err != nil {
		log.Error("Failed to aggregate sales report", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve sales report"})
	}
	return c.JSON(http.StatusOK, rows)
}

// TopProducts returns the best-seller ranking over a date range
func (h *ReportHandler) TopProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	rows, err := h.agg.TopProducts(c.Request().Context(), start, end, 5)
	if err != nil {
		log.Error("Failed to aggregate top products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve top products"})
	}
	return c.JSON(http.StatusOK, rows)
}

// Export streams completed orders as CSV
func (h *ReportHandler) Export(c echo.Context) error {
	log := logger.FromEcho(c)

	start, end, err := dateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	orders, err := h.agg.CompletedOrders(c.Request().Context(), start, end)
	if err != nil {
		log.Error("Failed to load orders for export", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export sales report"})
	}

	filename := fmt.Sprintf("sales_report_%s_%s.csv",
		start.Format("2006-01-02"), end.AddDate(0, 0, -1).Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write([]string{"Order UUID", "Date", "Customer", "Table", "Items", "Total Amount", "Payment Method"}); err != nil {
		return err
	}

	for _, o := range orders {
		items := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			name := "Unknown Product"
			if item.Product != nil {
				name = item.Product.Name
			}
			items = append(items, fmt.Sprintf("%dx %s", item.Quantity, name))
		}

		customer := o.CustomerName
		if customer == "" && o.User != nil {
			customer = o.User.Name
		}
		if customer == "" {
			customer = "Guest"
		}

		table := o.TableNumber
		if table == "" {
			table = "-"
		}

		if err := w.Write([]string{
			o.UUID,
			o.CreatedAt.Format("2006-01-02 15:04:05"),
			customer,
			table,
			strings.Join(items, ", "),
			o.TotalAmount.StringFixed(2),
			string(o.PaymentMethod),
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
