package main

import (
	"net/http"

	"cafepos/internal/handler"
	"cafepos/internal/inventory"
	mid "cafepos/internal/middleware"
	"cafepos/internal/order"
	"cafepos/internal/payment"
	"cafepos/internal/report"
	"cafepos/pkg/config"
	"cafepos/pkg/database"
	"cafepos/pkg/jwtutil"
	"cafepos/pkg/logger"
	"cafepos/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load("cafepos")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting cafepos", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Payment gateway client
	var gateway payment.Gateway
	if appConfig.Gateway.Enabled {
		gateway = payment.NewSnapClient(&appConfig.Gateway, log)
		log.Info("Payment gateway client initialized",
			zap.String("base_url", appConfig.Gateway.BaseURL))
	} else {
		gateway = payment.DisabledGateway{}
		log.Warn("Payment gateway disabled, electronic payments will be rejected")
	}

	db := database.GetDB()
	engine := order.NewEngine(db, gateway, log)
	reconciler := payment.NewReconciler(db, log)
	ledger := inventory.NewLedger(db, log)
	aggregator := report.NewAggregator(db)

	orderHandler := handler.NewOrderHandler(engine)
	webhookHandler := handler.NewWebhookHandler(reconciler, appConfig.Gateway.ServerKey)
	inventoryHandler := handler.NewInventoryHandler(ledger)
	reportHandler := handler.NewReportHandler(aggregator)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public catalog routes used by the self-order menu
	e.GET("/api/products", handler.ListProducts)
	e.GET("/api/products/:uuid", handler.GetProduct)
	e.GET("/api/categories", handler.ListCategories)
	e.GET("/api/categories/:uuid", handler.GetCategory)

	// Order placement is shared by the POS and anonymous self-orders; staff
	// identity is attached when a token is present
	e.POST("/api/orders", orderHandler.Create, mid.OptionalAuthMiddleware)
	e.GET("/api/orders/:uuid", orderHandler.Get)

	// Payment gateway webhook
	e.POST("/api/payments/webhook", webhookHandler.Handle)

	// Auth routes
	e.POST("/api/auth/login", handler.Login)
	e.POST("/api/auth/register", handler.Register)

	// Staff routes
	api := e.Group("/api", mid.AuthMiddleware)
	api.GET("/auth/me", handler.Me)
	api.PUT("/auth/profile", handler.UpdateProfile)
	api.PUT("/auth/password", handler.UpdatePassword)

	api.POST("/products", handler.CreateProduct)
	api.PUT("/products/:uuid", handler.UpdateProduct)
	api.DELETE("/products/:uuid", handler.DeleteProduct)

	api.POST("/categories", handler.CreateCategory)
	api.PUT("/categories/:uuid", handler.UpdateCategory)
	api.DELETE("/categories/:uuid", handler.DeleteCategory)

	api.GET("/orders", orderHandler.List)
	api.PATCH("/orders/:uuid/status", orderHandler.UpdateStatus)

	api.POST("/inventory/movements", inventoryHandler.CreateMovement)
	api.GET("/inventory/logs", inventoryHandler.ListLogs)

	api.GET("/reports/dashboard", reportHandler.Dashboard)
	api.GET("/reports/sales", reportHandler.Sales)
	api.GET("/reports/top-products", reportHandler.TopProducts)
	api.GET("/reports/export", reportHandler.Export)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
