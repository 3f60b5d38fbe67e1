package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"cafepos/internal/model"
	"cafepos/pkg/database"
	"cafepos/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	CategoryUUID string          `json:"category_uuid"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	SKU          string          `json:"sku"`
	Price        decimal.Decimal `json:"price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	Stock        int             `json:"stock"`
	MinStock     int             `json:"min_stock"`
	IsAvailable  *bool           `json:"is_available"`
	IsFeatured   *bool           `json:"is_featured"`
	SortOrder    int             `json:"sort_order"`
}

// slugify turns a display name into a URL-safe slug
func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ListProducts handles retrieving products with optional filtering. Public:
// the self-order menu calls this without a token.
func ListProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	db := database.GetDB()
	query := db.Model(&model.Product{}).Preload("Category")

	// Filter by category slug if specified
	if categorySlug := c.QueryParam("category"); categorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", categorySlug)
	}

	// Filter by availability if specified
	if available := c.QueryParam("available"); available != "" {
		if v, err := strconv.ParseBool(available); err == nil {
			query = query.Where("products.is_available = ?", v)
		}
	}

	// Filter by featured flag if specified
	if featured := c.QueryParam("featured"); featured != "" {
		if v, err := strconv.ParseBool(featured); err == nil {
			query = query.Where("products.is_featured = ?", v)
		}
	}

	// Free-text search over name and description
	if search := c.QueryParam("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("products.name LIKE ? OR products.description LIKE ?", like, like)
	}

	if c.QueryParam("sort") == "best_seller" {
		query = query.
			Joins("LEFT JOIN order_items ON order_items.product_id = products.id").
			Group("products.id").
			Order("COALESCE(SUM(order_items.quantity), 0) DESC").
			Order("products.name ASC")
	} else {
		query = query.Order("products.sort_order ASC").Order("products.name ASC")
	}

	page, perPage := pagination(c, 15)
	var products []model.Product
	result := query.Offset((page - 1) * perPage).Limit(perPage).Find(&products)
	if result.Error != nil {
		log.Error("Failed to list products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve products",
		})
	}

	return c.JSON(http.StatusOK, products)
}

// GetProduct handles retrieving a single product by UUID
func GetProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("uuid")

	var product model.Product
	result := database.GetDB().Preload("Category").Where("uuid = ?", id).First(&product)
	if result.Error != nil {
		log.Warn("Product not found", zap.String("product_uuid", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles creating a new product. Slug and SKU are generated
// when not provided: the slug from the name plus a short random suffix, the
// SKU from the category slug prefix and the numeric id.
func CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if req.Name == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "name is required"})
	}
	if req.Price.IsNegative() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "price must not be negative"})
	}
	if req.Stock < 0 || req.MinStock < 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "stock values must not be negative"})
	}

	var category model.Category
	if result := database.GetDB().Where("uuid = ?", req.CategoryUUID).First(&category); result.Error != nil {
		log.Warn("Category not found for product", zap.String("category_uuid", req.CategoryUUID))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "category not found"})
	}

	// Check if product with SKU already exists
	if req.SKU != "" {
		var count int64
		database.GetDB().Model(&model.Product{}).Where("sku = ?", req.SKU).Count(&count)
		if count > 0 {
			log.Warn("Product with this SKU already exists", zap.String("sku", req.SKU))
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "Product with this SKU already exists",
			})
		}
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name) + "-" + uuid.NewString()[:6]
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}
	isFeatured := false
	if req.IsFeatured != nil {
		isFeatured = *req.IsFeatured
	}

	product := model.Product{
		CategoryID:  category.ID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		SKU:         req.SKU,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		IsAvailable: isAvailable,
		IsFeatured:  isFeatured,
		SortOrder:   req.SortOrder,
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		if product.SKU == "" {
			prefix := strings.ToUpper(category.Slug)
			if len(prefix) > 3 {
				prefix = prefix[:3]
			}
			product.SKU = fmt.Sprintf("%s-%06d", prefix, product.ID)
			return tx.Model(&product).Update("sku", product.SKU).Error
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to create product",
			zap.String("name", req.Name),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create product",
		})
	}

	log.Info("Product created successfully",
		zap.String("product_uuid", product.UUID),
		zap.String("name", product.Name),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles updating an existing product by UUID. Price changes
// never touch existing order lines: unit prices were captured at placement.
func UpdateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("uuid")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("product_uuid", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var product model.Product
	result := database.GetDB().Where("uuid = ?", id).First(&product)
	if result.Error != nil {
		log.Warn("Product not found for update", zap.String("product_uuid", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	// Check if SKU is changed and if new SKU already exists
	if req.SKU != "" && req.SKU != product.SKU {
		var count int64
		database.GetDB().Model(&model.Product{}).
			Where("sku = ? AND id != ?", req.SKU, product.ID).Count(&count)
		if count > 0 {
			log.Warn("Product with this SKU already exists", zap.String("sku", req.SKU))
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "Product with this SKU already exists",
			})
		}
		product.SKU = req.SKU
	}

	if req.CategoryUUID != "" {
		var category model.Category
		if result := database.GetDB().Where("uuid = ?", req.CategoryUUID).First(&category); result.Error != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "category not found"})
		}
		product.CategoryID = category.ID
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Slug != "" {
		product.Slug = req.Slug
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if !req.Price.IsZero() {
		if req.Price.IsNegative() {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "price must not be negative"})
		}
		product.Price = req.Price
	}
	if !req.CostPrice.IsZero() {
		product.CostPrice = req.CostPrice
	}
	product.MinStock = req.MinStock
	product.SortOrder = req.SortOrder
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	if result := database.GetDB().Save(&product); result.Error != nil {
		log.Error("Failed to update product", zap.String("product_uuid", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update product",
		})
	}

	log.Info("Product updated successfully",
		zap.String("product_uuid", id),
		zap.String("name", product.Name))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles deleting a product (soft delete). Historical order
// items and inventory log rows keep referencing the soft-deleted row.
func DeleteProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("uuid")

	result := database.GetDB().Where("uuid = ?", id).Delete(&model.Product{})
	if result.Error != nil {
		log.Error("Failed to delete product", zap.String("product_uuid", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete product",
		})
	}
	if result.RowsAffected == 0 {
		log.Warn("Product not found for deletion", zap.String("product_uuid", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	log.Info("Product deleted successfully", zap.String("product_uuid", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product deleted successfully",
	})
}

// pagination reads page/per_page query params with a default page size
func pagination(c echo.Context, defaultPerPage int) (page, perPage int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	return page, perPage
}
