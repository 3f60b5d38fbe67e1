package handler

import (
	"net/http"

	"cafepos/internal/model"
	"cafepos/pkg/database"
	"cafepos/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CategoryRequest defines the structure for category creation/update requests
type CategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

// categoryWithCount adds the owned-product count to a category row
type categoryWithCount struct {
	model.Category
	ProductsCount int64 `json:"products_count"`
}

// ListCategories retrieves categories ordered for menu display, each with
// its product count. Public: the self-order menu calls this without a token.
func ListCategories(c echo.Context) error {
	log := logger.FromEcho(c)

	query := database.GetDB().Model(&model.Category{}).
		Select("categories.*, (SELECT COUNT(*) FROM products WHERE products.category_id = categories.id AND products.deleted_at IS NULL) AS products_count")

	if search := c.QueryParam("search"); search != "" {
		query = query.Where("categories.name LIKE ?", "%"+search+"%")
	}
	if active := c.QueryParam("active"); active == "true" {
		query = query.Where("categories.is_active = ?", true)
	}

	query = query.Order("categories.sort_order ASC").Order("categories.name ASC")

	var categories []categoryWithCount
	if c.QueryParam("all") == "" {
		page, perPage := pagination(c, 10)
		query = query.Offset((page - 1) * perPage).Limit(perPage)
	}

	if result := query.Find(&categories); result.Error != nil {
		log.Error("Failed to retrieve categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve categories",
		})
	}

	return c.JSON(http.StatusOK, categories)
}

// GetCategory retrieves a specific category by UUID
func GetCategory(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("uuid")

	var category model.Category
	result := database.GetDB().Where("uuid = ?", id).First(&category)
	if result.Error != nil {
		log.Warn("Category not found", zap.String("category_uuid", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Category not found",
		})
	}

	return c.JSON(http.StatusOK, category)
}

// CreateCategory creates a new category, generating the slug from the name
// when not provided
func CreateCategory(c echo.Context) error {
	log := logger.FromEcho(c)

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if req.Name == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "name is required"})
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}

	var count int64
	database.GetDB().Model(&model.Category{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		log.Warn("Category with this slug already exists", zap.String("slug", slug))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Category with this slug already exists",
		})
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	category := model.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		IsActive:    isActive,
	}

	if result := database.GetDB().Create(&category); result.Error != nil {
		log.Error("Failed to create category", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create category",
		})
	}

	log.Info("Category created successfully",
		zap.String("category_uuid", category.UUID),
		zap.String("name", category.Name))
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory updates an existing category by UUID
func UpdateCategory(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("uuid")

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("category_uuid", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var category model.Category
	result := database.GetDB().Where("uuid = ?", id).First(&category)
	if result.Error != nil {
		log.Warn("Category not found for update", zap.String("category_uuid", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Category not found",
		})
	}

	if req.Name != "" {
		category.Name = req.Name
		if req.Slug == "" {
			category.Slug = slugify(req.Name)
		}
	}
	if req.Slug != "" {
		category.Slug = req.Slug
	}
	if req.Description != "" {
		category.Description = req.Description
	}
	if req.ImageURL != "" {
		category.ImageURL = req.ImageURL
	}
	category.SortOrder = req.SortOrder
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if result := database.GetDB().Save(&category); result.Error != nil {
		log.Error("Failed to update category", zap.String("category_uuid", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update category",
		})
	}

	log.Info("Category updated successfully",
		zap.String("category_uuid", id),
		zap.String("name", category.Name))
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category. A category that still owns products
// cannot be deleted.
func DeleteCategory(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("uuid")

	var category model.Category
	result := database.GetDB().Where("uuid = ?", id).First(&category)
	if result.Error != nil {
		log.Warn("Category not found for deletion", zap.String("category_uuid", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Category not found",
		})
	}

	var productCount int64
	database.GetDB().Model(&model.Product{}).
		Where("category_id = ?", category.ID).Count(&productCount)
	if productCount > 0 {
		log.Warn("Category still owns products",
			zap.String("category_uuid", id),
			zap.Int64("product_count", productCount))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": "Cannot delete category because it has products",
		})
	}

	if result := database.GetDB().Delete(&category); result.Error != nil {
		log.Error("Failed to delete category", zap.String("category_uuid", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete category",
		})
	}

	log.Info("Category deleted successfully", zap.String("category_uuid", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Category deleted successfully",
	})
}
