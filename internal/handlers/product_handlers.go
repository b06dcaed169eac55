package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"shopmart/internal/models"
	"shopmart/internal/services"
)

// ProductHandlers handles HTTP requests for the catalog.
type ProductHandlers struct {
	productService services.ProductService
}

func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	var req struct {
		CategoryID        *string `json:"category_id"`
		Name              string  `json:"name"`
		SKU               string  `json:"sku"`
		Description       string  `json:"description"`
		Price             float64 `json:"price"`
		StockQuantity     int     `json:"stock_quantity"`
		LowStockThreshold int     `json:"low_stock_threshold"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	createReq := &services.CreateProductRequest{
		Name:              req.Name,
		SKU:               req.SKU,
		Description:       req.Description,
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category_id")
		}
		createReq.CategoryID = &categoryID
	}

	product, err := h.productService.Create(c.Request().Context(), createReq)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	product, err := h.productService.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	product, err := h.productService.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}

	var req struct {
		CategoryID        *string  `json:"category_id"`
		Name              *string  `json:"name"`
		Description       *string  `json:"description"`
		Price             *float64 `json:"price"`
		LowStockThreshold *int     `json:"low_stock_threshold"`
		IsActive          *bool    `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			product.CategoryID = nil
		} else {
			categoryID, err := uuid.Parse(*req.CategoryID)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid category_id")
			}
			product.CategoryID = &categoryID
		}
	}
	if req.Name != nil {
		product.Name = *req.Name
		product.Slug = models.Slugify(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.productService.Update(ctx, product); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.productService.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "product deleted"})
}

// ListProducts handles GET /products. With a category_id query parameter it
// returns products from that category's whole subtree.
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	limit, offset := parsePagination(c)

	var (
		products []*models.Product
		err      error
	)
	if categoryParam := c.QueryParam("category_id"); categoryParam != "" {
		categoryID, parseErr := uuid.Parse(categoryParam)
		if parseErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category_id")
		}
		products, err = h.productService.ListByCategory(ctx, categoryID, limit, offset)
	} else {
		products, err = h.productService.List(ctx, limit, offset)
	}
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"products": products,
		"limit":    limit,
		"offset":   offset,
	})
}

// SearchProducts handles GET /products/search
func (h *ProductHandlers) SearchProducts(c echo.Context) error {
	filter := &models.ProductSearchFilter{
		Query:     c.QueryParam("q"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		InStock:   c.QueryParam("in_stock") == "true",
	}
	filter.Limit, filter.Offset = parsePagination(c)

	if v := c.QueryParam("category_id"); v != "" {
		categoryID, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category_id")
		}
		filter.CategoryID = &categoryID
	}
	if v := c.QueryParam("min_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid min_price")
		}
		filter.MinPrice = &price
	}
	if v := c.QueryParam("max_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid max_price")
		}
		filter.MaxPrice = &price
	}

	products, err := h.productService.Search(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"products": products})
}

// AdjustStock handles POST /products/:id/stock
func (h *ProductHandlers) AdjustStock(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Delta     int    `json:"delta"`
		Reference string `json:"reference"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	product, err := h.productService.AdjustStock(c.Request().Context(), id, req.Delta, req.Reference)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// GetProductMovements handles GET /products/:id/movements
func (h *ProductHandlers) GetProductMovements(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)

	movements, err := h.productService.ListMovements(c.Request().Context(), id, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"movements": movements,
		"limit":     limit,
		"offset":    offset,
	})
}

// UploadProductImage handles POST /products/:id/image
func (h *ProductHandlers) UploadProductImage(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read image file")
	}
	defer src.Close()

	product, err := h.productService.UploadImage(c.Request().Context(), id, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// GetProductImageURL handles GET /products/:id/image
func (h *ProductHandlers) GetProductImageURL(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	url, err := h.productService.ImageURL(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"url": url})
}
