package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"shopmart/internal/middleware"
	"shopmart/internal/models"
	"shopmart/internal/services"
)

// OrderHandlers handles HTTP requests for orders and their lifecycle.
type OrderHandlers struct {
	orderService services.OrderService
}

func NewOrderHandlers(orderService services.OrderService) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

// CreateOrder handles POST /orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	customerID, err := middleware.CustomerIDFromContext(c)
	if err != nil {
		return err
	}

	var req struct {
		ShippingAddress string `json:"shipping_address"`
		Items           []struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	createReq := &services.CreateOrderRequest{
		ShippingAddress: req.ShippingAddress,
	}
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid product_id")
		}
		createReq.Items = append(createReq.Items, services.OrderItemRequest{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orderService.Create(c.Request().Context(), customerID, createReq)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /orders/:id. Customers can only read their own orders.
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	customerID, err := middleware.CustomerIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if order.CustomerID != customerID {
		return writeError(c, models.ErrNotFound)
	}
	return c.JSON(http.StatusOK, order)
}

// ListMyOrders handles GET /orders
func (h *OrderHandlers) ListMyOrders(c echo.Context) error {
	customerID, err := middleware.CustomerIDFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)

	orders, err := h.orderService.ListByCustomer(c.Request().Context(), customerID, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

// ListAllOrders handles GET /orders/all, the back-office view across
// customers.
func (h *OrderHandlers) ListAllOrders(c echo.Context) error {
	limit, offset := parsePagination(c)

	orders, err := h.orderService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

// GetOrderMovements handles GET /orders/:id/movements
func (h *OrderHandlers) GetOrderMovements(c echo.Context) error {
	customerID, err := middleware.CustomerIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if order.CustomerID != customerID {
		return writeError(c, models.ErrNotFound)
	}

	movements, err := h.orderService.Movements(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"movements": movements})
}

// TransitionOrder handles POST /orders/:id/transition
func (h *OrderHandlers) TransitionOrder(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}

	target := models.OrderStatus(req.Status)
	order, err := h.orderService.Transition(c.Request().Context(), id, target)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// CancelOrder handles POST /orders/:id/cancel. Customers can cancel their
// own orders while the state machine still permits it.
func (h *OrderHandlers) CancelOrder(c echo.Context) error {
	customerID, err := middleware.CustomerIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	order, err := h.orderService.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if order.CustomerID != customerID {
		return writeError(c, models.ErrNotFound)
	}

	order, err = h.orderService.Transition(ctx, id, models.OrderStatusCancelled)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// GetOrderHistory handles GET /orders/:id/history
func (h *OrderHandlers) GetOrderHistory(c echo.Context) error {
	customerID, err := middleware.CustomerIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	order, err := h.orderService.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if order.CustomerID != customerID {
		return writeError(c, models.ErrNotFound)
	}

	events, err := h.orderService.History(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"order_id": id,
		"status":   order.Status,
		"events":   events,
	})
}
