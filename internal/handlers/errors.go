package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"shopmart/internal/metrics"
	"shopmart/internal/models"
)

// writeError maps domain errors to HTTP responses: validation failures are
// 400, missing records 404, state machine and stock conflicts 409.
func writeError(c echo.Context, err error) error {
	var (
		validationErr   *models.ValidationError
		transitionErr   *models.InvalidTransitionError
		insufficientErr *models.InsufficientStockError
	)

	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]any{
			"error": "resource not found",
		})
	case errors.As(err, &transitionErr):
		metrics.InvalidTransitionsTotal.Inc()
		return c.JSON(http.StatusConflict, map[string]any{
			"error":               transitionErr.Error(),
			"from":                transitionErr.From,
			"to":                  transitionErr.To,
			"allowed_transitions": transitionErr.From.AllowedTransitions(),
		})
	case errors.As(err, &insufficientErr):
		metrics.InsufficientStockTotal.Inc()
		return c.JSON(http.StatusConflict, map[string]any{
			"error":      insufficientErr.Error(),
			"product_id": insufficientErr.ProductID,
			"requested":  insufficientErr.Requested,
			"available":  insufficientErr.Available,
		})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func parsePagination(c echo.Context) (limit, offset int) {
	limit = 50
	offset = 0
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
