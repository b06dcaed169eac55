package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"shopmart/internal/middleware"
	"shopmart/internal/services"
)

// AuthHandlers handles signup, login, and the customer profile.
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Signup handles POST /auth/signup
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		PhoneNumber string `json:"phone_number"`
		Address     string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	customer, token, err := h.authService.Signup(c.Request().Context(), &services.SignupRequest{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"customer": customer,
		"token":    token,
	})
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, token)
}

// Me handles GET /me
func (h *AuthHandlers) Me(c echo.Context) error {
	customerID, err := middleware.CustomerIDFromContext(c)
	if err != nil {
		return err
	}

	customer, err := h.authService.GetCustomer(c.Request().Context(), customerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// ListCustomers handles GET /customers, the back-office account listing.
func (h *AuthHandlers) ListCustomers(c echo.Context) error {
	limit, offset := parsePagination(c)

	customers, err := h.authService.ListCustomers(c.Request().Context(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"customers": customers,
		"limit":     limit,
		"offset":    offset,
	})
}

// UpdateMe handles PUT /me
func (h *AuthHandlers) UpdateMe(c echo.Context) error {
	customerID, err := middleware.CustomerIDFromContext(c)
	if err != nil {
		return err
	}

	var req struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		PhoneNumber string `json:"phone_number"`
		Address     string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	customer, err := h.authService.UpdateProfile(c.Request().Context(), customerID, &services.UpdateProfileRequest{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}
