package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shopmart/internal/models"
	"shopmart/internal/repositories"
)

// AuthService handles customer accounts and JWT issuance.
type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*models.Customer, *models.TokenResponse, error)
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	GetCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
	UpdateProfile(ctx context.Context, customerID uuid.UUID, req *UpdateProfileRequest) (*models.Customer, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]*models.Customer, error)
}

// SignupRequest carries the inputs for account creation.
type SignupRequest struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
}

// UpdateProfileRequest carries the mutable profile fields.
type UpdateProfileRequest struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
}

// CustomerClaims are the JWT claims embedded in access tokens.
type CustomerClaims struct {
	CustomerID string `json:"customer_id"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

type authService struct {
	customerRepo repositories.CustomerRepository
	jwtSecret    []byte
	tokenTTL     time.Duration
}

func NewAuthService(customerRepo repositories.CustomerRepository, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		customerRepo: customerRepo,
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     tokenTTL,
	}
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*models.Customer, *models.TokenResponse, error) {
	if req.Email == "" {
		return nil, nil, models.NewValidationError("email", "email is required")
	}
	if len(req.Password) < 8 {
		return nil, nil, models.NewValidationError("password", "password must be at least 8 characters")
	}

	if _, err := s.customerRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, nil, models.NewValidationError("email", "email is already registered")
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	customer := &models.Customer{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, nil, fmt.Errorf("failed to create customer: %w", err)
	}

	token, err := s.issueToken(customer)
	if err != nil {
		return nil, nil, err
	}
	return customer, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	customer, err := s.customerRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewValidationError("email", "invalid email or password")
		}
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewValidationError("email", "invalid email or password")
	}

	return s.issueToken(customer)
}

func (s *authService) GetCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	return s.customerRepo.GetByID(ctx, customerID)
}

func (s *authService) UpdateProfile(ctx context.Context, customerID uuid.UUID, req *UpdateProfileRequest) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.PhoneNumber = req.PhoneNumber
	customer.Address = req.Address

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

func (s *authService) ListCustomers(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.customerRepo.List(ctx, limit, offset)
}

func (s *authService) issueToken(customer *models.Customer) (*models.TokenResponse, error) {
	now := time.Now()
	claims := CustomerClaims{
		CustomerID: customer.ID.String(),
		Email:      customer.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "shopmart",
			Subject:   customer.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
	}, nil
}
