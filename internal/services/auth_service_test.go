package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"shopmart/internal/models"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) List(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Customer), args.Error(1)
}

type AuthServiceTestSuite struct {
	suite.Suite
	repo    *MockCustomerRepository
	service AuthService
	ctx     context.Context
}

const testSecret = "test-secret-key"

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.repo = &MockCustomerRepository{}
	suite.service = NewAuthService(suite.repo, testSecret, time.Hour)
	suite.ctx = context.Background()
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.repo.AssertExpectations(suite.T())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) TestSignup_Success() {
	suite.repo.On("GetByEmail", suite.ctx, "jo@example.com").Return(nil, models.ErrNotFound)
	suite.repo.On("Create", suite.ctx, mock.AnythingOfType("*models.Customer")).Return(nil)

	customer, token, err := suite.service.Signup(suite.ctx, &SignupRequest{
		Email:     "jo@example.com",
		Password:  "correct-horse",
		FirstName: "Jo",
	})

	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), "correct-horse", customer.PasswordHash)
	assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte("correct-horse")))
	assert.Equal(suite.T(), "Bearer", token.TokenType)
	assert.Equal(suite.T(), 3600, token.ExpiresIn)

	// The access token carries the customer identity.
	parsed, parseErr := jwt.ParseWithClaims(token.AccessToken, &CustomerClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	assert.NoError(suite.T(), parseErr)
	claims := parsed.Claims.(*CustomerClaims)
	assert.Equal(suite.T(), customer.ID.String(), claims.CustomerID)
	assert.Equal(suite.T(), "jo@example.com", claims.Email)
}

func (suite *AuthServiceTestSuite) TestSignup_DuplicateEmail() {
	existing := &models.Customer{ID: uuid.New(), Email: "jo@example.com"}
	suite.repo.On("GetByEmail", suite.ctx, "jo@example.com").Return(existing, nil)

	customer, token, err := suite.service.Signup(suite.ctx, &SignupRequest{
		Email:    "jo@example.com",
		Password: "correct-horse",
	})

	assert.Nil(suite.T(), customer)
	assert.Nil(suite.T(), token)
	assert.True(suite.T(), models.IsValidation(err))
}

func (suite *AuthServiceTestSuite) TestSignup_ShortPassword() {
	_, _, err := suite.service.Signup(suite.ctx, &SignupRequest{
		Email:    "jo@example.com",
		Password: "short",
	})
	assert.True(suite.T(), models.IsValidation(err))
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	customer := &models.Customer{ID: uuid.New(), Email: "jo@example.com", PasswordHash: string(hash)}
	suite.repo.On("GetByEmail", suite.ctx, "jo@example.com").Return(customer, nil)

	token, err := suite.service.Login(suite.ctx, "jo@example.com", "correct-horse")

	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), token.AccessToken)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	customer := &models.Customer{ID: uuid.New(), Email: "jo@example.com", PasswordHash: string(hash)}
	suite.repo.On("GetByEmail", suite.ctx, "jo@example.com").Return(customer, nil)

	token, err := suite.service.Login(suite.ctx, "jo@example.com", "battery-staple")

	assert.Nil(suite.T(), token)
	assert.True(suite.T(), models.IsValidation(err))
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownEmailIndistinguishable() {
	suite.repo.On("GetByEmail", suite.ctx, "ghost@example.com").Return(nil, models.ErrNotFound)

	token, err := suite.service.Login(suite.ctx, "ghost@example.com", "whatever1")

	assert.Nil(suite.T(), token)
	assert.True(suite.T(), models.IsValidation(err))
}
