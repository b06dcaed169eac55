package jobs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"shopmart/internal/config"
	"shopmart/internal/models"
	"shopmart/internal/repositories"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) WithTx(tx pgx.Tx) repositories.ProductRepository { return m }

func (m *mockProductRepo) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductRepo) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *mockProductRepo) ListByCategoryIDs(ctx context.Context, categoryIDs []uuid.UUID, limit, offset int) ([]*models.Product, error) {
	args := m.Called(ctx, categoryIDs, limit, offset)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *mockProductRepo) ListLowStock(ctx context.Context, defaultThreshold int) ([]*models.Product, error) {
	args := m.Called(ctx, defaultThreshold)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *mockProductRepo) AdvancedSearch(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *mockProductRepo) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	return m.Called(ctx, productID, quantity).Error(0)
}

func (m *mockProductRepo) IncrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	return m.Called(ctx, productID, quantity).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) OrderStatusChanged(ctx context.Context, event *models.OrderStatusChanged) {
	m.Called(ctx, event)
}

func (m *mockNotifier) PublishLowStock(ctx context.Context, channel string, payload any) {
	m.Called(ctx, channel, payload)
}

func testSettings() config.StockAlertSettings {
	return config.StockAlertSettings{
		Enabled:          true,
		IntervalMinutes:  15,
		DefaultThreshold: 5,
		Channel:          "shopmart:alerts:stock",
	}
}

func TestCheckLowStock(t *testing.T) {
	repo := &mockProductRepo{}
	notifier := &mockNotifier{}
	svc := NewStockAlertService(repo, notifier, testSettings(), zap.NewNop())

	low := &models.Product{
		ID:                uuid.New(),
		Name:              "Webcam",
		SKU:               "CAM-01",
		StockQuantity:     2,
		LowStockThreshold: 10,
	}
	repo.On("ListLowStock", mock.Anything, 5).Return([]*models.Product{low}, nil)

	alerts, err := svc.CheckLowStock(context.Background())

	assert.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, low.ID, alerts[0].ProductID)
	assert.Equal(t, 2, alerts[0].CurrentStock)
	assert.Equal(t, 10, alerts[0].Threshold)
	repo.AssertExpectations(t)
}

func TestScheduledLowStockCheck_PublishesAlerts(t *testing.T) {
	repo := &mockProductRepo{}
	notifier := &mockNotifier{}
	settings := testSettings()
	svc := NewStockAlertService(repo, notifier, settings, zap.NewNop())

	low := &models.Product{ID: uuid.New(), Name: "Webcam", SKU: "CAM-01", StockQuantity: 1, LowStockThreshold: 3}
	repo.On("ListLowStock", mock.Anything, 5).Return([]*models.Product{low}, nil)
	notifier.On("PublishLowStock", mock.Anything, settings.Channel, mock.MatchedBy(func(a StockAlert) bool {
		return a.ProductID == low.ID && a.CurrentStock == 1
	})).Return().Once()

	err := svc.ScheduledLowStockCheck(context.Background())

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestScheduledLowStockCheck_QuietWhenHealthy(t *testing.T) {
	repo := &mockProductRepo{}
	notifier := &mockNotifier{}
	svc := NewStockAlertService(repo, notifier, testSettings(), zap.NewNop())

	repo.On("ListLowStock", mock.Anything, 5).Return([]*models.Product{}, nil)

	err := svc.ScheduledLowStockCheck(context.Background())

	assert.NoError(t, err)
	notifier.AssertNotCalled(t, "PublishLowStock", mock.Anything, mock.Anything, mock.Anything)
}
