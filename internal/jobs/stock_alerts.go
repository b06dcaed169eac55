package jobs

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopmart/internal/config"
	"shopmart/internal/metrics"
	"shopmart/internal/repositories"
	"shopmart/internal/services"
)

// StockAlertService scans the catalog for products running low and publishes
// alerts on the configured Redis channel.
type StockAlertService struct {
	productRepo repositories.ProductRepository
	notifier    services.Notifier
	settings    config.StockAlertSettings
	logger      *zap.Logger
}

// StockAlert is the payload published for each low product.
type StockAlert struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	SKU          string    `json:"sku"`
	CurrentStock int       `json:"current_stock"`
	Threshold    int       `json:"threshold"`
}

func NewStockAlertService(productRepo repositories.ProductRepository, notifier services.Notifier, settings config.StockAlertSettings, logger *zap.Logger) *StockAlertService {
	return &StockAlertService{
		productRepo: productRepo,
		notifier:    notifier,
		settings:    settings,
		logger:      logger,
	}
}

// CheckLowStock returns an alert for every active product at or below its
// threshold.
func (a *StockAlertService) CheckLowStock(ctx context.Context) ([]StockAlert, error) {
	products, err := a.productRepo.ListLowStock(ctx, a.settings.DefaultThreshold)
	if err != nil {
		return nil, err
	}

	alerts := make([]StockAlert, 0, len(products))
	for _, p := range products {
		threshold := p.LowStockThreshold
		if threshold < a.settings.DefaultThreshold {
			threshold = a.settings.DefaultThreshold
		}
		alerts = append(alerts, StockAlert{
			ProductID:    p.ID,
			ProductName:  p.Name,
			SKU:          p.SKU,
			CurrentStock: p.StockQuantity,
			Threshold:    threshold,
		})
	}
	return alerts, nil
}

// ScheduledLowStockCheck is the gocron entrypoint: scan, publish, update the
// gauge.
func (a *StockAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	alerts, err := a.CheckLowStock(ctx)
	if err != nil {
		a.logger.Error("low stock scan failed", zap.Error(err))
		return err
	}

	metrics.LowStockProducts.Set(float64(len(alerts)))
	if len(alerts) == 0 {
		return nil
	}

	for _, alert := range alerts {
		a.notifier.PublishLowStock(ctx, a.settings.Channel, alert)
	}
	a.logger.Info("published low stock alerts", zap.Int("count", len(alerts)))
	return nil
}
