package background

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"shopmart/internal/config"
	"shopmart/internal/jobs"
	"shopmart/internal/models"
	"shopmart/internal/repositories"
)

// JobScheduler owns the periodic work: the low-stock scan and the daily
// sales summary.
type JobScheduler struct {
	scheduler gocron.Scheduler
	alertSvc  *jobs.StockAlertService
	orderRepo repositories.OrderRepository
	alertsCfg *config.AlertsConfig
	logger    *zap.Logger
}

func NewJobScheduler(alertSvc *jobs.StockAlertService, orderRepo repositories.OrderRepository, alertsCfg *config.AlertsConfig, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		alertSvc:  alertSvc,
		orderRepo: orderRepo,
		alertsCfg: alertsCfg,
		logger:    logger,
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	if js.alertsCfg.StockAlerts.Enabled {
		interval := time.Duration(js.alertsCfg.StockAlerts.IntervalMinutes) * time.Minute
		_, err := js.scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(js.alertSvc.ScheduledLowStockCheck, context.Background()),
			gocron.WithName("low-stock-scan"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
	}

	_, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.dailySalesSummary, context.Background()),
		gocron.WithName("daily-sales-summary"),
	)
	return err
}

// dailySalesSummary logs order volume and revenue for the past day. Revenue
// only counts orders that made it past pending.
func (js *JobScheduler) dailySalesSummary(ctx context.Context) error {
	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)

	orders, err := js.orderRepo.ListCreatedBetween(ctx, start, end)
	if err != nil {
		js.logger.Error("daily sales summary failed", zap.Error(err))
		return err
	}

	var revenue float64
	var cancelled int
	for _, o := range orders {
		switch o.Status {
		case models.OrderStatusCancelled, models.OrderStatusRefunded, models.OrderStatusPending:
		default:
			revenue += o.TotalAmount
		}
		if o.Status == models.OrderStatusCancelled {
			cancelled++
		}
	}

	js.logger.Info("daily sales summary",
		zap.Time("from", start),
		zap.Time("to", end),
		zap.Int("orders", len(orders)),
		zap.Int("cancelled", cancelled),
		zap.Float64("revenue", revenue),
	)
	return nil
}
