package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shopmart/internal/models"
)

// Notifier receives domain events after they commit. Implementations are
// fire-and-forget: delivery to customers (email, SMS) is an external concern
// and never blocks or fails the operation that produced the event.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, event *models.OrderStatusChanged)
	PublishLowStock(ctx context.Context, channel string, payload any)
}

const orderEventsChannel = "shopmart:orders:status"

type redisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier publishes events as JSON on Redis channels for downstream
// consumers (mailers, SMS gateways, webhooks) and logs each one.
func NewRedisNotifier(addr, password string, db int, logger *zap.Logger) Notifier {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisNotifier{client: client, logger: logger}
}

func (n *redisNotifier) OrderStatusChanged(ctx context.Context, event *models.OrderStatusChanged) {
	n.logger.Info("order status changed",
		zap.String("order_id", event.OrderID.String()),
		zap.String("old_status", string(event.OldStatus)),
		zap.String("new_status", string(event.NewStatus)),
	)
	n.publish(ctx, orderEventsChannel, event)
}

func (n *redisNotifier) PublishLowStock(ctx context.Context, channel string, payload any) {
	n.publish(ctx, channel, payload)
}

func (n *redisNotifier) publish(ctx context.Context, channel string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("failed to marshal notification payload", zap.Error(err))
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := n.client.Publish(publishCtx, channel, data).Err(); err != nil {
		n.logger.Warn("failed to publish notification",
			zap.String("channel", channel),
			zap.Error(err),
		)
	}
}
