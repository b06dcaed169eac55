package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"shopmart/internal/metrics"
	"shopmart/internal/models"
	"shopmart/internal/repositories"
)

// OrderService governs the order lifecycle: creation with price capture and
// a soft stock check, and status transitions with their inventory side
// effects. Every transition is all-or-nothing.
type OrderService interface {
	Create(ctx context.Context, customerID uuid.UUID, req *CreateOrderRequest) (*models.Order, error)
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, limit, offset int) ([]*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Order, error)
	Transition(ctx context.Context, orderID uuid.UUID, target models.OrderStatus) (*models.Order, error)
	History(ctx context.Context, orderID uuid.UUID) ([]*models.OrderStatusEvent, error)
	Movements(ctx context.Context, orderID uuid.UUID) ([]*models.StockMovement, error)
}

// CreateOrderRequest carries the inputs for order creation.
type CreateOrderRequest struct {
	ShippingAddress string
	Items           []OrderItemRequest
}

// OrderItemRequest is a single requested line: product and quantity. The
// unit price is captured from the catalog, never taken from the caller.
type OrderItemRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

type orderService struct {
	txm          repositories.TxManager
	orderRepo    repositories.OrderRepository
	productRepo  repositories.ProductRepository
	movementRepo repositories.StockMovementRepository
	notifier     Notifier
	logger       *zap.Logger
}

func NewOrderService(
	txm repositories.TxManager,
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	movementRepo repositories.StockMovementRepository,
	notifier Notifier,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		txm:          txm,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// Create validates the requested lines against the catalog, captures unit
// prices, computes the total, and persists the order in pending state. The
// stock check here is a soft check: stock is not reserved, and availability
// is re-validated at confirmation time.
func (s *orderService) Create(ctx context.Context, customerID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, models.NewValidationError("items", "order must contain at least one item")
	}

	order := &models.Order{
		ID:              uuid.New(),
		CustomerID:      customerID,
		Status:          models.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
	}

	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, models.NewValidationError("quantity", "quantity must be a positive integer")
		}

		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, models.NewValidationError("product_id", fmt.Sprintf("product %s not found", line.ProductID))
			}
			return nil, fmt.Errorf("failed to look up product %s: %w", line.ProductID, err)
		}
		if !product.IsActive {
			return nil, models.NewValidationError("product_id", fmt.Sprintf("product %q is not available", product.Name))
		}
		if product.StockQuantity < line.Quantity {
			return nil, &models.InsufficientStockError{
				ProductID: product.ID,
				Requested: line.Quantity,
				Available: product.StockQuantity,
			}
		}

		order.Items = append(order.Items, &models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price, // captured now, immune to later price changes
		})
	}
	order.TotalAmount = order.ComputeTotal()

	err := s.txm.WithinTx(ctx, func(tx pgx.Tx) error {
		repo := s.orderRepo.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			return err
		}
		if err := repo.CreateItems(ctx, order.Items); err != nil {
			return err
		}
		// The history starts with the creation itself, same tx as the order.
		return repo.InsertStatusEvent(ctx, &models.OrderStatusEvent{
			ID:         uuid.New(),
			OrderID:    order.ID,
			FromStatus: models.OrderStatusPending,
			ToStatus:   models.OrderStatusPending,
			OccurredAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.Float64("total_amount", order.TotalAmount),
	)
	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orderRepo.GetItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	order.Items = items
	return order, nil
}

func (s *orderService) List(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.orderRepo.List(ctx, limit, offset)
}

func (s *orderService) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.orderRepo.ListByCustomer(ctx, customerID, limit, offset)
}

// Transition moves an order to the target status. The adjacency table is
// checked before any mutation. Confirming decrements each line's product
// stock through a conditional update, re-validated against current stock;
// cancelling a confirmed or processing order restores it. Status change,
// status event, stock updates, and ledger rows commit in one transaction or
// not at all.
func (s *orderService) Transition(ctx context.Context, orderID uuid.UUID, target models.OrderStatus) (*models.Order, error) {
	if !target.Valid() {
		return nil, models.NewValidationError("status", fmt.Sprintf("unknown order status %q", target))
	}

	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !from.CanTransitionTo(target) {
		return nil, &models.InvalidTransitionError{From: from, To: target}
	}

	err = s.txm.WithinTx(ctx, func(tx pgx.Tx) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		movementRepo := s.movementRepo.WithTx(tx)

		// Compare-and-set first. It locks the order row for the rest of the
		// transaction and fails if a concurrent transition already moved the
		// order past the status read above, so the side effects below run at
		// most once per edge.
		if err := orderRepo.UpdateStatus(ctx, order.ID, from, target); err != nil {
			return err
		}

		switch {
		case target == models.OrderStatusConfirmed:
			// Stock decrements happen exactly once per order, on this edge.
			// Re-confirmation is unreachable: confirmed is not adjacent to itself.
			for _, item := range order.Items {
				if err := productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
				if err := movementRepo.Create(ctx, &models.StockMovement{
					ID:        uuid.New(),
					ProductID: item.ProductID,
					OrderID:   &order.ID,
					Type:      models.MovementSale,
					Quantity:  -item.Quantity,
					Reference: order.ID.String(),
				}); err != nil {
					return err
				}
			}

		case target == models.OrderStatusCancelled && stockWasDecremented(from):
			for _, item := range order.Items {
				if err := productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
				if err := movementRepo.Create(ctx, &models.StockMovement{
					ID:        uuid.New(),
					ProductID: item.ProductID,
					OrderID:   &order.ID,
					Type:      models.MovementReturn,
					Quantity:  item.Quantity,
					Reference: order.ID.String(),
				}); err != nil {
					return err
				}
			}
		}

		return orderRepo.InsertStatusEvent(ctx, &models.OrderStatusEvent{
			ID:         uuid.New(),
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   target,
			OccurredAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	order.Status = target
	metrics.RecordTransition(string(from), string(target))

	event := &models.OrderStatusChanged{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		OldStatus:  from,
		NewStatus:  target,
		OccurredAt: time.Now().UTC(),
	}
	go s.notifier.OrderStatusChanged(ctx, event)

	return order, nil
}

func (s *orderService) History(ctx context.Context, orderID uuid.UUID) ([]*models.OrderStatusEvent, error) {
	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.orderRepo.ListStatusEvents(ctx, orderID)
}

// Movements returns the stock ledger entries the order produced.
func (s *orderService) Movements(ctx context.Context, orderID uuid.UUID) ([]*models.StockMovement, error) {
	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.movementRepo.ListByOrder(ctx, orderID)
}

// stockWasDecremented reports whether an order in status from has already
// had its stock taken (any state at or past confirmed that can still cancel).
func stockWasDecremented(from models.OrderStatus) bool {
	return from == models.OrderStatusConfirmed || from == models.OrderStatusProcessing
}
