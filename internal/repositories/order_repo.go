package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shopmart/internal/models"
)

type OrderRepository interface {
	// WithTx returns a repository bound to the given transaction.
	WithTx(tx pgx.Tx) OrderRepository

	Create(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []*models.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error)
	List(ctx context.Context, limit, offset int) ([]*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Order, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to models.OrderStatus) error
	InsertStatusEvent(ctx context.Context, event *models.OrderStatusEvent) error
	ListStatusEvents(ctx context.Context, orderID uuid.UUID) ([]*models.OrderStatusEvent, error)
}

type orderRepo struct {
	db DB
}

func NewOrderRepo(db DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) WithTx(tx pgx.Tx) OrderRepository {
	return &orderRepo{db: tx}
}

const orderColumns = `id, customer_id, status, total_amount, shipping_address, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(&order.ID, &order.CustomerID, &order.Status, &order.TotalAmount,
		&order.ShippingAddress, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, customer_id, status, total_amount, shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, order.ID, order.CustomerID, order.Status,
		order.TotalAmount, order.ShippingAddress)
	return err
}

func (r *orderRepo) CreateItems(ctx context.Context, items []*models.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	for _, item := range items {
		if _, err := r.db.Exec(ctx, query, item.ID, item.OrderID, item.ProductID,
			item.Quantity, item.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.db.QueryRow(ctx, query, id))
}

func (r *orderRepo) GetItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.UnitPrice, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *orderRepo) List(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepo) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// UpdateStatus is a compare-and-set: the row only changes if it still holds
// from. A concurrent transition that got there first makes the guard fail,
// and the caller's transaction rolls back instead of applying side effects
// twice.
func (r *orderRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to models.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	tag, err := r.db.Exec(ctx, query, to, orderID, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// The guard failed: distinguish a missing order from a lost race.
	var current models.OrderStatus
	err = r.db.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		return err
	}
	return &models.InvalidTransitionError{From: current, To: to}
}

func (r *orderRepo) InsertStatusEvent(ctx context.Context, event *models.OrderStatusEvent) error {
	query := `
		INSERT INTO order_status_events (id, order_id, from_status, to_status, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, event.ID, event.OrderID, event.FromStatus, event.ToStatus, event.OccurredAt)
	return err
}

func (r *orderRepo) ListStatusEvents(ctx context.Context, orderID uuid.UUID) ([]*models.OrderStatusEvent, error) {
	query := `
		SELECT id, order_id, from_status, to_status, occurred_at
		FROM order_status_events
		WHERE order_id = $1
		ORDER BY occurred_at ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.OrderStatusEvent
	for rows.Next() {
		event := &models.OrderStatusEvent{}
		if err := rows.Scan(&event.ID, &event.OrderID, &event.FromStatus,
			&event.ToStatus, &event.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func collectOrders(rows pgx.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.Status, &order.TotalAmount,
			&order.ShippingAddress, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
