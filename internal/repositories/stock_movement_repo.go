package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shopmart/internal/models"
)

// StockMovementRepository persists the append-only stock ledger. Movement
// rows are written inside the same transaction as the stock change itself.
type StockMovementRepository interface {
	WithTx(tx pgx.Tx) StockMovementRepository

	Create(ctx context.Context, movement *models.StockMovement) error
	ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*models.StockMovement, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.StockMovement, error)
}

type stockMovementRepo struct {
	db DB
}

func NewStockMovementRepo(db DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) WithTx(tx pgx.Tx) StockMovementRepository {
	return &stockMovementRepo{db: tx}
}

func (r *stockMovementRepo) Create(ctx context.Context, movement *models.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, order_id, type, quantity, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, movement.ID, movement.ProductID, movement.OrderID,
		movement.Type, movement.Quantity, movement.Reference)
	return err
}

func (r *stockMovementRepo) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*models.StockMovement, error) {
	query := `
		SELECT id, product_id, order_id, type, quantity, reference, created_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMovements(rows)
}

func (r *stockMovementRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.StockMovement, error) {
	query := `
		SELECT id, product_id, order_id, type, quantity, reference, created_at
		FROM stock_movements
		WHERE order_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]*models.StockMovement, error) {
	var movements []*models.StockMovement
	for rows.Next() {
		movement := &models.StockMovement{}
		if err := rows.Scan(&movement.ID, &movement.ProductID, &movement.OrderID,
			&movement.Type, &movement.Quantity, &movement.Reference, &movement.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}
	return movements, rows.Err()
}
