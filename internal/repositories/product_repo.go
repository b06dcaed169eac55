package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shopmart/internal/models"
)

type ProductRepository interface {
	// WithTx returns a repository bound to the given transaction.
	WithTx(tx pgx.Tx) ProductRepository

	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
	ListByCategoryIDs(ctx context.Context, categoryIDs []uuid.UUID, limit, offset int) ([]*models.Product, error)
	ListLowStock(ctx context.Context, defaultThreshold int) ([]*models.Product, error)
	AdvancedSearch(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error)

	// DecrementStock applies a conditional decrement: it succeeds only if the
	// product still has at least quantity units. Returns
	// *models.InsufficientStockError when the condition fails and
	// models.ErrNotFound when the product does not exist.
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error
	// IncrementStock adds quantity back to the product's stock.
	IncrementStock(ctx context.Context, productID uuid.UUID, quantity int) error
}

type productRepo struct {
	db DB
}

func NewProductRepo(db DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) WithTx(tx pgx.Tx) ProductRepository {
	return &productRepo{db: tx}
}

const productColumns = `id, category_id, name, slug, sku, description, price, stock_quantity, low_stock_threshold, image_key, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(&product.ID, &product.CategoryID, &product.Name, &product.Slug, &product.SKU,
		&product.Description, &product.Price, &product.StockQuantity, &product.LowStockThreshold,
		&product.ImageKey, &product.IsActive, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, category_id, name, slug, sku, description, price, stock_quantity, low_stock_threshold, image_key, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, product.ID, product.CategoryID, product.Name, product.Slug,
		product.SKU, product.Description, product.Price, product.StockQuantity,
		product.LowStockThreshold, product.ImageKey, product.IsActive)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.db.QueryRow(ctx, query, id))
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`
	return scanProduct(r.db.QueryRow(ctx, query, sku))
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET category_id = $1, name = $2, slug = $3, sku = $4, description = $5,
		    price = $6, stock_quantity = $7, low_stock_threshold = $8,
		    image_key = $9, is_active = $10, updated_at = NOW()
		WHERE id = $11
	`
	tag, err := r.db.Exec(ctx, query, product.CategoryID, product.Name, product.Slug, product.SKU,
		product.Description, product.Price, product.StockQuantity, product.LowStockThreshold,
		product.ImageKey, product.IsActive, product.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *productRepo) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *productRepo) ListByCategoryIDs(ctx context.Context, categoryIDs []uuid.UUID, limit, offset int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE category_id = ANY($1)
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, categoryIDs, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// ListLowStock returns active products at or below their own threshold, or
// at or below defaultThreshold for products without one.
func (r *productRepo) ListLowStock(ctx context.Context, defaultThreshold int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = TRUE
		  AND stock_quantity <= GREATEST(low_stock_threshold, $1)
		ORDER BY stock_quantity ASC
	`
	rows, err := r.db.Query(ctx, query, defaultThreshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *productRepo) AdvancedSearch(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	queryBase := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	argN := 0

	if filter.Query != "" {
		argN++
		queryBase += fmt.Sprintf(` AND (name ILIKE $%d OR sku ILIKE $%d OR description ILIKE $%d)`, argN, argN, argN)
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.CategoryID != nil {
		argN++
		queryBase += fmt.Sprintf(` AND category_id = $%d`, argN)
		args = append(args, *filter.CategoryID)
	}
	if filter.MinPrice != nil {
		argN++
		queryBase += fmt.Sprintf(` AND price >= $%d`, argN)
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		argN++
		queryBase += fmt.Sprintf(` AND price <= $%d`, argN)
		args = append(args, *filter.MaxPrice)
	}
	if filter.InStock {
		queryBase += ` AND stock_quantity > 0`
	}

	sortField := "created_at"
	switch filter.SortBy {
	case "name", "price", "stock_quantity", "created_at":
		sortField = filter.SortBy
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	argN++
	queryBase += fmt.Sprintf(` LIMIT $%d`, argN)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		argN++
		queryBase += fmt.Sprintf(` OFFSET $%d`, argN)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *productRepo) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2
	`
	tag, err := r.db.Exec(ctx, query, productID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// The guard failed: distinguish a missing product from a shortfall.
	var available int
	err = r.db.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		return err
	}
	return &models.InsufficientStockError{ProductID: productID, Requested: quantity, Available: available}
}

func (r *productRepo) IncrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $2, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, productID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(&product.ID, &product.CategoryID, &product.Name, &product.Slug, &product.SKU,
			&product.Description, &product.Price, &product.StockQuantity, &product.LowStockThreshold,
			&product.ImageKey, &product.IsActive, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
