package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"shopmart/internal/caching"
	"shopmart/internal/models"
	"shopmart/internal/repositories"
)

const (
	productCacheTTL  = 5 * time.Minute
	presignedExpiry  = 15 * time.Minute
	imageContentType = "image/jpeg"
)

// ProductService manages the catalog: CRUD with SKU uniqueness, search,
// category-subtree listings, image storage, and manual stock adjustments.
type ProductService interface {
	Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
	// ListByCategory returns products in the category and its whole subtree.
	ListByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]*models.Product, error)
	Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error)
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int, reference string) (*models.Product, error)
	ListMovements(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*models.StockMovement, error)
	UploadImage(ctx context.Context, productID uuid.UUID, reader io.Reader, size int64, contentType string) (*models.Product, error)
	ImageURL(ctx context.Context, productID uuid.UUID) (string, error)
}

// CreateProductRequest carries the inputs for catalog creation.
type CreateProductRequest struct {
	CategoryID        *uuid.UUID
	Name              string
	SKU               string
	Description       string
	Price             float64
	StockQuantity     int
	LowStockThreshold int
}

type productService struct {
	txm          repositories.TxManager
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	movementRepo repositories.StockMovementRepository
	cacheSvc     caching.CacheService
	storage      StorageService
	imageBucket  string
	logger       *zap.Logger
}

func NewProductService(
	txm repositories.TxManager,
	productRepo repositories.ProductRepository,
	categoryRepo repositories.CategoryRepository,
	movementRepo repositories.StockMovementRepository,
	cacheSvc caching.CacheService,
	storage StorageService,
	imageBucket string,
	logger *zap.Logger,
) ProductService {
	return &productService{
		txm:          txm,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		movementRepo: movementRepo,
		cacheSvc:     cacheSvc,
		storage:      storage,
		imageBucket:  imageBucket,
		logger:       logger,
	}
}

func (s *productService) Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if req.Name == "" {
		return nil, models.NewValidationError("name", "name is required")
	}
	if req.SKU == "" {
		return nil, models.NewValidationError("sku", "sku is required")
	}
	if req.Price < 0 {
		return nil, models.NewValidationError("price", "price cannot be negative")
	}
	if req.StockQuantity < 0 {
		return nil, models.NewValidationError("stock_quantity", "stock quantity cannot be negative")
	}

	if _, err := s.productRepo.GetBySKU(ctx, req.SKU); err == nil {
		return nil, models.NewValidationError("sku", fmt.Sprintf("sku %q already exists", req.SKU))
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to check sku: %w", err)
	}

	if req.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, models.NewValidationError("category_id", "category not found")
			}
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
	}

	product := &models.Product{
		ID:                uuid.New(),
		CategoryID:        req.CategoryID,
		Name:              req.Name,
		Slug:              models.Slugify(req.Name),
		SKU:               req.SKU,
		Description:       req.Description,
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          true,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if cached, err := s.cacheSvc.GetProduct(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cacheSvc.SetProduct(ctx, product, productCacheTTL)
	return product, nil
}

func (s *productService) Update(ctx context.Context, product *models.Product) error {
	if product.Price < 0 {
		return models.NewValidationError("price", "price cannot be negative")
	}
	if product.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *product.CategoryID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.NewValidationError("category_id", "category not found")
			}
			return fmt.Errorf("failed to get category: %w", err)
		}
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}
	_ = s.cacheSvc.DeleteProduct(ctx, product.ID)
	return nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cacheSvc.DeleteProduct(ctx, id)

	if product.ImageKey != nil {
		if err := s.storage.DeleteImage(ctx, s.imageBucket, *product.ImageKey); err != nil {
			s.logger.Warn("failed to delete product image",
				zap.String("product_id", id.String()),
				zap.String("image_key", *product.ImageKey),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *productService) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.productRepo.List(ctx, limit, offset)
}

func (s *productService) ListByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	descendants, err := s.categoryRepo.GetDescendants(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to get descendants: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(descendants)+1)
	ids = append(ids, category.ID)
	for _, d := range descendants {
		ids = append(ids, d.ID)
	}
	return s.productRepo.ListByCategoryIDs(ctx, ids, limit, offset)
}

func (s *productService) Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	return s.productRepo.AdvancedSearch(ctx, filter)
}

// AdjustStock applies a manual signed correction and records it in the
// movement ledger. Negative deltas go through the conditional decrement, so
// an adjustment can never push stock below zero.
func (s *productService) AdjustStock(ctx context.Context, productID uuid.UUID, delta int, reference string) (*models.Product, error) {
	if delta == 0 {
		return nil, models.NewValidationError("delta", "delta must be non-zero")
	}

	err := s.txm.WithinTx(ctx, func(tx pgx.Tx) error {
		productRepo := s.productRepo.WithTx(tx)
		if delta > 0 {
			if err := productRepo.IncrementStock(ctx, productID, delta); err != nil {
				return err
			}
		} else {
			if err := productRepo.DecrementStock(ctx, productID, -delta); err != nil {
				return err
			}
		}
		return s.movementRepo.WithTx(tx).Create(ctx, &models.StockMovement{
			ID:        uuid.New(),
			ProductID: productID,
			Type:      models.MovementAdjustment,
			Quantity:  delta,
			Reference: reference,
		})
	})
	if err != nil {
		return nil, err
	}

	_ = s.cacheSvc.DeleteProduct(ctx, productID)
	return s.productRepo.GetByID(ctx, productID)
}

// ListMovements returns the product's stock ledger, newest first.
func (s *productService) ListMovements(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*models.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.movementRepo.ListByProduct(ctx, productID, limit, offset)
}

func (s *productService) UploadImage(ctx context.Context, productID uuid.UUID, reader io.Reader, size int64, contentType string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if contentType == "" {
		contentType = imageContentType
	}
	objectName := fmt.Sprintf("products/%s", productID)
	if err := s.storage.UploadImage(ctx, s.imageBucket, objectName, contentType, reader, size); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	product.ImageKey = &objectName
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	_ = s.cacheSvc.DeleteProduct(ctx, productID)
	return product, nil
}

func (s *productService) ImageURL(ctx context.Context, productID uuid.UUID) (string, error) {
	product, err := s.GetByID(ctx, productID)
	if err != nil {
		return "", err
	}
	if product.ImageKey == nil {
		return "", models.ErrNotFound
	}
	return s.storage.GetPresignedURL(ctx, s.imageBucket, *product.ImageKey, presignedExpiry)
}
