package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"shopmart/internal/caching"
	"shopmart/internal/models"
	"shopmart/internal/repositories"
)

const categoryCacheTTL = 10 * time.Minute

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

// CategoryService maintains the category forest: computed levels,
// materialized paths, and the reparent cascade.
type CategoryService interface {
	Create(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, name, description string) (*models.Category, error)
	List(ctx context.Context, limit, offset int) ([]*models.Category, error)
	Tree(ctx context.Context) ([]*models.Category, error)
	GetAncestors(ctx context.Context, id uuid.UUID) ([]*models.Category, error)
	GetDescendants(ctx context.Context, id uuid.UUID) ([]*models.Category, error)
	Reparent(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateCategoryRequest carries the inputs for category creation.
type CreateCategoryRequest struct {
	Name        string
	Description string
	ParentID    *uuid.UUID
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	cacheSvc     caching.CacheService
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, cacheSvc caching.CacheService) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		cacheSvc:     cacheSvc,
	}
}

// Create inserts a new category. Names are globally unique; level and path
// are computed from the parent snapshot at persistence time. The identifier
// is generated up front, so the path is fully known before the insert.
func (s *categoryService) Create(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	if req.Name == "" {
		return nil, models.NewValidationError("name", "name is required")
	}

	if _, err := s.categoryRepo.GetByName(ctx, req.Name); err == nil {
		return nil, models.NewValidationError("name", fmt.Sprintf("category %q already exists", req.Name))
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}

	var parent *models.Category
	if req.ParentID != nil {
		var err error
		parent, err = s.categoryRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, models.NewValidationError("parent_id", "parent category not found")
			}
			return nil, fmt.Errorf("failed to get parent category: %w", err)
		}
	}

	category := &models.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        models.Slugify(req.Name),
		Description: req.Description,
		ParentID:    req.ParentID,
	}
	category.Path = models.ChildPath(parent, category.ID)
	if parent != nil {
		category.Level = parent.Level + 1
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, models.NewValidationError("name", fmt.Sprintf("category %q already exists", req.Name))
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if cached, err := s.cacheSvc.GetCategory(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cacheSvc.SetCategory(ctx, category, categoryCacheTTL)
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, name, description string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" && name != category.Name {
		if _, err := s.categoryRepo.GetByName(ctx, name); err == nil {
			return nil, models.NewValidationError("name", fmt.Sprintf("category %q already exists", name))
		} else if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to check category name: %w", err)
		}
		category.Name = name
		category.Slug = models.Slugify(name)
	}
	category.Description = description

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	_ = s.cacheSvc.DeleteCategory(ctx, id)
	return category, nil
}

func (s *categoryService) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.categoryRepo.List(ctx, limit, offset)
}

// Tree returns the whole forest nested under its roots. Ordering by
// (level, path) from the repository guarantees parents arrive before
// children, so a single pass suffices.
func (s *categoryService) Tree(ctx context.Context) ([]*models.Category, error) {
	flat, err := s.categoryRepo.List(ctx, 10000, 0)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Category, len(flat))
	var roots []*models.Category
	for _, c := range flat {
		byID[c.ID] = c
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Children = append(parent.Children, c)
		}
	}
	return roots, nil
}

func (s *categoryService) GetAncestors(ctx context.Context, id uuid.UUID) ([]*models.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.categoryRepo.GetAncestors(ctx, category)
}

func (s *categoryService) GetDescendants(ctx context.Context, id uuid.UUID) ([]*models.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.categoryRepo.GetDescendants(ctx, category)
}

// Reparent moves a category (and implicitly its subtree) under a new parent.
// Moving under itself or any of its descendants is rejected before any
// mutation; the path/level rewrite happens atomically in the repository.
func (s *categoryService) Reparent(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var newParent *models.Category
	if newParentID != nil {
		if *newParentID == category.ID {
			return nil, models.NewValidationError("parent_id", "category cannot be its own parent")
		}
		newParent, err = s.categoryRepo.GetByID(ctx, *newParentID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, models.NewValidationError("parent_id", "parent category not found")
			}
			return nil, fmt.Errorf("failed to get new parent: %w", err)
		}
		if newParent.IsDescendantOf(category) {
			return nil, models.NewValidationError("parent_id", "cannot move a category under one of its descendants")
		}
	}

	if err := s.categoryRepo.Reparent(ctx, category, newParent); err != nil {
		return nil, fmt.Errorf("failed to reparent category: %w", err)
	}

	// Every descendant's path changed; drop all cached categories.
	_ = s.cacheSvc.InvalidateCategories(ctx)
	return category, nil
}

// Delete removes the category together with its whole subtree.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.categoryRepo.DeleteSubtree(ctx, category); err != nil {
		return fmt.Errorf("failed to delete category subtree: %w", err)
	}
	_ = s.cacheSvc.InvalidateCategories(ctx)
	return nil
}
