package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shopmart/internal/models"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	List(ctx context.Context, limit, offset int) ([]*models.Category, error)
	GetAncestors(ctx context.Context, category *models.Category) ([]*models.Category, error)
	GetDescendants(ctx context.Context, category *models.Category) ([]*models.Category, error)
	Reparent(ctx context.Context, category *models.Category, newParent *models.Category) error
	DeleteSubtree(ctx context.Context, category *models.Category) error
}

type categoryRepo struct {
	db DB
}

func NewCategoryRepo(db DB) CategoryRepository {
	return &categoryRepo{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, level, path, created_at, updated_at`

func scanCategory(row pgx.Row) (*models.Category, error) {
	category := &models.Category{}
	err := row.Scan(&category.ID, &category.Name, &category.Slug, &category.Description,
		&category.ParentID, &category.Level, &category.Path, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, description, parent_id, level, path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.Name, category.Slug,
		category.Description, category.ParentID, category.Level, category.Path)
	return err
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return scanCategory(r.db.QueryRow(ctx, query, id))
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name = $1`
	return scanCategory(r.db.QueryRow(ctx, query, name))
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, slug = $2, description = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := r.db.Exec(ctx, query, category.Name, category.Slug, category.Description, category.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *categoryRepo) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		ORDER BY level ASC, path ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategories(rows)
}

// GetAncestors resolves every identifier segment of the category's path in a
// single query. Root comes first.
func (r *categoryRepo) GetAncestors(ctx context.Context, category *models.Category) ([]*models.Category, error) {
	ancestorIDs, err := category.AncestorIDs()
	if err != nil {
		return nil, err
	}
	if len(ancestorIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = ANY($1)
		ORDER BY level ASC
	`
	rows, err := r.db.Query(ctx, query, ancestorIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategories(rows)
}

// GetDescendants returns the whole subtree below the category with one
// prefix-match query; no recursion.
func (r *categoryRepo) GetDescendants(ctx context.Context, category *models.Category) ([]*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE path LIKE $1 || '/%'
		ORDER BY level ASC, path ASC
	`
	rows, err := r.db.Query(ctx, query, category.Path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategories(rows)
}

// Reparent moves the category under newParent (nil for root) and rewrites
// level and path for the category and its entire subtree in one transaction.
// The subtree rewrite is a single batch UPDATE, so readers never observe a
// half-moved tree.
func (r *categoryRepo) Reparent(ctx context.Context, category *models.Category, newParent *models.Category) error {
	oldPath := category.Path
	oldLevel := category.Level

	newLevel := 0
	var parentID *uuid.UUID
	if newParent != nil {
		newLevel = newParent.Level + 1
		parentID = &newParent.ID
	}
	newPath := models.ChildPath(newParent, category.ID)
	levelDelta := newLevel - oldLevel

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE categories
		SET parent_id = $1, level = $2, path = $3, updated_at = NOW()
		WHERE id = $4
	`, parentID, newLevel, newPath, category.ID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE categories
		SET path = $1 || substr(path, char_length($2) + 1),
		    level = level + $3,
		    updated_at = NOW()
		WHERE path LIKE $2 || '/%'
	`, newPath, oldPath, levelDelta)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	category.ParentID = parentID
	category.Level = newLevel
	category.Path = newPath
	return nil
}

// DeleteSubtree removes the category and all of its descendants. A single
// statement keeps the cascade atomic.
func (r *categoryRepo) DeleteSubtree(ctx context.Context, category *models.Category) error {
	query := `DELETE FROM categories WHERE id = $1 OR path LIKE $2 || '/%'`
	tag, err := r.db.Exec(ctx, query, category.ID, category.Path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func collectCategories(rows pgx.Rows) ([]*models.Category, error) {
	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.Description,
			&category.ParentID, &category.Level, &category.Path, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
