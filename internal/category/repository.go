package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spalena53-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context) ([]*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, created_at`

func scanCategory(sc interface{ Scan(...any) error }) (*Category, error) {
	c := &Category{}
	if err := sc.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repository) List(ctx context.Context) ([]*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC`)
	if err != nil {
		log.Error("failed to query categories", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedGetCategories, err)
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			log.Error("failed to scan category", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrFailedGetCategories, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedGetCategories, err)
	}

	log.Debug("categories loaded", zap.Int("count", len(out)))
	return out, nil
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)

	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get category",
			zap.String("layer", "repository"),
			zap.String("slug", slug),
			zap.Error(err),
		)
		return nil, err
	}
	return c, nil
}
