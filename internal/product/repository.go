package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"spalena53-be/internal/category"
	"spalena53-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]*Product, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, in CreateInput) (*Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectProduct = `
	SELECT
		p.id, p.sku, p.title, p.author, p.description,
		p.price, p.sale_price, p.category_id, p.type, p.condition,
		p.stock, p.images, p.isbn, p.year, p.publisher,
		p.language, p.pages, p.weight, p.featured, p.active,
		p.created_at, p.updated_at,
		c.id, c.name, c.slug
	FROM products p
	JOIN categories c ON c.id = p.category_id
`

var sortColumns = map[string]string{
	"price":     "p.price ASC",
	"-price":    "p.price DESC",
	"title":     "p.title ASC",
	"-title":    "p.title DESC",
	"createdAt": "p.created_at ASC",
}

func scanProduct(sc interface{ Scan(...any) error }) (*Product, error) {
	p := &Product{Category: &category.Category{}}
	err := sc.Scan(
		&p.ID, &p.SKU, &p.Title, &p.Author, &p.Description,
		&p.Price, &p.SalePrice, &p.CategoryID, &p.Type, &p.Condition,
		&p.Stock, &p.Images, &p.ISBN, &p.Year, &p.Publisher,
		&p.Language, &p.Pages, &p.Weight, &p.Featured, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
		&p.Category.ID, &p.Category.Name, &p.Category.Slug,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func buildListWhere(f ListFilter) (string, []interface{}) {
	where := []string{"p.active = TRUE"}
	args := []interface{}{}

	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		where = append(where, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, string(f.Type))
		where = append(where, fmt.Sprintf("p.type = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.author ILIKE $%d OR p.description ILIKE $%d)", n, n, n))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		where = append(where, fmt.Sprintf("p.price >= $%d", len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		where = append(where, fmt.Sprintf("p.price <= $%d", len(args)))
	}

	return " WHERE " + strings.Join(where, " AND "), args
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]*Product, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)
	start := time.Now()

	where, args := buildListWhere(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM products p JOIN categories c ON c.id = p.category_id` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count products", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %v", ErrFailedListProducts, err)
	}

	orderBy, ok := sortColumns[f.Sort]
	if !ok {
		orderBy = "p.created_at DESC"
	}

	query := selectProduct + where + " ORDER BY " + orderBy + ", p.id" +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %v", ErrFailedListProducts, err)
	}
	defer rows.Close()

	products := make([]*Product, 0, f.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("failed to scan product", zap.Error(err))
			return nil, 0, fmt.Errorf("%w: %v", ErrFailedListProducts, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFailedListProducts, err)
	}

	log.Debug("products listed",
		zap.Int("count", len(products)),
		zap.Int("total", total),
		zap.Duration("duration", time.Since(start)),
	)
	return products, total, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, selectProduct+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get product",
			zap.String("layer", "repository"),
			zap.String("product_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, in CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("sku", in.SKU),
	)

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	language := in.Language
	if language == "" {
		language = "cs"
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (
			sku, title, author, description, price, sale_price,
			category_id, type, condition, stock, images, isbn,
			year, publisher, language, pages, weight, featured, active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`,
		in.SKU, in.Title, in.Author, in.Description, in.Price, in.SalePrice,
		in.CategoryID, string(in.Type), in.Condition, in.Stock, pq.Array(images), in.ISBN,
		in.Year, in.Publisher, language, in.Pages, in.Weight, in.Featured, active,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch string(pqErr.Code) {
			case PgUniqueViolation:
				return nil, ErrSKUExists
			case PgForeignKeyViolation:
				return nil, ErrUnknownCategory
			}
		}
		log.Error("failed to insert product", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedCreateProduct, err)
	}

	log.Info("product created", zap.String("product_id", id.String()))
	return r.GetByID(ctx, id)
}
