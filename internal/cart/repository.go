package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spalena53-be/internal/logger"
	"spalena53-be/internal/product"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// GetByUserID returns nil, nil when the user has no cart yet.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error)
	EnsureCart(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)

	GetItem(ctx context.Context, cartID, productID uuid.UUID) (*Item, error)
	CreateItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*Item, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*Item, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetByUserID"),
		zap.String("user_id", userID.String()),
	)

	c := &Cart{Items: []*Item{}}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&c.ID, &c.UserID, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to load cart", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedGetCart, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			ci.id, ci.cart_id, ci.product_id, ci.quantity,
			p.sku, p.title, p.author, p.price, p.sale_price,
			p.stock, p.images, p.weight, p.type, p.active
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at ASC, ci.id
	`, c.ID)
	if err != nil {
		log.Error("failed to load cart items", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedGetCart, err)
	}
	defer rows.Close()

	for rows.Next() {
		it := &Item{Product: &product.Product{}}
		p := it.Product
		if err := rows.Scan(
			&it.ID, &it.CartID, &it.ProductID, &it.Quantity,
			&p.SKU, &p.Title, &p.Author, &p.Price, &p.SalePrice,
			&p.Stock, &p.Images, &p.Weight, &p.Type, &p.Active,
		); err != nil {
			log.Error("failed to scan cart item", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrFailedGetCart, err)
		}
		p.ID = it.ProductID
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedGetCart, err)
	}

	return c, nil
}

func (r *repository) EnsureCart(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO carts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`, userID).Scan(&id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to ensure cart",
			zap.String("layer", "repository"),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) GetItem(ctx context.Context, cartID, productID uuid.UUID) (*Item, error) {
	it := &Item{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, cart_id, product_id, quantity
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *repository) CreateItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateItem"),
		zap.String("cart_id", cartID.String()),
		zap.String("product_id", productID.String()),
	)

	log.Debug("start create cart item")

	it := &Item{}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, cart_id, product_id, quantity
	`, cartID, productID, quantity).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
			return nil, ErrCartItemAlreadyExist
		}
		log.Error("failed to create cart item", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedCreateCartItem, err)
	}

	log.Info("success create cart item", zap.String("cart_item_id", it.ID.String()))
	return it, nil
}

func (r *repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*Item, error) {
	it := &Item{}
	err := r.db.QueryRowContext(ctx, `
		UPDATE cart_items
		SET quantity = $1
		WHERE id = $2
		RETURNING id, cart_id, product_id, quantity
	`, quantity, itemID).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedUpdateCart, err)
	}
	return it, nil
}

func (r *repository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedRemoveCart, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, cartID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFailedClearCart, err)
	}
	return res.RowsAffected()
}
