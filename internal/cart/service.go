package cart

import (
	"context"
	"errors"

	"spalena53-be/internal/logger"
	"spalena53-be/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxLineAttempts = 2

// ProductLookup is the slice of the catalog the cart needs.
type ProductLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error)
	AddToCart(ctx context.Context, params AddToCartParams) (*Cart, error)
	UpdateQuantity(ctx context.Context, params UpdateQuantityParams) (*Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*Cart, error)
	// ClearCart returns ErrCartEmpty when the user never had a cart.
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     Repository
	products ProductLookup
}

func NewService(repo Repository, products ProductLookup) Service {
	return &service{repo: repo, products: products}
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	c, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return &Cart{UserID: userID, Items: []*Item{}}, nil
	}
	return c, nil
}

func (s *service) activeProduct(ctx context.Context, productID uuid.UUID) (*product.Product, error) {
	p, err := s.products.GetByID(ctx, productID)
	if errors.Is(err, product.ErrProductNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// AddToCart adds quantity of a product, creating the cart and line lazily.
func (s *service) AddToCart(ctx context.Context, params AddToCartParams) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddToCart"),
		zap.String("user_id", params.UserID.String()),
		zap.String("product_id", params.ProductID.String()),
	)

	if params.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	// 1. Product must exist and be sellable
	p, err := s.activeProduct(ctx, params.ProductID)
	if err != nil {
		return nil, err
	}

	// 2. Cart is created on first add
	cartID, err := s.repo.EnsureCart(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	// 3. Concurrent first adds race on UNIQUE(cart_id, product_id); the
	// loser re-reads the line once and increments it instead.
	for attempt := 1; ; attempt++ {
		err = s.writeLine(ctx, cartID, p, params.Quantity)
		if !errors.Is(err, ErrCartItemAlreadyExist) || attempt == maxLineAttempts {
			break
		}
		log.Info("cart line created concurrently, retrying")
	}
	if err != nil {
		if !errors.Is(err, ErrInsufficientStock) {
			log.Error("failed to write cart line", zap.Error(err))
		}
		return nil, err
	}

	return s.GetCart(ctx, params.UserID)
}

// writeLine checks stock against the combined quantity and creates or
// increments the line.
func (s *service) writeLine(ctx context.Context, cartID uuid.UUID, p *product.Product, quantity int) error {
	existing, err := s.repo.GetItem(ctx, cartID, p.ID)
	if err != nil {
		return err
	}
	finalQty := quantity
	if existing != nil {
		finalQty += existing.Quantity
	}

	if p.Stock < finalQty {
		logger.FromCtx(ctx).Info("add to cart rejected",
			zap.String("product_id", p.ID.String()),
			zap.Int("stock", p.Stock),
			zap.Int("requested", finalQty),
		)
		return ErrInsufficientStock
	}

	if existing == nil {
		_, err = s.repo.CreateItem(ctx, cartID, p.ID, quantity)
	} else {
		_, err = s.repo.UpdateItemQuantity(ctx, existing.ID, finalQty)
	}
	return err
}

// UpdateQuantity sets an absolute quantity; zero or less removes the line.
func (s *service) UpdateQuantity(ctx context.Context, params UpdateQuantityParams) (*Cart, error) {
	if params.Quantity <= 0 {
		return s.RemoveItem(ctx, params.UserID, params.ProductID)
	}

	c, err := s.repo.GetByUserID(ctx, params.UserID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartItemNotFound
	}

	existing, err := s.repo.GetItem(ctx, c.ID, params.ProductID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCartItemNotFound
	}

	p, err := s.activeProduct(ctx, params.ProductID)
	if err != nil {
		return nil, err
	}
	if p.Stock < params.Quantity {
		return nil, ErrInsufficientStock
	}

	if _, err := s.repo.UpdateItemQuantity(ctx, existing.ID, params.Quantity); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, params.UserID)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*Cart, error) {
	c, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartItemNotFound
	}

	if err := s.repo.RemoveItem(ctx, c.ID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ClearCart"),
		zap.String("user_id", userID.String()),
	)

	c, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCartEmpty
	}

	n, err := s.repo.Clear(ctx, c.ID)
	if err != nil {
		log.Error("failed to clear cart", zap.Error(err))
		return err
	}
	log.Info("cart cleared", zap.Int64("removed", n))
	return nil
}
