package product

import (
	"context"
	"strings"

	"spalena53-be/internal/logger"
	"spalena53-be/internal/transport"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

var allowedSorts = map[string]bool{"": true, "price": true, "-price": true, "title": true, "createdAt": true}

type Service interface {
	List(ctx context.Context, f ListFilter) (*ListResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, in CreateInput) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func normalizeFilter(f ListFilter) (ListFilter, error) {
	verr := &transport.ValidationError{}

	if f.Page <= 0 {
		f.Page = defaultPage
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	} else if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if !allowedSorts[f.Sort] {
		verr.Add("sort", "must be one of price, -price, title, createdAt")
	}
	if f.Type != "" && !f.Type.IsValid() {
		verr.Add("type", "unknown product type")
	}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		verr.Add("minPrice", "must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MaxPrice.LessThan(*f.MinPrice) {
		verr.Add("maxPrice", "must be greater than or equal to minPrice")
	}

	return f, verr.OrNil()
}

func (s *service) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)

	f, err := normalizeFilter(f)
	if err != nil {
		log.Debug("invalid product filter", zap.Error(err))
		return nil, err
	}

	products, total, err := s.repo.List(ctx, f)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, err
	}

	pages := (total + f.Limit - 1) / f.Limit
	return &ListResult{
		Products: products,
		Pagination: Pagination{
			Page:  f.Page,
			Limit: f.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func validateCreate(in *CreateInput) error {
	verr := &transport.ValidationError{}

	in.SKU = strings.TrimSpace(in.SKU)
	in.Title = strings.TrimSpace(in.Title)

	if in.SKU == "" {
		verr.Add("sku", "is required")
	}
	if in.Title == "" {
		verr.Add("title", "is required")
	}
	if !in.Price.IsPositive() {
		verr.Add("price", "must be greater than 0")
	}
	if in.SalePrice != nil && (!in.SalePrice.IsPositive() || in.SalePrice.GreaterThan(in.Price)) {
		verr.Add("salePrice", "must be positive and not above price")
	}
	if in.Stock < 0 {
		verr.Add("stock", "must not be negative")
	}
	if in.CategoryID == uuid.Nil {
		verr.Add("categoryId", "is required")
	}
	if in.Type == "" {
		in.Type = TypeBook
	} else if !in.Type.IsValid() {
		verr.Add("type", "unknown product type")
	}
	if in.Condition != nil && !in.Condition.IsValid() {
		verr.Add("condition", "unknown condition")
	}
	if in.Weight != nil && *in.Weight <= 0 {
		verr.Add("weight", "must be greater than 0")
	}

	return verr.OrNil()
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	if err := validateCreate(&in); err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, in)
	if err != nil {
		log.Warn("failed to create product", zap.String("sku", in.SKU), zap.Error(err))
		return nil, err
	}
	return p, nil
}
