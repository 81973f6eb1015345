package product

import (
	"time"

	"spalena53-be/internal/category"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeBook   Type = "BOOK"
	TypeVinyl  Type = "VINYL"
	TypeCD     Type = "CD"
	TypePoster Type = "POSTER"
	TypeMap    Type = "MAP"
	TypeOther  Type = "OTHER"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeBook, TypeVinyl, TypeCD, TypePoster, TypeMap, TypeOther:
		return true
	}
	return false
}

type Condition string

const (
	ConditionNew         Condition = "NEW"
	ConditionLikeNew     Condition = "LIKE_NEW"
	ConditionGood        Condition = "GOOD"
	ConditionAcceptable  Condition = "ACCEPTABLE"
	ConditionCollectible Condition = "COLLECTIBLE"
)

func (c Condition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionAcceptable, ConditionCollectible:
		return true
	}
	return false
}

type Product struct {
	ID          uuid.UUID           `json:"id"`
	SKU         string              `json:"sku"`
	Title       string              `json:"title"`
	Author      *string             `json:"author"`
	Description *string             `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	SalePrice   decimal.NullDecimal `json:"salePrice"`
	CategoryID  uuid.UUID           `json:"categoryId"`
	Category    *category.Category  `json:"category,omitempty"`
	Type        Type                `json:"type"`
	Condition   *Condition          `json:"condition"`
	Stock       int                 `json:"stock"`
	Images      pq.StringArray      `json:"images"`
	ISBN        *string             `json:"isbn"`
	Year        *int                `json:"year"`
	Publisher   *string             `json:"publisher"`
	Language    string              `json:"language"`
	Pages       *int                `json:"pages"`
	Weight      *int                `json:"weight"`
	Featured    bool                `json:"featured"`
	Active      bool                `json:"active"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// EffectivePrice is the sale price when one is set, the list price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// ListFilter drives the public catalog listing.
type ListFilter struct {
	CategorySlug string
	Type         Type
	Search       string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Page         int
	Limit        int
	Sort         string
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ListResult struct {
	Products   []*Product `json:"products"`
	Pagination Pagination `json:"pagination"`
}

type CreateInput struct {
	SKU         string           `json:"sku"`
	Title       string           `json:"title"`
	Author      *string          `json:"author"`
	Description *string          `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice"`
	CategoryID  uuid.UUID        `json:"categoryId"`
	Type        Type             `json:"type"`
	Condition   *Condition       `json:"condition"`
	Stock       int              `json:"stock"`
	Images      []string         `json:"images"`
	ISBN        *string          `json:"isbn"`
	Year        *int             `json:"year"`
	Publisher   *string          `json:"publisher"`
	Language    string           `json:"language"`
	Pages       *int             `json:"pages"`
	Weight      *int             `json:"weight"`
	Featured    bool             `json:"featured"`
	Active      *bool            `json:"active"`
}
