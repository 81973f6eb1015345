package cart

import (
	"time"

	"spalena53-be/internal/product"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Items     []*Item   `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Item struct {
	ID        uuid.UUID        `json:"id"`
	CartID    uuid.UUID        `json:"cartId"`
	ProductID uuid.UUID        `json:"productId"`
	Quantity  int              `json:"quantity"`
	Product   *product.Product `json:"product,omitempty"`
}

// Subtotal sums effective prices of lines whose product is loaded.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		if it.Product == nil {
			continue
		}
		total = total.Add(it.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

type AddToCartParams struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

type UpdateQuantityParams struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}
