package order

import (
	"time"

	"spalena53-be/internal/address"
	"spalena53-be/internal/delivery"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentCompleted  PaymentStatus = "COMPLETED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "CARD"
	PaymentBankTransfer   PaymentMethod = "BANK_TRANSFER"
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentPayPal         PaymentMethod = "PAYPAL"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCard, PaymentBankTransfer, PaymentCashOnDelivery, PaymentPayPal:
		return true
	}
	return false
}

// ShipmentState tells whether the carrier accepted the parcel at placement.
type ShipmentState string

const (
	ShipmentRegistered ShipmentState = "REGISTERED"
	ShipmentPending    ShipmentState = "PENDING"
)

type Order struct {
	ID              uuid.UUID        `json:"id"`
	OrderNumber     string           `json:"orderNumber"`
	UserID          uuid.UUID        `json:"userId"`
	Status          Status           `json:"status"`
	PaymentStatus   PaymentStatus    `json:"paymentStatus"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod"`
	DeliveryMethod  delivery.Method  `json:"deliveryMethod"`
	DeliveryPointID *string          `json:"deliveryPointId"`
	AddressID       uuid.UUID        `json:"addressId"`
	Address         *address.Address `json:"address,omitempty"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	DeliveryPrice   decimal.Decimal  `json:"deliveryPrice"`
	Total           decimal.Decimal  `json:"total"`
	Notes           *string          `json:"notes"`
	TrackingNumber  *string          `json:"trackingNumber"`
	PickupCode      *string          `json:"pickupCode"`
	Items           []*Item          `json:"items"`
	Payment         *PaymentSummary  `json:"payment"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type Item struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"orderId"`
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   *ItemProduct    `json:"product,omitempty"`
}

// ItemProduct is the catalog view embedded in order history.
type ItemProduct struct {
	SKU    string   `json:"sku"`
	Title  string   `json:"title"`
	Author *string  `json:"author"`
	Images []string `json:"images"`
}

type PaymentSummary struct {
	ID            uuid.UUID       `json:"id"`
	Status        PaymentStatus   `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	TransactionID *string         `json:"transactionId"`
}

// CartLine is a locked cart row joined to its product.
type CartLine struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	Stock       int
	Price       decimal.Decimal
	SalePrice   decimal.NullDecimal
	Weight      *int
}

func (l CartLine) EffectivePrice() decimal.Decimal {
	if l.SalePrice.Valid {
		return l.SalePrice.Decimal
	}
	return l.Price
}

// WeightGrams treats a missing or non-positive product weight as unrecorded.
func (l CartLine) WeightGrams() int {
	if l.Weight == nil || *l.Weight <= 0 {
		return delivery.DefaultItemWeight * l.Quantity
	}
	return *l.Weight * l.Quantity
}

type PlaceOrderInput struct {
	DeliveryMethod     delivery.Method `json:"deliveryMethod"`
	DeliveryPointID    *string         `json:"deliveryPointId"`
	Address            *address.Input  `json:"address"`
	UseExistingAddress bool            `json:"useExistingAddress"`
	AddressID          *uuid.UUID      `json:"addressId"`
	PaymentMethod      PaymentMethod   `json:"paymentMethod"`
	Notes              *string         `json:"notes"`
}

// usesExistingAddress reports whether a saved address is referenced. A bare
// addressId counts unless a fresh address payload is also sent.
func (in PlaceOrderInput) usesExistingAddress() bool {
	return in.AddressID != nil && (in.UseExistingAddress || in.Address == nil)
}

type PlaceOrderResult struct {
	Order          *Order
	TrackingNumber *string
	PickupCode     *string
	Shipment       ShipmentState
}

type StatusUpdate struct {
	Status        *Status        `json:"status"`
	PaymentStatus *PaymentStatus `json:"paymentStatus"`
}
