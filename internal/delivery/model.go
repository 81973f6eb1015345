package delivery

import (
	"time"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodPersonalPickup Method = "PERSONAL_PICKUP"
	MethodCzechPost      Method = "CZECH_POST"
	MethodZasilkovna     Method = "ZASILKOVNA"
	MethodPPL            Method = "PPL"
	MethodDPD            Method = "DPD"
)

func (m Method) IsValid() bool {
	_, ok := methodByID[m]
	return ok
}

// UsesPickupPoint reports whether the parcel goes to a carrier pickup point.
func (m Method) UsesPickupPoint() bool {
	return m == MethodZasilkovna || m == MethodPPL || m == MethodDPD
}

type MethodInfo struct {
	ID            Method          `json:"id"`
	Name          string          `json:"name"`
	Provider      string          `json:"provider"`
	Price         decimal.Decimal `json:"price"`
	EstimatedDays int             `json:"estimatedDays"`
	Description   string          `json:"description"`
	Icon          string          `json:"icon"`
}

type Point struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
	OpeningHours string `json:"openingHours"`
}

// Recipient is the shipping address handed to the carrier.
type Recipient struct {
	Name       string
	Street     string
	City       string
	PostalCode string
	Country    string
	Phone      string
	Email      string
	PointID    *string
}

type Shipment struct {
	TrackingNumber string  `json:"trackingNumber"`
	LabelURL       string  `json:"label"`
	PickupCode     *string `json:"pickupCode,omitempty"`
}

type TrackingEvent struct {
	Date     time.Time `json:"date"`
	Status   string    `json:"status"`
	Location string    `json:"location"`
}

type Tracking struct {
	TrackingNumber    string          `json:"trackingNumber"`
	Status            string          `json:"status"`
	Location          string          `json:"location"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	Events            []TrackingEvent `json:"events"`
}
