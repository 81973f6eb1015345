package address

import (
	"net/mail"
	"strings"
	"time"

	"spalena53-be/internal/transport"

	"github.com/google/uuid"
)

const DefaultCountry = "CZ"

type Address struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"userId"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`

	Phone string `json:"phone"`
	Email string `json:"email"`

	IsDefault bool      `json:"isDefault"`
	IsActive  bool      `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Input is a fresh address as submitted by a client.
type Input struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

type CreateInput struct {
	Input
	SetAsDefault bool `json:"setAsDefault"`
}

type UpdateInput struct {
	AddressID uuid.UUID
	CreateInput
}

// Normalize trims every field and defaults the country.
func (in *Input) Normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Street = strings.TrimSpace(in.Street)
	in.City = strings.TrimSpace(in.City)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.Country = strings.ToUpper(strings.TrimSpace(in.Country))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	if in.Country == "" {
		in.Country = DefaultCountry
	}
}

// Validate records missing or malformed fields into verr, each key prefixed
// with prefix (e.g. "address.").
func (in *Input) Validate(verr *transport.ValidationError, prefix string) {
	required := []struct {
		field string
		value string
	}{
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"street", in.Street},
		{"city", in.City},
		{"postalCode", in.PostalCode},
		{"phone", in.Phone},
		{"email", in.Email},
	}
	for _, r := range required {
		if r.value == "" {
			verr.Add(prefix+r.field, "is required")
		}
	}

	if in.Email != "" && !validEmail(in.Email) {
		verr.Add(prefix+"email", "must be a valid email address")
	}
	if len(in.Country) != 2 {
		verr.Add(prefix+"country", "must be a two letter country code")
	}
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, ".")
}

// NewAddress builds an active address owned by userID from in.
func NewAddress(userID uuid.UUID, in Input, isDefault bool) *Address {
	return &Address{
		ID:         uuid.New(),
		UserID:     userID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Street:     in.Street,
		City:       in.City,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		Phone:      in.Phone,
		Email:      in.Email,
		IsDefault:  isDefault,
		IsActive:   true,
	}
}
