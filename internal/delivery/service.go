package delivery

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
	"time"

	"spalena53-be/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultItemWeight is used for products without a recorded weight (grams).
	DefaultItemWeight = 200

	heavyParcelThreshold = 2000
	labelBaseURL         = "https://mock-labels.com/"
	pickupCodeAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	pickupCodeLength     = 6
)

var heavyParcelSurcharge = decimal.NewFromInt(30)

var methods = []MethodInfo{
	{
		ID:            MethodPersonalPickup,
		Name:          "Osobní odběr",
		Provider:      "Spálená 53",
		Price:         decimal.Zero,
		EstimatedDays: 0,
		Description:   "Vyzvedněte si objednávku přímo v našem knihkupectví",
		Icon:          "🏪",
	},
	{
		ID:            MethodCzechPost,
		Name:          "Česká pošta - Balík do ruky",
		Provider:      "Česká pošta",
		Price:         decimal.NewFromInt(89),
		EstimatedDays: 2,
		Description:   "Doručení na vaši adresu",
		Icon:          "📮",
	},
	{
		ID:            MethodZasilkovna,
		Name:          "Zásilkovna - výdejní místo",
		Provider:      "Zásilkovna",
		Price:         decimal.NewFromInt(69),
		EstimatedDays: 1,
		Description:   "Vyzvednutí na výdejním místě Zásilkovny",
		Icon:          "📦",
	},
	{
		ID:            MethodPPL,
		Name:          "PPL - ParcelShop",
		Provider:      "PPL",
		Price:         decimal.NewFromInt(79),
		EstimatedDays: 1,
		Description:   "Vyzvednutí na výdejním místě PPL",
		Icon:          "🚚",
	},
	{
		ID:            MethodDPD,
		Name:          "DPD - Pickup Point",
		Provider:      "DPD",
		Price:         decimal.NewFromInt(85),
		EstimatedDays: 2,
		Description:   "Vyzvednutí na výdejním místě DPD",
		Icon:          "📬",
	},
}

var methodByID = func() map[Method]MethodInfo {
	m := make(map[Method]MethodInfo, len(methods))
	for _, info := range methods {
		m[info.ID] = info
	}
	return m
}()

var points = map[Method][]Point{
	MethodZasilkovna: {
		{ID: "Z-1234", Name: "Zásilkovna - Tesco Národní", Address: "Národní 26", City: "Praha 1", PostalCode: "11000", OpeningHours: "Po-Pá: 8:00-20:00, So: 9:00-18:00"},
		{ID: "Z-1235", Name: "Zásilkovna - Albert Anděl", Address: "Nádražní 23", City: "Praha 5", PostalCode: "15000", OpeningHours: "Po-Ne: 7:00-22:00"},
		{ID: "Z-1236", Name: "Zásilkovna - Billa Václavské náměstí", Address: "Václavské náměstí 12", City: "Praha 1", PostalCode: "11000", OpeningHours: "Po-Pá: 7:00-21:00, So-Ne: 8:00-20:00"},
	},
	MethodPPL: {
		{ID: "PPL-001", Name: "PPL ParcelShop - Hlavní nádraží", Address: "Wilsonova 300/8", City: "Praha 2", PostalCode: "12000", OpeningHours: "Po-Pá: 6:00-22:00, So-Ne: 7:00-22:00"},
		{ID: "PPL-002", Name: "PPL ParcelShop - Palladium", Address: "Náměstí Republiky 1", City: "Praha 1", PostalCode: "11000", OpeningHours: "Po-Ne: 9:00-22:00"},
	},
}

var trackingPattern = regexp.MustCompile(`^(CP\d+CZ|Z\d+|PPL\d+|DPD\d+|ORD\d+)$`)

// Service is the mock carrier integration: static methods and pickup points,
// locally generated tracking numbers.
type Service struct {
	now  func() time.Time
	rand io.Reader
}

func NewService() *Service {
	return &Service{now: time.Now, rand: rand.Reader}
}

func (s *Service) Methods() []MethodInfo {
	out := make([]MethodInfo, len(methods))
	copy(out, methods)
	return out
}

// Price returns the shipping cost for a parcel of weightGrams. Unknown
// methods cost nothing; callers validate the method beforehand.
func (s *Service) Price(weightGrams int, method Method) decimal.Decimal {
	info, ok := methodByID[method]
	if !ok {
		return decimal.Zero
	}

	price := info.Price
	if weightGrams > heavyParcelThreshold && method != MethodPersonalPickup {
		price = price.Add(heavyParcelSurcharge)
	}
	return price
}

// Points lists pickup points for provider. Only Zásilkovna and PPL expose a
// point directory; city and postal code are accepted for interface parity
// with the carrier APIs.
func (s *Service) Points(_ context.Context, provider Method, city, postalCode string) ([]Point, error) {
	list, ok := points[provider]
	if !ok {
		return nil, ErrInvalidProvider
	}
	out := make([]Point, len(list))
	copy(out, list)
	return out, nil
}

// FindPoint reports whether id is a known pickup point of provider.
func (s *Service) FindPoint(provider Method, id string) (Point, bool) {
	for _, p := range points[provider] {
		if p.ID == id {
			return p, true
		}
	}
	return Point{}, false
}

// CreateShipment registers a parcel and returns its tracking number.
func (s *Service) CreateShipment(ctx context.Context, orderID uuid.UUID, method Method, to Recipient) (*Shipment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateShipment"),
		zap.String("order_id", orderID.String()),
		zap.String("delivery_method", string(method)),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ms := s.now().UnixMilli()
	shipment := &Shipment{}

	switch method {
	case MethodCzechPost:
		shipment.TrackingNumber = fmt.Sprintf("CP%dCZ", ms)
	case MethodZasilkovna:
		shipment.TrackingNumber = fmt.Sprintf("Z%d", ms)
		code, err := s.pickupCode()
		if err != nil {
			log.Error("failed to generate pickup code", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrPickupCodeFailure, err)
		}
		shipment.PickupCode = &code
	case MethodPPL:
		shipment.TrackingNumber = fmt.Sprintf("PPL%d", ms)
	case MethodDPD:
		shipment.TrackingNumber = fmt.Sprintf("DPD%d", ms)
	default:
		shipment.TrackingNumber = fmt.Sprintf("ORD%d", ms)
	}
	shipment.LabelURL = labelBaseURL + shipment.TrackingNumber + ".pdf"

	log.Info("shipment registered", zap.String("tracking_number", shipment.TrackingNumber))
	return shipment, nil
}

func (s *Service) pickupCode() (string, error) {
	buf := make([]byte, pickupCodeLength)
	if _, err := io.ReadFull(s.rand, buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = pickupCodeAlphabet[int(b)%len(pickupCodeAlphabet)]
	}
	return string(buf), nil
}

// Track returns the (simulated) carrier status of a parcel.
func (s *Service) Track(_ context.Context, trackingNumber string) (*Tracking, error) {
	if !trackingPattern.MatchString(trackingNumber) {
		return nil, ErrTrackingNotFound
	}

	now := s.now()
	return &Tracking{
		TrackingNumber:    trackingNumber,
		Status:            "in_transit",
		Location:          "Praha - depo",
		EstimatedDelivery: now.Add(48 * time.Hour),
		Events: []TrackingEvent{
			{Date: now.Add(-24 * time.Hour), Status: "picked_up", Location: "Praha 1 - Spálená"},
			{Date: now, Status: "in_transit", Location: "Praha - depo"},
		},
	}, nil
}
