package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"spalena53-be/internal/address"
	"spalena53-be/internal/delivery"
	"spalena53-be/internal/events"
	"spalena53-be/internal/logger"
	"spalena53-be/internal/metrics"
	"spalena53-be/internal/transport"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultTxTimeout = 10 * time.Second
	maxPlaceAttempts = 3
	maxNotesLength   = 1000
)

// Metric names recorded by the service.
const (
	MetricOrdersPlaced      = "orders_placed"
	MetricOrdersFailed      = "orders_failed"
	MetricNumberConflicts   = "order_number_conflicts"
	MetricShipmentsPending  = "shipments_pending"
	MetricEventsFailed      = "order_events_failed"
	MetricPlacementDuration = "order_placement"
)

type Pricer interface {
	Price(weightGrams int, method delivery.Method) decimal.Decimal
}

type Shipper interface {
	CreateShipment(ctx context.Context, orderID uuid.UUID, method delivery.Method, to delivery.Recipient) (*delivery.Shipment, error)
}

type Options struct {
	TxTimeout time.Duration
	Publisher events.Publisher
	Metrics   *metrics.Registry
	Now       func() time.Time
}

type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*PlaceOrderResult, error)
	List(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, userID, orderID uuid.UUID, upd StatusUpdate) (*Order, error)

	// RegisterShipment books the parcel for a committed order and stores
	// the tracking number.
	RegisterShipment(ctx context.Context, o *Order) (*delivery.Shipment, error)
}

type service struct {
	repo      Repository
	pricer    Pricer
	shipper   Shipper
	publisher events.Publisher
	metrics   *metrics.Registry
	txTimeout time.Duration
	now       func() time.Time
}

func NewService(repo Repository, pricer Pricer, shipper Shipper, opts Options) Service {
	s := &service{
		repo:      repo,
		pricer:    pricer,
		shipper:   shipper,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		txTimeout: opts.TxTimeout,
		now:       opts.Now,
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRegistry()
	}
	if s.txTimeout <= 0 {
		s.txTimeout = DefaultTxTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func validatePlaceInput(in *PlaceOrderInput) error {
	verr := &transport.ValidationError{}

	if !in.DeliveryMethod.IsValid() {
		verr.Add("deliveryMethod", "must be one of PERSONAL_PICKUP, CZECH_POST, ZASILKOVNA, PPL, DPD")
	}
	if !in.PaymentMethod.IsValid() {
		verr.Add("paymentMethod", "must be one of CARD, BANK_TRANSFER, CASH_ON_DELIVERY, PAYPAL")
	}

	if in.DeliveryPointID != nil {
		id := strings.TrimSpace(*in.DeliveryPointID)
		if id == "" || !in.DeliveryMethod.UsesPickupPoint() {
			in.DeliveryPointID = nil
		} else {
			in.DeliveryPointID = &id
		}
	}

	if in.Notes != nil {
		notes := strings.TrimSpace(*in.Notes)
		switch {
		case notes == "":
			in.Notes = nil
		case utf8.RuneCountInString(notes) > maxNotesLength:
			verr.Add("notes", "must be at most 1000 characters")
		default:
			in.Notes = &notes
		}
	}

	if in.Address != nil && !in.usesExistingAddress() {
		in.Address.Normalize()
		in.Address.Validate(verr, "address.")
	}

	return verr.OrNil()
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*PlaceOrderResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.String("user_id", userID.String()),
	)

	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if err := validatePlaceInput(&in); err != nil {
		return nil, err
	}

	timer := metrics.StartTimer()

	var (
		o   *Order
		err error
	)
	for attempt := 1; attempt <= maxPlaceAttempts; attempt++ {
		o, err = s.placeOnce(ctx, userID, in)
		if !errors.Is(err, ErrOrderNumberConflict) {
			break
		}
		s.metrics.Counter(MetricNumberConflicts).Inc()
		log.Warn("order number conflict", zap.Int("attempt", attempt), zap.Error(err))
	}
	if err != nil {
		s.metrics.Counter(MetricOrdersFailed).Inc()
		log.Info("order placement failed", zap.Error(err))
		return nil, err
	}

	s.metrics.Counter(MetricOrdersPlaced).Inc()
	s.metrics.Histogram(MetricPlacementDuration).Observe(timer.Duration())
	log.Info("order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.Total.StringFixed(2)),
	)

	s.publishPlaced(ctx, o)

	res := &PlaceOrderResult{Order: o, Shipment: ShipmentPending}

	shipment, err := s.RegisterShipment(ctx, o)
	if err != nil {
		s.metrics.Counter(MetricShipmentsPending).Inc()
		log.Warn("shipment registration deferred",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
	} else {
		res.Shipment = ShipmentRegistered
		res.TrackingNumber = &shipment.TrackingNumber
		res.PickupCode = shipment.PickupCode
	}
	return res, nil
}

// placeOnce runs one bounded transaction attempt.
func (s *service) placeOnce(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var placed *Order
	err := s.repo.WithTx(txCtx, func(tx TxStore) error {
		o, err := s.placeInTx(txCtx, tx, userID, in)
		if err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		if errors.Is(txCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrPlacementTimeout, err)
		}
		return nil, err
	}
	return placed, nil
}

func (s *service) placeInTx(ctx context.Context, tx TxStore, userID uuid.UUID, in PlaceOrderInput) (*Order, error) {
	// 1. Lock cart lines and their products
	lines, err := tx.LockCartLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	// 2-3. Parcel weight drives shipping
	weight := 0
	for _, l := range lines {
		weight += l.WeightGrams()
	}
	shipping := s.pricer.Price(weight, in.DeliveryMethod)

	// 4. Delivery address
	addr, err := s.resolveAddress(ctx, tx, userID, in)
	if err != nil {
		return nil, err
	}

	// 5. Stock, first violation wins
	for _, l := range lines {
		if l.Stock < l.Quantity {
			return nil, &InsufficientStockError{ProductID: l.ProductID, ProductName: l.ProductName}
		}
	}

	// 6. Totals with prices frozen per item
	orderID := uuid.New()
	subtotal := decimal.Zero
	items := make([]*Item, 0, len(lines))
	for _, l := range lines {
		price := l.EffectivePrice()
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		items = append(items, &Item{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     price,
		})
	}

	// 7. Order number
	number, err := tx.NextOrderNumber(ctx, s.now())
	if err != nil {
		return nil, err
	}

	// 8. Persist, reserve stock, empty the cart
	o := &Order{
		ID:              orderID,
		OrderNumber:     number,
		UserID:          userID,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   in.PaymentMethod,
		DeliveryMethod:  in.DeliveryMethod,
		DeliveryPointID: in.DeliveryPointID,
		AddressID:       addr.ID,
		Address:         addr,
		Subtotal:        subtotal,
		DeliveryPrice:   shipping,
		Total:           subtotal.Add(shipping),
		Notes:           in.Notes,
		Items:           items,
	}
	if err := tx.InsertOrder(ctx, o); err != nil {
		return nil, err
	}
	if err := tx.InsertItems(ctx, items); err != nil {
		return nil, err
	}

	for _, l := range lines {
		ok, err := tx.DecrementStock(ctx, l.ProductID, l.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &InsufficientStockError{ProductID: l.ProductID, ProductName: l.ProductName}
		}
	}

	if err := tx.ClearCart(ctx, userID); err != nil {
		return nil, err
	}
	return o, nil
}

// resolveAddress picks an owned address, a fresh one, or the default.
func (s *service) resolveAddress(ctx context.Context, tx TxStore, userID uuid.UUID, in PlaceOrderInput) (*address.Address, error) {
	if in.usesExistingAddress() {
		a, err := tx.GetAddress(ctx, userID, *in.AddressID)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, ErrNoAddressAvailable
		}
		return a, nil
	}

	def, err := tx.GetDefaultAddress(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Address != nil {
		a := address.NewAddress(userID, *in.Address, def == nil)
		if err := tx.CreateAddress(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	}

	if def == nil {
		return nil, ErrNoAddressAvailable
	}
	return def, nil
}

func recipient(o *Order) delivery.Recipient {
	a := o.Address
	if a == nil {
		a = &address.Address{}
	}
	return delivery.Recipient{
		Name:       a.FullName(),
		Street:     a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
		Email:      a.Email,
		PointID:    o.DeliveryPointID,
	}
}

func (s *service) RegisterShipment(ctx context.Context, o *Order) (*delivery.Shipment, error) {
	shipment, err := s.shipper.CreateShipment(ctx, o.ID, o.DeliveryMethod, recipient(o))
	if err != nil {
		return nil, fmt.Errorf("create shipment: %w", err)
	}

	stored, err := s.repo.UpdateShipment(ctx, o.ID, shipment.TrackingNumber, shipment.PickupCode)
	if err != nil {
		return nil, err
	}
	if !stored {
		return s.storedShipment(ctx, o)
	}
	o.TrackingNumber = &shipment.TrackingNumber
	o.PickupCode = shipment.PickupCode

	err = s.publisher.Publish(ctx, events.EventShipmentRegistered, o.ID.String(), events.ShipmentRegisteredPayload{
		OrderID:        o.ID,
		TrackingNumber: shipment.TrackingNumber,
		PickupCode:     shipment.PickupCode,
	})
	if err != nil {
		s.metrics.Counter(MetricEventsFailed).Inc()
		logger.FromCtx(ctx).Warn("publish shipment event failed",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
	}
	return shipment, nil
}

// storedShipment adopts the tracking number another registration already
// wrote. No event is published for it.
func (s *service) storedShipment(ctx context.Context, o *Order) (*delivery.Shipment, error) {
	current, err := s.repo.GetByID(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if current.TrackingNumber == nil {
		return nil, fmt.Errorf("%w: shipment not stored", ErrFailedUpdateOrder)
	}

	logger.FromCtx(ctx).Info("shipment already registered",
		zap.String("order_id", o.ID.String()),
		zap.String("tracking_number", *current.TrackingNumber),
	)
	o.TrackingNumber = current.TrackingNumber
	o.PickupCode = current.PickupCode
	return &delivery.Shipment{
		TrackingNumber: *current.TrackingNumber,
		PickupCode:     current.PickupCode,
	}, nil
}

func (s *service) publishPlaced(ctx context.Context, o *Order) {
	items := make([]events.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, events.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
		})
	}

	err := s.publisher.Publish(ctx, events.EventOrderPlaced, o.ID.String(), events.OrderPlacedPayload{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		DeliveryMethod: string(o.DeliveryMethod),
		PaymentMethod:  string(o.PaymentMethod),
		Subtotal:       o.Subtotal,
		DeliveryPrice:  o.DeliveryPrice,
		Total:          o.Total,
		Items:          items,
	})
	if err != nil {
		s.metrics.Counter(MetricEventsFailed).Inc()
		logger.FromCtx(ctx).Warn("publish order event failed",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func validateStatusUpdate(upd StatusUpdate) error {
	verr := &transport.ValidationError{}
	if upd.Status == nil && upd.PaymentStatus == nil {
		verr.Add("status", "status or paymentStatus required")
	}
	if upd.Status != nil && !upd.Status.IsValid() {
		verr.Add("status", "invalid order status")
	}
	if upd.PaymentStatus != nil && !upd.PaymentStatus.IsValid() {
		verr.Add("paymentStatus", "invalid payment status")
	}
	return verr.OrNil()
}

func (s *service) UpdateStatus(ctx context.Context, userID, orderID uuid.UUID, upd StatusUpdate) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", orderID.String()),
	)

	if err := validateStatusUpdate(upd); err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, userID, orderID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, orderID, upd); err != nil {
		log.Error("update status failed", zap.Error(err))
		return nil, err
	}

	return s.repo.GetByID(ctx, orderID)
}
