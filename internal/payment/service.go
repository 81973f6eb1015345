package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"spalena53-be/internal/events"
	"spalena53-be/internal/logger"
	"spalena53-be/internal/order"
	"spalena53-be/internal/transport"
	"spalena53-be/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var minorUnits = decimal.NewFromInt(100)

// OrderLookup loads orders regardless of owner; ownership is checked here.
type OrderLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

type Service interface {
	CreateIntent(ctx context.Context, userID, orderID uuid.UUID) (*IntentResult, error)
	Confirm(ctx context.Context, intentID string) (*order.Order, error)
}

type service struct {
	repo      Repository
	orders    OrderLookup
	gateway   Gateway
	publisher events.Publisher
}

func NewService(repo Repository, orders OrderLookup, gateway Gateway, publisher events.Publisher) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &service{repo: repo, orders: orders, gateway: gateway, publisher: publisher}
}

func (s *service) ownedOrder(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, order.ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) CreateIntent(ctx context.Context, userID, orderID uuid.UUID) (*IntentResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Payment"),
		zap.String("method", "CreateIntent"),
		zap.String("order_id", orderID.String()),
	)

	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	o, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus == order.PaymentCompleted {
		return nil, ErrAlreadyPaid
	}

	existing, err := s.repo.GetByOrderID(ctx, o.ID)
	if err != nil {
		log.Error("failed to load payment", zap.Error(err))
		return nil, err
	}

	var intent *Intent
	if existing != nil && existing.TransactionID != nil {
		intent, err = s.gateway.RetrieveIntent(ctx, *existing.TransactionID)
		if err != nil {
			return nil, err
		}
	} else {
		intent, err = s.gateway.CreateIntent(ctx, CreateIntentParams{
			Amount:       o.Total.Mul(minorUnits).Round(0).IntPart(),
			Currency:     CurrencyCZK,
			Description:  fmt.Sprintf("Order %s - Spálená 53 Bookstore", o.OrderNumber),
			ReceiptEmail: utils.GetUserEmailFromContext(ctx),
			Metadata: map[string]string{
				"orderId":     o.ID.String(),
				"orderNumber": o.OrderNumber,
				"userId":      o.UserID.String(),
			},
		})
		if err != nil {
			return nil, err
		}

		if err := s.repo.UpsertPending(ctx, &Payment{
			OrderID:       o.ID,
			TransactionID: &intent.ID,
			Amount:        o.Total,
			Currency:      CurrencyCZK,
			Method:        string(o.PaymentMethod),
		}); err != nil {
			return nil, err
		}
		log.Info("payment intent created", zap.String("intent_id", intent.ID))
	}

	return &IntentResult{
		ClientSecret: intent.ClientSecret,
		Amount:       o.Total,
		OrderNumber:  o.OrderNumber,
	}, nil
}

func (s *service) Confirm(ctx context.Context, intentID string) (*order.Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Payment"),
		zap.String("method", "Confirm"),
		zap.String("intent_id", intentID),
	)

	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		verr := &transport.ValidationError{}
		verr.Add("paymentIntentId", "is required")
		return nil, verr
	}

	intent, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != IntentSucceeded {
		log.Info("payment intent not settled", zap.String("status", intent.Status))
		return nil, ErrPaymentNotSuccessful
	}

	orderID, err := uuid.Parse(intent.Metadata["orderId"])
	if err != nil {
		log.Warn("intent without order reference")
		return nil, ErrOrderNotFound
	}

	if err := s.repo.MarkCompleted(ctx, orderID, intent.Raw); err != nil {
		return nil, err
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	err = s.publisher.Publish(ctx, events.EventOrderPaid, o.ID.String(), events.OrderPaidPayload{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		TransactionID: intent.ID,
		Amount:        o.Total,
		Currency:      CurrencyCZK,
	})
	if err != nil {
		log.Warn("publish order paid failed", zap.Error(err))
	}

	return o, nil
}
