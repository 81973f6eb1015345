package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"spalena53-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	// GetByOrderID returns nil when the order has no payment yet.
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*Payment, error)
	// UpsertPending records the gateway intent for an order, keeping an
	// existing row and replacing its transaction id.
	UpsertPending(ctx context.Context, p *Payment) error
	// MarkCompleted flips the payment and its order in one transaction.
	MarkCompleted(ctx context.Context, orderID uuid.UUID, metadata json.RawMessage) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	var (
		p    Payment
		meta []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, transaction_id, amount, currency, status, method, metadata, created_at, updated_at
		FROM payments WHERE order_id = $1
	`, orderID).Scan(
		&p.ID, &p.OrderID, &p.TransactionID, &p.Amount, &p.Currency,
		&p.Status, &p.Method, &meta, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		p.Metadata = json.RawMessage(meta)
	}
	return &p, nil
}

func (r *repository) UpsertPending(ctx context.Context, p *Payment) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO payments (order_id, transaction_id, amount, currency, status, method)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (order_id) DO UPDATE
		SET transaction_id = EXCLUDED.transaction_id, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`,
		p.OrderID, p.TransactionID, p.Amount, p.Currency, StatusPending, p.Method,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to upsert payment",
			zap.String("order_id", p.OrderID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrFailedSavePayment, err)
	}
	p.Status = StatusPending
	return nil
}

func (r *repository) MarkCompleted(ctx context.Context, orderID uuid.UUID, metadata json.RawMessage) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Payment"),
		zap.String("method", "MarkCompleted"),
		zap.String("order_id", orderID.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSavePayment, err)
	}
	defer tx.Rollback()

	var meta any
	if len(metadata) > 0 {
		meta = []byte(metadata)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET status = $2, metadata = $3, updated_at = NOW()
		WHERE order_id = $1
	`, orderID, StatusCompleted, meta)
	if err != nil {
		log.Error("payment update failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrFailedSavePayment, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrPaymentNotFound
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = 'COMPLETED', status = 'CONFIRMED', updated_at = NOW()
		WHERE id = $1
	`, orderID)
	if err != nil {
		log.Error("order update failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrFailedSavePayment, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSavePayment, err)
	}
	log.Info("payment completed")
	return nil
}
