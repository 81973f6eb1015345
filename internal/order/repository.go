package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spalena53-be/internal/address"
	"spalena53-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TxStore is the set of writes order placement performs inside one
// database transaction.
type TxStore interface {
	LockCartLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error)

	// GetAddress returns nil when the address is missing, retired or owned
	// by someone else.
	GetAddress(ctx context.Context, userID, addressID uuid.UUID) (*address.Address, error)
	GetDefaultAddress(ctx context.Context, userID uuid.UUID) (*address.Address, error)
	CreateAddress(ctx context.Context, addr *address.Address) error

	NextOrderNumber(ctx context.Context, now time.Time) (string, error)
	InsertOrder(ctx context.Context, o *Order) error
	InsertItems(ctx context.Context, items []*Item) error

	// DecrementStock reports false when stock dropped below qty.
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type Repository interface {
	// WithTx commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx TxStore) error) error

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, upd StatusUpdate) error
	// UpdateShipment reports false when the order already had a tracking
	// number and nothing was written.
	UpdateShipment(ctx context.Context, id uuid.UUID, trackingNumber string, pickupCode *string) (bool, error)
	ListPendingShipment(ctx context.Context, createdBefore time.Time, limit int) ([]*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(tx TxStore) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrFailedPlaceOrder, err)
	}
	defer tx.Rollback()

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrFailedPlaceOrder, err)
	}
	return nil
}

type txStore struct {
	tx *sql.Tx
}

func (s *txStore) LockCartLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	rows, err := s.tx.QueryContext(ctx, `
		SELECT p.id, p.title, ci.quantity, p.stock, p.price, p.sale_price, p.weight
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN products p ON p.id = ci.product_id
		WHERE c.user_id = $1
		ORDER BY p.id
		FOR UPDATE OF ci, p
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("lock cart lines: %w", err)
	}
	defer rows.Close()

	var lines []CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(
			&l.ProductID, &l.ProductName, &l.Quantity, &l.Stock,
			&l.Price, &l.SalePrice, &l.Weight,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *txStore) GetAddress(ctx context.Context, userID, addressID uuid.UUID) (*address.Address, error) {
	a, err := address.ScanAddress(s.tx.QueryRowContext(ctx, `
		SELECT `+address.Columns+`
		FROM addresses
		WHERE id = $1 AND user_id = $2 AND is_active = true
	`, addressID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (s *txStore) GetDefaultAddress(ctx context.Context, userID uuid.UUID) (*address.Address, error) {
	a, err := address.ScanAddress(s.tx.QueryRowContext(ctx, `
		SELECT `+address.Columns+`
		FROM addresses
		WHERE user_id = $1 AND is_default = true AND is_active = true
		LIMIT 1
	`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (s *txStore) CreateAddress(ctx context.Context, addr *address.Address) error {
	if err := address.InsertTx(ctx, s.tx, addr); err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

func (s *txStore) NextOrderNumber(ctx context.Context, now time.Time) (string, error) {
	var seq int64
	if err := s.tx.QueryRowContext(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	return FormatOrderNumber(now, seq), nil
}

func (s *txStore) InsertOrder(ctx context.Context, o *Order) error {
	err := s.tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, order_number, user_id,
			status, payment_status, payment_method,
			delivery_method, delivery_point_id, address_id,
			subtotal, delivery_price, total, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at
	`,
		o.ID, o.OrderNumber, o.UserID,
		o.Status, o.PaymentStatus, o.PaymentMethod,
		o.DeliveryMethod, o.DeliveryPointID, o.AddressID,
		o.Subtotal, o.DeliveryPrice, o.Total, o.Notes,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation &&
			pqErr.Constraint == orderNumberConstraint {
			return fmt.Errorf("%w: %s", ErrOrderNumberConflict, o.OrderNumber)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *txStore) InsertItems(ctx context.Context, items []*Item) error {
	for _, it := range items {
		_, err := s.tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (s *txStore) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res, err := s.tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`, qty, productID)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *txStore) ClearCart(ctx context.Context, userID uuid.UUID) error {
	_, err := s.tx.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id = (SELECT id FROM carts WHERE user_id = $1)
	`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

const selectOrder = `
	SELECT
		o.id, o.order_number, o.user_id,
		o.status, o.payment_status, o.payment_method,
		o.delivery_method, o.delivery_point_id, o.address_id,
		o.subtotal, o.delivery_price, o.total, o.notes,
		o.delivery_tracking_number, o.pickup_code,
		o.created_at, o.updated_at,
		a.first_name, a.last_name, a.street, a.city,
		a.postal_code, a.country, a.phone, a.email,
		pay.id, pay.status, pay.amount, pay.currency, pay.transaction_id
	FROM orders o
	JOIN addresses a ON a.id = o.address_id
	LEFT JOIN payments pay ON pay.order_id = o.id
`

func scanOrder(sc interface{ Scan(...any) error }) (*Order, error) {
	o := &Order{Items: []*Item{}}
	a := &address.Address{}

	var (
		payID     uuid.NullUUID
		payStatus sql.NullString
		payAmount decimal.NullDecimal
		payCurr   sql.NullString
		payTxn    sql.NullString
	)

	err := sc.Scan(
		&o.ID, &o.OrderNumber, &o.UserID,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.DeliveryMethod, &o.DeliveryPointID, &o.AddressID,
		&o.Subtotal, &o.DeliveryPrice, &o.Total, &o.Notes,
		&o.TrackingNumber, &o.PickupCode,
		&o.CreatedAt, &o.UpdatedAt,
		&a.FirstName, &a.LastName, &a.Street, &a.City,
		&a.PostalCode, &a.Country, &a.Phone, &a.Email,
		&payID, &payStatus, &payAmount, &payCurr, &payTxn,
	)
	if err != nil {
		return nil, err
	}

	a.ID = o.AddressID
	a.UserID = o.UserID
	o.Address = a

	if payID.Valid {
		o.Payment = &PaymentSummary{
			ID:       payID.UUID,
			Status:   PaymentStatus(payStatus.String),
			Amount:   payAmount.Decimal,
			Currency: payCurr.String,
		}
		if payTxn.Valid {
			o.Payment.TransactionID = &payTxn.String
		}
	}
	return o, nil
}

func (r *repository) loadItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[uuid.UUID]*Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID.String())
		byID[o.ID] = o
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
			p.sku, p.title, p.author, p.images
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.order_id, oi.id
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		it := &Item{Product: &ItemProduct{}}
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price,
			&it.Product.SKU, &it.Product.Title, &it.Product.Author,
			(*pq.StringArray)(&it.Product.Images),
		); err != nil {
			return err
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *repository) queryOrders(ctx context.Context, q string, args ...any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "ListByUser"),
		zap.String("user_id", userID.String()),
	)

	orders, err := r.queryOrders(ctx, selectOrder+`
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
	`, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedGetOrders, err)
	}

	if err := r.loadItems(ctx, orders); err != nil {
		log.Error("load items failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedGetOrders, err)
	}
	return orders, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, selectOrder+`WHERE o.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedGetOrders, err)
	}

	if err := r.loadItems(ctx, []*Order{o}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedGetOrders, err)
	}
	return o, nil
}

// UpdateStatus applies the non-nil fields; a COMPLETED payment status also
// upserts the payment row in the same transaction.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, upd StatusUpdate) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", id.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedUpdateOrder, err)
	}
	defer tx.Rollback()

	var (
		total  decimal.Decimal
		method PaymentMethod
	)
	err = tx.QueryRowContext(ctx, `
		UPDATE orders
		SET status = COALESCE($2, status),
		    payment_status = COALESCE($3, payment_status),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING total, payment_method
	`, id, upd.Status, upd.PaymentStatus).Scan(&total, &method)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		log.Error("update failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrFailedUpdateOrder, err)
	}

	if upd.PaymentStatus != nil && *upd.PaymentStatus == PaymentCompleted {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO payments (order_id, amount, currency, status, method)
			VALUES ($1, $2, 'CZK', 'COMPLETED', $3)
			ON CONFLICT (order_id) DO UPDATE
			SET status = 'COMPLETED', updated_at = NOW()
		`, id, total, method)
		if err != nil {
			log.Error("payment upsert failed", zap.Error(err))
			return fmt.Errorf("%w: %v", ErrFailedUpdateOrder, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedUpdateOrder, err)
	}
	return nil
}

func (r *repository) UpdateShipment(ctx context.Context, id uuid.UUID, trackingNumber string, pickupCode *string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET delivery_tracking_number = $2, pickup_code = $3, updated_at = NOW()
		WHERE id = $1 AND delivery_tracking_number IS NULL
	`, id, trackingNumber, pickupCode)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrFailedUpdateOrder, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrFailedUpdateOrder, err)
	}
	return n > 0, nil
}

func (r *repository) ListPendingShipment(ctx context.Context, createdBefore time.Time, limit int) ([]*Order, error) {
	orders, err := r.queryOrders(ctx, selectOrder+`
		WHERE o.delivery_tracking_number IS NULL
		  AND o.status <> $1
		  AND o.created_at < $2
		ORDER BY o.created_at
		LIMIT $3
	`, StatusCancelled, createdBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedGetOrders, err)
	}
	return orders, nil
}
