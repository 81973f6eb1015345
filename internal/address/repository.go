package address

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spalena53-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Address, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Address, error)

	// Create inserts addr; when addr.IsDefault the previous default is
	// cleared in the same transaction.
	Create(ctx context.Context, addr *Address) error
	// Replace retires oldID and inserts addr in its place. Orders keep
	// pointing at the retired row.
	Replace(ctx context.Context, oldID uuid.UUID, addr *Address) error
	Deactivate(ctx context.Context, userID, id uuid.UUID) error

	SetDefault(ctx context.Context, userID uuid.UUID, addressID uuid.UUID) error
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const addressColumns = `
	id, user_id,
	first_name, last_name,
	street, city, postal_code, country,
	phone, email,
	is_default, is_active, created_at
`

func scanAddress(sc interface{ Scan(...any) error }) (*Address, error) {
	var a Address
	err := sc.Scan(
		&a.ID, &a.UserID,
		&a.FirstName, &a.LastName,
		&a.Street, &a.City, &a.PostalCode, &a.Country,
		&a.Phone, &a.Email,
		&a.IsDefault, &a.IsActive, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) GetByUserID(
	ctx context.Context,
	userID uuid.UUID,
) ([]*Address, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "GetByUserID"),
		zap.String("user_id", userID.String()),
	)

	q := `SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1
		  AND is_active = true
		ORDER BY is_default DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	res := []*Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		res = append(res, a)
	}

	return res, rows.Err()
}

func (r *repository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*Address, error) {

	q := `SELECT ` + addressColumns + `
		FROM addresses
		WHERE id = $1 AND is_active = true
		LIMIT 1
	`

	a, err := scanAddress(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("query failed",
			zap.String("repo", "Address"),
			zap.String("method", "GetByID"),
			zap.String("address_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return a, nil
}

func insertAddress(ctx context.Context, ex execer, addr *Address) error {
	const q = `
		INSERT INTO addresses (
			id, user_id,
			first_name, last_name,
			street, city, postal_code, country,
			phone, email,
			is_default, is_active
		) VALUES (
			$1, $2,
			$3, $4,
			$5, $6, $7, $8,
			$9, $10,
			$11, $12
		)
	`
	_, err := ex.ExecContext(
		ctx, q,
		addr.ID, addr.UserID,
		addr.FirstName, addr.LastName,
		addr.Street, addr.City, addr.PostalCode, addr.Country,
		addr.Phone, addr.Email,
		addr.IsDefault, addr.IsActive,
	)
	return err
}

func clearDefault(ctx context.Context, ex execer, userID uuid.UUID) error {
	_, err := ex.ExecContext(ctx, `
		UPDATE addresses
		SET is_default = false
		WHERE user_id = $1
		  AND is_default = true
	`, userID)
	return err
}

func (r *repository) Create(
	ctx context.Context,
	addr *Address,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "Create"),
		zap.String("address_id", addr.ID.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if addr.IsDefault {
		if err := clearDefault(ctx, tx, addr.UserID); err != nil {
			log.Error("clear default failed", zap.Error(err))
			return err
		}
	}

	if err := insertAddress(ctx, tx, addr); err != nil {
		log.Error("insert failed", zap.Error(err))
		return err
	}

	return tx.Commit()
}

func (r *repository) Replace(
	ctx context.Context,
	oldID uuid.UUID,
	addr *Address,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "Replace"),
		zap.String("old_address_id", oldID.String()),
		zap.String("address_id", addr.ID.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deactivate(ctx, tx, addr.UserID, oldID); err != nil {
		return err
	}
	if addr.IsDefault {
		if err := clearDefault(ctx, tx, addr.UserID); err != nil {
			return err
		}
	}
	if err := insertAddress(ctx, tx, addr); err != nil {
		log.Error("insert failed", zap.Error(err))
		return err
	}

	return tx.Commit()
}

func deactivate(ctx context.Context, ex execer, userID, id uuid.UUID) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE addresses
		SET is_active = false,
		    is_default = false
		WHERE id = $1
		  AND user_id = $2
		  AND is_active = true
	`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (r *repository) Deactivate(
	ctx context.Context,
	userID, id uuid.UUID,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "Deactivate"),
		zap.String("address_id", id.String()),
	)
	log.Debug("Start deactivating address")

	return deactivate(ctx, r.db, userID, id)
}

func (r *repository) SetDefault(
	ctx context.Context,
	userID uuid.UUID,
	addressID uuid.UUID,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "SetDefault"),
		zap.String("user_id", userID.String()),
		zap.String("address_id", addressID.String()),
	)
	log.Debug("Start setting default address")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := clearDefault(ctx, tx, userID); err != nil {
		return fmt.Errorf("clear default: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE addresses
		SET is_default = true
		WHERE user_id = $1
		  AND id = $2
		  AND is_active = true
	`, userID, addressID)
	if err != nil {
		return fmt.Errorf("set default: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAddressNotFound
	}

	return tx.Commit()
}

// Columns is the select list accepted by ScanAddress.
const Columns = addressColumns

// ScanAddress scans a row selected with Columns.
func ScanAddress(sc interface{ Scan(...any) error }) (*Address, error) {
	return scanAddress(sc)
}

// InsertTx inserts addr using an open transaction owned by another package.
func InsertTx(ctx context.Context, tx *sql.Tx, addr *Address) error {
	return insertAddress(ctx, tx, addr)
}
