package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spalena53-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// CreateWithCart inserts the user and its empty cart atomically.
	CreateWithCart(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, email, password, first_name, last_name, phone, role, created_at`

func scanUser(sc interface{ Scan(...any) error }) (*User, error) {
	var u User
	if err := sc.Scan(
		&u.ID, &u.Email, &u.Password, &u.FirstName,
		&u.LastName, &u.Phone, &u.Role, &u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) CreateWithCart(ctx context.Context, u *User) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "User"),
		zap.String("method", "CreateWithCart"),
		zap.String("email", u.Email),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin tx", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrFailedCreateUser, err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, password, first_name, last_name, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, u.Email, u.Password, u.FirstName, u.LastName, u.Phone, u.Role).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
			return ErrUserExists
		}
		log.Error("db: failed to insert user", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrFailedCreateUser, err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO carts (user_id) VALUES ($1)`, u.ID); err != nil {
		log.Error("db: failed to insert cart", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrFailedCreateUser, err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrFailedCreateUser, err)
	}

	log.Info("user created", zap.String("user_id", u.ID.String()))
	return nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}
