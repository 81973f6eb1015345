package address

import (
	"context"

	"spalena53-be/internal/logger"
	"spalena53-be/internal/transport"
	"spalena53-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages the caller's saved addresses; the caller is taken from ctx.
type Service interface {
	List(ctx context.Context) ([]*Address, error)
	Get(ctx context.Context, addressID uuid.UUID) (*Address, error)

	Create(ctx context.Context, input CreateInput) (*Address, error)
	Update(ctx context.Context, input UpdateInput) (*Address, error)
	Delete(ctx context.Context, addressID uuid.UUID) error

	SetDefaultAddress(ctx context.Context, addressID uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(
	ctx context.Context,
) ([]*Address, error) {

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "List"),
		zap.String("user_id", userID.String()),
	)
	log.Debug("listing addresses")

	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) Get(
	ctx context.Context,
	addressID uuid.UUID,
) (*Address, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "Get"),
		zap.String("address_id", addressID.String()),
	)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	addr, err := s.repo.GetByID(ctx, addressID)
	if err != nil {
		log.Debug("address lookup failed", zap.Error(err))
		return nil, err
	}

	if addr.UserID != userID || !addr.IsActive {
		log.Warn("unauthorized address access")
		return nil, ErrAddressNotFound
	}

	return addr, nil
}

func validateInput(in *Input) error {
	in.Normalize()
	verr := &transport.ValidationError{}
	in.Validate(verr, "")
	return verr.OrNil()
}

func (s *service) Create(
	ctx context.Context,
	input CreateInput,
) (*Address, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "Create"),
	)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}
	if err := validateInput(&input.Input); err != nil {
		return nil, err
	}

	addr := NewAddress(userID, input.Input, input.SetAsDefault)
	if err := s.repo.Create(ctx, addr); err != nil {
		log.Error("failed to create address", zap.Error(err))
		return nil, err
	}

	log.Info("address created", zap.String("address_id", addr.ID.String()))
	return addr, nil
}

// Update stores the edited address as a new row and retires the old one.
func (s *service) Update(
	ctx context.Context,
	input UpdateInput,
) (*Address, error) {

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "Update"),
		zap.String("user_id", userID.String()),
	)

	oldAddr, err := s.Get(ctx, input.AddressID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(&input.Input); err != nil {
		return nil, err
	}

	addr := NewAddress(userID, input.Input, input.SetAsDefault || oldAddr.IsDefault)
	if err := s.repo.Replace(ctx, oldAddr.ID, addr); err != nil {
		log.Error("failed to replace address", zap.Error(err))
		return nil, err
	}

	log.Info("address updated",
		zap.String("old_address_id", oldAddr.ID.String()),
		zap.String("address_id", addr.ID.String()),
	)
	return addr, nil
}

func (s *service) Delete(
	ctx context.Context,
	addressID uuid.UUID,
) error {

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUserNotAuthenticated
	}

	return s.repo.Deactivate(ctx, userID, addressID)
}

func (s *service) SetDefaultAddress(
	ctx context.Context,
	addressID uuid.UUID,
) error {

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUserNotAuthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "SetDefaultAddress"),
		zap.String("address_id", addressID.String()),
	)

	if err := s.repo.SetDefault(ctx, userID, addressID); err != nil {
		log.Warn("failed to set default address", zap.Error(err))
		return err
	}
	return nil
}
