package user

import (
	"context"
	"errors"
	"strings"

	"spalena53-be/internal/address"
	"spalena53-be/internal/auth"
	"spalena53-be/internal/logger"
	"spalena53-be/internal/transport"
	"spalena53-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLength = 6

// AddressLister supplies the addresses shown in the session.
type AddressLister interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*address.Address, error)
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Session(ctx context.Context) (*Session, error)
}

type service struct {
	repo      Repository
	addresses AddressLister
	tokens    *auth.TokenManager
}

func NewService(repo Repository, addresses AddressLister, tokens *auth.TokenManager) Service {
	return &service{repo: repo, addresses: addresses, tokens: tokens}
}

func validateRegister(in *RegisterInput) error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	verr := &transport.ValidationError{}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		verr.Add("email", "must be a valid email")
	}
	if len(in.Password) < minPasswordLength {
		verr.Add("password", "must be at least 6 characters")
	}
	if in.FirstName == "" {
		verr.Add("firstName", "required")
	}
	if in.LastName == "" {
		verr.Add("lastName", "required")
	}
	return verr.OrNil()
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validateRegister(&in); err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "User"),
		zap.String("method", "Register"),
		zap.String("email", in.Email),
	)

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := &User{
		Email:     in.Email,
		Password:  hashed,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     utils.NilIfBlank(strings.TrimSpace(utils.PtrString(in.Phone))),
		Role:      RoleCustomer,
	}
	if err := s.repo.CreateWithCart(ctx, u); err != nil {
		if !errors.Is(err, ErrUserExists) {
			log.Error("failed to create user", zap.Error(err))
		}
		return nil, err
	}

	token, err := s.tokens.Generate(u.ID, u.Email, string(u.Role))
	if err != nil {
		log.Error("failed to generate jwt", zap.String("user_id", u.ID.String()), zap.Error(err))
		return nil, err
	}

	log.Info("register service completed", zap.String("user_id", u.ID.String()))
	return &AuthResult{User: u, Token: token}, nil
}

func (s *service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "User"),
		zap.String("method", "Login"),
	)

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		verr := &transport.ValidationError{}
		if email == "" {
			verr.Add("email", "required")
		}
		if in.Password == "" {
			verr.Add("password", "required")
		}
		return nil, verr
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		log.Error("failed to find user", zap.Error(err))
		return nil, err
	}

	if !auth.CheckPasswordHash(in.Password, u.Password) {
		log.Info("login password mismatch", zap.String("user_id", u.ID.String()))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *service) Session(ctx context.Context) (*Session, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	addrs, err := s.addresses.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Session{User: u, Addresses: addrs, IsAuthenticated: true}, nil
}
