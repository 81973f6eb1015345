package user

import "errors"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthenticated    = errors.New("user not authenticated")

	ErrFailedCreateUser = errors.New("failed to create user")

	PgUniqueViolation = "23505"
)
