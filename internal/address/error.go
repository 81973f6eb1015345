package address

import "errors"

var (
	ErrUserNotAuthenticated = errors.New("user not authenticated")
	ErrAddressNotFound      = errors.New("address not found")
)
