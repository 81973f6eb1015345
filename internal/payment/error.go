package payment

import "errors"

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrOrderNotFound        = errors.New("order not found")
	ErrAlreadyPaid          = errors.New("order already paid")
	ErrPaymentNotSuccessful = errors.New("payment not successful")
	ErrPaymentNotFound      = errors.New("payment not found")

	ErrGateway           = errors.New("payment gateway error")
	ErrFailedSavePayment = errors.New("failed to save payment")
)
