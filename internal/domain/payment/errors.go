package payment

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrAlreadyPaid     = errors.New("booking already has a successful payment")
	ErrNotPayable      = errors.New("booking status does not allow payment")
	ErrGateway         = errors.New("payment gateway request failed")
)
