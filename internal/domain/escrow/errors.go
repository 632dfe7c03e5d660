package escrow

import "errors"

var (
	ErrInvalidAmount  = errors.New("escrow amount must be greater than zero")
	ErrAmountMismatch = errors.New("held amount does not match settlement split")
)
