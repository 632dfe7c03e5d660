package withdrawal

import "errors"

var (
	ErrRequestNotFound   = errors.New("withdrawal request not found")
	ErrBelowMinimum      = errors.New("amount is below the withdrawal minimum")
	ErrAboveMaximum      = errors.New("amount is above the withdrawal maximum")
	ErrInvalidTransition = errors.New("withdrawal status does not allow this action")
	ErrNotRequester      = errors.New("request belongs to another photographer")
	ErrReasonRequired    = errors.New("rejection requires a reason")
)
