package booking

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrTimeConflict      = errors.New("interval overlaps an existing booking")
	ErrInvalidInterval   = errors.New("end time must be after start time")
	ErrInvalidTransition = errors.New("booking status does not allow this transition")
	ErrNotParticipant    = errors.New("booking belongs to another user")
	ErrAmountMismatch    = errors.New("paid amount does not match booking price")
	ErrNotFinished       = errors.New("booking has not reached its end time")
	ErrInvalidReference  = errors.New("referenced photographer or location does not exist")
)
