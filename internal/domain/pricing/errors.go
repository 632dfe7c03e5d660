package pricing

import "errors"

var (
	ErrInvalidInterval = errors.New("interval must have positive duration")
	ErrRateNotFound    = errors.New("hourly rate not found")
)
