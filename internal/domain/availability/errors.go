package availability

import "errors"

var (
	ErrSlotNotFound   = errors.New("availability slot not found")
	ErrInvalidWindow  = errors.New("slot end must be after slot start")
	ErrSlotOverlap    = errors.New("slot overlaps an existing slot on that day")
	ErrNotSlotOwner   = errors.New("slot belongs to another photographer")
	ErrOutsideWindows = errors.New("interval is outside registered availability")
)
