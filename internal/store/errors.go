package store

import "errors"

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyTitle        = errors.New("title must not be empty")
	ErrSlotTaken         = errors.New("appointment slot already taken")
)
