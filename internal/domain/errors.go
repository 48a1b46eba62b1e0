package domain

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("conflict")
	ErrNoCapacity       = errors.New("no available space")
	ErrNotFound         = errors.New("not found")
	ErrInvalidTimeRange = errors.New("exit time is before entry time")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
)
