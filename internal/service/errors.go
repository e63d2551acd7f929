package service

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrAlreadyPaid         = errors.New("job already paid")
	ErrNotPaid             = errors.New("job is not paid")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrLimitExceeded       = errors.New("deposit amount exceeds 25% of total jobs to pay")
)
