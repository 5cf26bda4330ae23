package domain

import "errors"

var (
	ErrInvalidOrderID     = errors.New("invalid order id")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidUserID      = errors.New("invalid user id")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
