package model

import "errors"

var (
	ErrInvalidCart        = errors.New("invalid cart")
	ErrSignatureInvalid   = errors.New("webhook signature invalid")
	ErrMalformedEvent     = errors.New("malformed webhook event")
	ErrInventoryConflict  = errors.New("inventory conflict")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrOrderNotFound      = errors.New("order not found")
	ErrPetNotFound        = errors.New("pet not found")
	ErrInvalidTransition  = errors.New("invalid order status transition")
)
