package service

import "errors"

var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrPaymentCanceled = errors.New("payment canceled")
	ErrGatewayFailure  = errors.New("gateway call failed")
)
