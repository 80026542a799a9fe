package payments

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrNotRefundable   = errors.New("payment not refundable")
	ErrDuplicateRef    = errors.New("duplicate merchant reference")
	ErrInvalidPlan     = errors.New("invalid plan for payment type")
)
