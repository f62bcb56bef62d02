package entities

import "errors"

var (
	ErrGateway           = errors.New("payment gateway unavailable")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrConflict          = errors.New("order was modified concurrently")
	ErrStoreUnsupported  = errors.New("operation not supported by order store")
	ErrUnauthorized      = errors.New("invalid access token")
	ErrNotApproved       = errors.New("payment not approved")
	ErrReferenceMismatch = errors.New("external reference does not match payment")
	ErrPaymentConflict   = errors.New("order already approved with another payment")
	ErrMailDelivery      = errors.New("mail delivery failed")
)
