package reconciliation

import "errors"

var (
	ErrMissingPaymentID = errors.New("payment id is required")
	ErrAlreadyFulfilled = errors.New("order already fulfilled")
	ErrFulfillmentBusy  = errors.New("fulfillment not in a resendable state")
)
