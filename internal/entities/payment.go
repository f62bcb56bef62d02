package entities

import "github.com/shopspring/decimal"

// Payment is the gateway's authoritative view of a payment.
type Payment struct {
	ID                string
	Status            string
	StatusDetail      string
	ExternalReference string
	TransactionAmount decimal.Decimal
	Metadata          map[string]string
}

// PaymentReference is what an entry point knows about a payment before asking the gateway.
type PaymentReference struct {
	PaymentID         string
	ExternalReference string
}

type Preference struct {
	ID               string
	InitPoint        string
	SandboxInitPoint string
}

type ReturnURLs struct {
	Success string
	Failure string
	Pending string
}

type MerchantOrder struct {
	ID                string
	ExternalReference string
	Payments          []MerchantOrderPayment
}

type MerchantOrderPayment struct {
	ID     string
	Status string
}

type ReconciliationResult struct {
	Order          *Order
	PaymentID      string
	PaymentStatus  string
	StatusDetail   string
	Amount         decimal.Decimal
	PreviousStatus OrderStatusType
	NewlyApproved  bool
	EmailSent      bool
}

func (r *ReconciliationResult) Approved() bool {
	return r.Order != nil && r.Order.Status == OrderApproved
}
