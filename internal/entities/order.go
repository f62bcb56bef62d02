package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID           int64
	Customer     Customer
	Product      Product
	PaymentID    *string
	PreferenceID *string
	Status       OrderStatusType
	Fulfillment  FulfillmentStatusType
	// ClaimedAt is when the current or last delivery claim was taken.
	ClaimedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

type Customer struct {
	FirstName string
	LastName  string
	Document  string
	Email     string
}

type Product struct {
	CourseID    string
	CourseTitle string
	Price       decimal.Decimal
	Quantity    int
}

type OrderStatusType string

const (
	OrderPending   OrderStatusType = "pending"
	OrderApproved  OrderStatusType = "approved"
	OrderRejected  OrderStatusType = "rejected"
	OrderCancelled OrderStatusType = "cancelled"
	OrderInProcess OrderStatusType = "in_process"
	OrderRefunded  OrderStatusType = "refunded"
)

func (s OrderStatusType) String() string {
	return string(s)
}

// FulfillmentStatusType tracks artifact delivery. Only none and failed may be claimed.
type FulfillmentStatusType string

const (
	FulfillmentNone    FulfillmentStatusType = "none"
	FulfillmentClaimed FulfillmentStatusType = "claimed"
	FulfillmentSent    FulfillmentStatusType = "sent"
	FulfillmentFailed  FulfillmentStatusType = "failed"
)

func (s FulfillmentStatusType) String() string {
	return string(s)
}

// OrderModify is a partial update keyed by ID. Version, when set, is the expected current version.
type OrderModify struct {
	ID           int64
	PaymentID    *string
	PreferenceID *string
	Status       *OrderStatusType
	Version      *int64
}

// StaleOrderFilter selects pending and in-process orders for the payment resync.
type StaleOrderFilter struct {
	UpdatedBefore time.Time
	// UnpaidCreatedAfter admits orders with no known payment created after it. Zero leaves them out.
	UnpaidCreatedAfter time.Time
	Limit              int
}
