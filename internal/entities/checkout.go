package entities

import "github.com/shopspring/decimal"

// CheckoutRequest is the raw buyer input for a new preference.
type CheckoutRequest struct {
	FirstName   string
	LastName    string
	Document    string
	Email       string
	CourseID    string
	CourseTitle string
	Price       decimal.Decimal
	Quantity    int
}

type Checkout struct {
	OrderID          int64
	PreferenceID     string
	InitPoint        string
	SandboxInitPoint string
}

type Download struct {
	Filename    string
	ContentType string
	Content     []byte
}
