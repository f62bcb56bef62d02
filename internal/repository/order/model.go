package order

import "time"

type OrderDB struct {
	ID           int64
	FirstName    string
	LastName     string
	Document     string
	Email        string
	CourseID     string
	CourseTitle  string
	Price        string
	Quantity     int
	PaymentID    *string
	PreferenceID *string
	Status       string
	Fulfillment  string
	ClaimedAt    *time.Time
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OrderModifyDB struct {
	ID           int64
	PaymentID    *string
	PreferenceID *string
	Status       *string
	Version      *int64
}
