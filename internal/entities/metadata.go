package entities

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Keys written into the preference metadata and read back from the payment.
const (
	MetaOrderID     = "order_id"
	MetaFirstName   = "first_name"
	MetaLastName    = "last_name"
	MetaDocument    = "document"
	MetaEmail       = "email"
	MetaCourseID    = "course_id"
	MetaCourseTitle = "course_title"
	MetaPrice       = "price"
	MetaQuantity    = "quantity"
)

// OrderMetadata is attached to the payment preference; OrderFromMetadata reverses it.
func OrderMetadata(order *Order) map[string]string {
	return map[string]string{
		MetaOrderID:     strconv.FormatInt(order.ID, 10),
		MetaFirstName:   order.Customer.FirstName,
		MetaLastName:    order.Customer.LastName,
		MetaDocument:    order.Customer.Document,
		MetaEmail:       order.Customer.Email,
		MetaCourseID:    order.Product.CourseID,
		MetaCourseTitle: order.Product.CourseTitle,
		MetaPrice:       order.Product.Price.String(),
		MetaQuantity:    strconv.Itoa(order.Product.Quantity),
	}
}

func OrderFromMetadata(id int64, meta map[string]string) (*Order, error) {
	if meta[MetaEmail] == "" || meta[MetaCourseID] == "" {
		return nil, fmt.Errorf("%w: payment metadata lacks buyer or product", ErrOrderNotFound)
	}

	price := decimal.Zero
	if raw := meta[MetaPrice]; raw != "" {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata price %q", ErrOrderNotFound, raw)
		}
		price = p
	}
	quantity := 1
	if q, err := strconv.Atoi(meta[MetaQuantity]); err == nil && q > 0 {
		quantity = q
	}

	return &Order{
		ID: id,
		Customer: Customer{
			FirstName: meta[MetaFirstName],
			LastName:  meta[MetaLastName],
			Document:  meta[MetaDocument],
			Email:     meta[MetaEmail],
		},
		Product: Product{
			CourseID:    meta[MetaCourseID],
			CourseTitle: meta[MetaCourseTitle],
			Price:       price,
			Quantity:    quantity,
		},
		Status:      OrderPending,
		Fulfillment: FulfillmentNone,
		Version:     1,
	}, nil
}
