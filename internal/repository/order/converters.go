package order

import (
	"checkout/internal/entities"

	"github.com/shopspring/decimal"
)

func ToDomain(o *OrderDB) (*entities.Order, error) {
	if o == nil {
		return nil, nil
	}

	price, err := decimal.NewFromString(o.Price)
	if err != nil {
		return nil, err
	}

	return &entities.Order{
		ID: o.ID,
		Customer: entities.Customer{
			FirstName: o.FirstName,
			LastName:  o.LastName,
			Document:  o.Document,
			Email:     o.Email,
		},
		Product: entities.Product{
			CourseID:    o.CourseID,
			CourseTitle: o.CourseTitle,
			Price:       price,
			Quantity:    o.Quantity,
		},
		PaymentID:    o.PaymentID,
		PreferenceID: o.PreferenceID,
		Status:       entities.OrderStatusType(o.Status),
		Fulfillment:  entities.FulfillmentStatusType(o.Fulfillment),
		ClaimedAt:    o.ClaimedAt,
		Version:      o.Version,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}, nil
}

func FromDomain(o *entities.Order) *OrderDB {
	if o == nil {
		return nil
	}

	status := o.Status
	if status == "" {
		status = entities.OrderPending
	}
	fulfillment := o.Fulfillment
	if fulfillment == "" {
		fulfillment = entities.FulfillmentNone
	}
	quantity := o.Product.Quantity
	if quantity == 0 {
		quantity = 1
	}

	return &OrderDB{
		ID:           o.ID,
		FirstName:    o.Customer.FirstName,
		LastName:     o.Customer.LastName,
		Document:     o.Customer.Document,
		Email:        o.Customer.Email,
		CourseID:     o.Product.CourseID,
		CourseTitle:  o.Product.CourseTitle,
		Price:        o.Product.Price.StringFixed(2),
		Quantity:     quantity,
		PaymentID:    o.PaymentID,
		PreferenceID: o.PreferenceID,
		Status:       status.String(),
		Fulfillment:  fulfillment.String(),
	}
}

func FromDomainModify(m *entities.OrderModify) *OrderModifyDB {
	if m == nil {
		return nil
	}
	modifyDB := &OrderModifyDB{
		ID:           m.ID,
		PaymentID:    m.PaymentID,
		PreferenceID: m.PreferenceID,
		Version:      m.Version,
	}
	if m.Status != nil {
		status := m.Status.String()
		modifyDB.Status = &status
	}
	return modifyDB
}

func ToDomainList(ordersDB []OrderDB) ([]entities.Order, error) {
	result := make([]entities.Order, 0, len(ordersDB))
	for i := range ordersDB {
		o, err := ToDomain(&ordersDB[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, nil
}
