package mercadopago

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"checkout/internal/entities"

	"github.com/shopspring/decimal"
)

const (
	categoryID         = "learnings"
	identificationType = "DNI"
	autoReturnApproved = "approved"
)

func toPreferenceRequest(order *entities.Order, urls entities.ReturnURLs, cfg Config) preferenceRequest {
	quantity := order.Product.Quantity
	if quantity < 1 {
		quantity = 1
	}

	req := preferenceRequest{
		Items: []preferenceItem{{
			ID:          order.Product.CourseID,
			Title:       order.Product.CourseTitle,
			Description: "Acceso completo al curso: " + order.Product.CourseTitle,
			CategoryID:  categoryID,
			Quantity:    quantity,
			CurrencyID:  cfg.CurrencyID,
			UnitPrice:   json.Number(order.Product.Price.StringFixed(2)),
		}},
		Payer: preferencePayer{
			Name:    order.Customer.FirstName,
			Surname: order.Customer.LastName,
			Email:   order.Customer.Email,
			Identification: identification{
				Type:   identificationType,
				Number: order.Customer.Document,
			},
		},
		BackURLs: backURLs{
			Success: urls.Success,
			Failure: urls.Failure,
			Pending: urls.Pending,
		},
		ExternalReference:   strconv.FormatInt(order.ID, 10),
		NotificationURL:     cfg.NotificationURL,
		StatementDescriptor: cfg.StatementDescriptor,
		Expires:             false,
		Metadata:            entities.OrderMetadata(order),
	}
	// The gateway rejects auto_return without a success URL.
	if urls.Success != "" {
		req.AutoReturn = autoReturnApproved
	}
	return req
}

func preferenceToDomain(resp *preferenceResponse) *entities.Preference {
	return &entities.Preference{
		ID:               resp.ID,
		InitPoint:        resp.InitPoint,
		SandboxInitPoint: resp.SandboxInitPoint,
	}
}

func paymentToDomain(resp *paymentResponse) *entities.Payment {
	amount, err := decimal.NewFromString(resp.TransactionAmount.String())
	if err != nil {
		amount = decimal.Zero
	}

	return &entities.Payment{
		ID:                resp.ID.String(),
		Status:            strings.ToLower(strings.TrimSpace(resp.Status)),
		StatusDetail:      resp.StatusDetail,
		ExternalReference: resp.ExternalReference,
		TransactionAmount: amount,
		Metadata:          metadataToStrings(resp.Metadata),
	}
}

func merchantOrderToDomain(resp *merchantOrderResponse) *entities.MerchantOrder {
	payments := make([]entities.MerchantOrderPayment, 0, len(resp.Payments))
	for _, p := range resp.Payments {
		payments = append(payments, entities.MerchantOrderPayment{
			ID:     p.ID.String(),
			Status: p.Status,
		})
	}
	return &entities.MerchantOrder{
		ID:                resp.ID.String(),
		ExternalReference: resp.ExternalReference,
		Payments:          payments,
	}
}

// metadataToStrings flattens the gateway's metadata object. Numbers keep their
// literal form so ids survive the round trip.
func metadataToStrings(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	res := make(map[string]string, len(meta))
	for k, v := range meta {
		switch val := v.(type) {
		case nil:
		case string:
			res[k] = val
		case json.Number:
			res[k] = val.String()
		case float64:
			res[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			res[k] = strconv.FormatBool(val)
		default:
			res[k] = fmt.Sprint(val)
		}
	}
	return res
}
