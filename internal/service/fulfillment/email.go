package fulfillment

import (
	"bytes"
	"fmt"
	"html/template"

	"checkout/internal/entities"

	"github.com/google/uuid"
)

var purchaseTemplate = template.Must(template.New("purchase").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
  <div style="background: #217346; color: #fff; padding: 24px; text-align: center;">
    <h1 style="margin: 0;">¡Gracias por tu compra!</h1>
  </div>
  <div style="padding: 24px;">
    <p>Hola {{.FirstName}},</p>
    <p>Tu pago fue aprobado. Adjuntamos los archivos de <strong>{{.CourseTitle}}</strong>.</p>
    <ul>
      {{- range .Files}}
      <li>{{.}}</li>
      {{- end}}
    </ul>
    <p>Si tenés algún problema con la descarga, respondé este correo y te ayudamos.</p>
    <p style="color: #888; font-size: 12px;">Pedido #{{.OrderID}}</p>
  </div>
</body>
</html>`))

type purchaseView struct {
	FirstName   string
	CourseTitle string
	OrderID     int64
	Files       []string
}

func composeEmail(order *entities.Order, attachments []entities.Attachment) (entities.Email, error) {
	files := make([]string, 0, len(attachments))
	for _, a := range attachments {
		files = append(files, a.Filename)
	}

	var body bytes.Buffer
	err := purchaseTemplate.Execute(&body, purchaseView{
		FirstName:   order.Customer.FirstName,
		CourseTitle: order.Product.CourseTitle,
		OrderID:     order.ID,
		Files:       files,
	})
	if err != nil {
		return entities.Email{}, fmt.Errorf("render purchase email: %w", err)
	}

	return entities.Email{
		To:             order.Customer.Email,
		Subject:        "🎉 Tu compra: " + order.Product.CourseTitle,
		HTML:           body.String(),
		Attachments:    attachments,
		IdempotencyKey: idempotencyKey(order),
	}, nil
}

// idempotencyKey is scoped by the payment id, since stateless order ids are
// only unique per instance.
func idempotencyKey(order *entities.Order) string {
	if order.PaymentID != nil && *order.PaymentID != "" {
		return fmt.Sprintf("order-%d-payment-%s", order.ID, *order.PaymentID)
	}
	return fmt.Sprintf("order-%d-%s", order.ID, uuid.NewString())
}
