package order

import (
	"strings"

	"checkout/internal/entities"
)

const defaultCourseTitle = "Curso AIExcel"

// normalizeDocument drops the separators buyers usually type in a DNI/CUIT.
func normalizeDocument(document string) string {
	return strings.NewReplacer(".", "", "-", "", " ", "").Replace(strings.TrimSpace(document))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at:], ".") && !strings.ContainsAny(email, " \t\r\n")
}

// validateCheckout trims the request in place and returns the first violation.
func validateCheckout(req *entities.CheckoutRequest, catalog Catalog) error {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.CourseID = strings.TrimSpace(req.CourseID)
	req.CourseTitle = strings.TrimSpace(req.CourseTitle)

	if req.FirstName == "" {
		return invalid("first_name", "El nombre es requerido")
	}
	if req.LastName == "" {
		return invalid("last_name", "El apellido es requerido")
	}
	if strings.TrimSpace(req.Document) == "" {
		return invalid("document", "El DNI/CUIT es requerido")
	}
	req.Document = normalizeDocument(req.Document)
	if !isDigits(req.Document) {
		return invalid("document", "El DNI/CUIT debe contener solo números")
	}
	if req.Email == "" {
		return invalid("email", "El email es requerido")
	}
	if !isValidEmail(req.Email) {
		return invalid("email", "El formato del email no es válido")
	}
	if !req.Price.IsPositive() {
		return invalid("price", "El precio debe ser mayor a 0")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		return invalid("quantity", "La cantidad debe ser al menos 1")
	}
	if req.CourseID == "" || !catalog.HasProduct(req.CourseID) {
		return invalid("course_id", "El producto solicitado no existe")
	}
	if req.CourseTitle == "" {
		req.CourseTitle = defaultCourseTitle
	}
	return nil
}
