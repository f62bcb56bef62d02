package payments_validate_get

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"checkout/internal/entities"
	"checkout/internal/generated/dto"
	"checkout/internal/service/reconciliation"
	"checkout/pkg/logger"

	"github.com/AlekSi/pointer"
)

const (
	msgMissingPayment     = "No se recibió el ID del pago"
	msgOrderNotFound      = "Orden no encontrada"
	msgPaymentNotFound    = "Pago no encontrado"
	msgInvalidReference   = "Referencia de orden inválida"
	msgPaymentConflict    = "La orden ya fue pagada con otro pago"
	msgGatewayFailure     = "No se pudo verificar el pago con Mercado Pago"
	msgInternal           = "Error interno del servidor"
	msgApproved           = "¡Pago procesado exitosamente! Ya puedes descargar tu curso."
	msgApprovedNoDownload = "¡Pago procesado exitosamente! Te enviamos el curso por email."
)

type Handler struct {
	log     handlerLogger
	service Service
	// downloads is false for stateless deployments, which cannot serve files by order id.
	downloads bool
}

func New(log handlerLogger, service Service, downloads bool) *Handler {
	handlerLog := log.With()

	return &Handler{
		log:       handlerLog,
		service:   service,
		downloads: downloads,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	paymentID := strings.TrimSpace(query.Get("payment_id"))
	if paymentID == "" {
		paymentID = strings.TrimSpace(query.Get("collection_id"))
	}
	if paymentID == "" {
		h.writeError(w, http.StatusBadRequest, msgMissingPayment)
		return
	}

	// The status query parameter is ignored: only the gateway is trusted.
	result, err := h.service.Reconcile(r.Context(), entities.PaymentReference{
		PaymentID:         paymentID,
		ExternalReference: strings.TrimSpace(query.Get("external_reference")),
	})
	if err != nil {
		switch {
		case errors.Is(err, reconciliation.ErrMissingPaymentID):
			h.writeError(w, http.StatusBadRequest, msgMissingPayment)
		case errors.Is(err, entities.ErrReferenceMismatch):
			h.log.With(
				logger.NewField("payment_id", paymentID),
				logger.NewField("error", err),
			).Warn("payment reference mismatch")
			h.writeError(w, http.StatusBadRequest, msgInvalidReference)
		case errors.Is(err, entities.ErrOrderNotFound):
			h.writeError(w, http.StatusNotFound, msgOrderNotFound)
		case errors.Is(err, entities.ErrPaymentNotFound):
			h.writeError(w, http.StatusNotFound, msgPaymentNotFound)
		case errors.Is(err, entities.ErrPaymentConflict):
			h.log.With(
				logger.NewField("payment_id", paymentID),
				logger.NewField("error", err),
			).Warn("payment conflicts with approved order")
			h.writeError(w, http.StatusConflict, msgPaymentConflict)
		case errors.Is(err, entities.ErrGateway):
			h.log.With(
				logger.NewField("payment_id", paymentID),
				logger.NewField("error", err),
			).Error("validate payment")
			h.writeError(w, http.StatusBadGateway, msgGatewayFailure)
		default:
			h.log.With(
				logger.NewField("payment_id", paymentID),
				logger.NewField("error", err),
			).Error("validate payment")
			h.writeError(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, h.toResponse(result))
}

func (h *Handler) toResponse(result *entities.ReconciliationResult) dto.ValidatePaymentResponse {
	order := result.Order
	response := dto.ValidatePaymentResponse{
		Success:      result.Approved(),
		PaymentId:    result.PaymentID,
		Status:       result.PaymentStatus,
		StatusDetail: pointer.ToOrNil(result.StatusDetail),
		OrderId:      order.ID,
		EmailSent:    result.EmailSent,
	}

	if !result.Approved() {
		response.Error = pointer.To(fmt.Sprintf("El pago no fue aprobado. Estado: %s", result.PaymentStatus))
		return response
	}

	response.CustomerName = pointer.To(strings.TrimSpace(order.Customer.FirstName + " " + order.Customer.LastName))
	response.CustomerEmail = pointer.To(order.Customer.Email)
	response.CourseTitle = pointer.To(order.Product.CourseTitle)
	response.Amount = pointer.To(result.Amount)
	response.Message = pointer.To(msgApprovedNoDownload)
	if h.downloads {
		response.Message = pointer.To(msgApproved)
		response.DownloadUrl = pointer.To(fmt.Sprintf("/payments/download/%d?token=%s", order.ID, url.QueryEscape(result.PaymentID)))
	}
	return response
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, dto.ErrorResponse{Error: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
