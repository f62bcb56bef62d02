package payments_resend_email_post

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"checkout/internal/entities"
	"checkout/internal/generated/dto"
	"checkout/internal/service/reconciliation"
	"checkout/pkg/logger"

	"github.com/AlekSi/pointer"
	"github.com/gorilla/mux"
)

const (
	msgSent          = "Email reenviado correctamente"
	msgNotSent       = "No se pudo reenviar el email. Intenta nuevamente más tarde."
	msgInvalidOrder  = "Referencia de orden inválida"
	msgMissingToken  = "Token no proporcionado"
	msgInvalidToken  = "Token inválido"
	msgNotApproved   = "El pago no está aprobado"
	msgOrderNotFound = "Orden no encontrada"
	msgAlreadySent   = "El email ya fue enviado para esta orden"
	msgBusy          = "El envío del email está en curso"
	msgNotAvailable  = "El reenvío no está disponible en este despliegue"
	msgInternal      = "Error interno del servidor"
)

type Handler struct {
	log     handlerLogger
	service Service
}

func New(log handlerLogger, service Service) *Handler {
	handlerLog := log.With()

	return &Handler{
		log:     handlerLog,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(mux.Vars(r)["orderId"], 10, 64)
	if err != nil || orderID <= 0 {
		h.writeError(w, http.StatusBadRequest, msgInvalidOrder)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		h.writeError(w, http.StatusUnauthorized, msgMissingToken)
		return
	}

	sent, err := h.service.ResendFulfillment(r.Context(), orderID, token)
	if err != nil {
		switch {
		case errors.Is(err, entities.ErrUnauthorized):
			h.writeError(w, http.StatusUnauthorized, msgInvalidToken)
		case errors.Is(err, entities.ErrNotApproved):
			h.writeError(w, http.StatusForbidden, msgNotApproved)
		case errors.Is(err, entities.ErrOrderNotFound):
			h.writeError(w, http.StatusNotFound, msgOrderNotFound)
		case errors.Is(err, reconciliation.ErrAlreadyFulfilled):
			h.writeError(w, http.StatusConflict, msgAlreadySent)
		case errors.Is(err, reconciliation.ErrFulfillmentBusy):
			h.writeError(w, http.StatusConflict, msgBusy)
		case errors.Is(err, entities.ErrStoreUnsupported):
			h.writeError(w, http.StatusNotImplemented, msgNotAvailable)
		default:
			h.log.With(
				logger.NewField("order_id", orderID),
				logger.NewField("error", err),
			).Error("resend fulfillment")
			h.writeError(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	message := msgSent
	if !sent {
		message = msgNotSent
		h.log.With(
			logger.NewField("order_id", orderID),
		).Warn("manual resend failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(dto.ResendEmailResponse{
		Success:   sent,
		OrderId:   orderID,
		EmailSent: sent,
		Message:   pointer.To(message),
	})
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(dto.ErrorResponse{Error: message})
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
