package payments_create_preference_post

import (
	"encoding/json"
	"errors"
	"net/http"

	"checkout/internal/entities"
	"checkout/internal/generated/dto"
	"checkout/internal/service/order"
	"checkout/pkg/logger"

	"github.com/AlekSi/pointer"
)

const (
	msgInvalidJSON    = "JSON inválido en el body de la request"
	msgGatewayFailure = "Error al crear la preferencia de pago"
	msgInternal       = "Error interno del servidor"

	maxBodyBytes = 64 << 10
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
	var requestDTO dto.CreatePreferenceRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&requestDTO)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, dto.ErrorResponse{Error: msgInvalidJSON})
		return
	}

	checkout, err := h.service.CreatePreference(r.Context(), toCheckoutRequest(requestDTO))
	if err != nil {
		var validationErr *order.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.writeError(w, http.StatusBadRequest, dto.ErrorResponse{
				Error: validationErr.Message,
				Field: pointer.To(validationErr.Field),
			})
		case errors.Is(err, entities.ErrGateway):
			h.log.With(
				logger.NewField("error", err),
			).Error("create payment preference")
			h.writeError(w, http.StatusBadGateway, dto.ErrorResponse{Error: msgGatewayFailure})
		default:
			h.log.With(
				logger.NewField("error", err),
			).Error("create order")
			h.writeError(w, http.StatusInternalServerError, dto.ErrorResponse{Error: msgInternal})
		}
		return
	}

	response := dto.CreatePreferenceResponse{
		Success:          true,
		InitPoint:        checkout.InitPoint,
		SandboxInitPoint: checkout.SandboxInitPoint,
		PreferenceId:     checkout.PreferenceID,
		OrderId:          checkout.OrderID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(response)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, response dto.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}

func toCheckoutRequest(requestDTO dto.CreatePreferenceRequest) entities.CheckoutRequest {
	return entities.CheckoutRequest{
		FirstName:   requestDTO.FirstName,
		LastName:    requestDTO.LastName,
		Document:    requestDTO.Document,
		Email:       requestDTO.Email,
		CourseID:    pointer.Get(requestDTO.CourseId),
		CourseTitle: pointer.Get(requestDTO.Title),
		Price:       requestDTO.Price,
		Quantity:    pointer.Get(requestDTO.Quantity),
	}
}
