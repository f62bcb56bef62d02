package payments_download_get

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"checkout/internal/entities"
	"checkout/internal/generated/dto"
	"checkout/internal/service/order"
	"checkout/pkg/logger"

	"github.com/gorilla/mux"
)

const (
	msgMissingToken  = "Token de descarga no proporcionado"
	msgInvalidToken  = "Token de descarga inválido"
	msgInvalidOrder  = "Referencia de orden inválida"
	msgNotApproved   = "El pago no está aprobado"
	msgOrderNotFound = "Orden no encontrada"
	msgFileNotFound  = "Archivo del curso no encontrado. Contacta al soporte."
	msgNotAvailable  = "La descarga directa no está disponible. Revisa tu email."
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

	download, err := h.service.GetDownload(r.Context(), orderID, token)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidOrderID):
			h.writeError(w, http.StatusBadRequest, msgInvalidOrder)
		case errors.Is(err, entities.ErrUnauthorized):
			h.writeError(w, http.StatusUnauthorized, msgInvalidToken)
		case errors.Is(err, entities.ErrNotApproved):
			h.writeError(w, http.StatusForbidden, msgNotApproved)
		case errors.Is(err, entities.ErrOrderNotFound):
			h.writeError(w, http.StatusNotFound, msgOrderNotFound)
		case errors.Is(err, order.ErrArtifactsGone):
			h.log.With(
				logger.NewField("order_id", orderID),
				logger.NewField("error", err),
			).Error("course files missing")
			h.writeError(w, http.StatusNotFound, msgFileNotFound)
		case errors.Is(err, entities.ErrStoreUnsupported):
			h.writeError(w, http.StatusNotImplemented, msgNotAvailable)
		default:
			h.log.With(
				logger.NewField("order_id", orderID),
				logger.NewField("error", err),
			).Error("get download")
			h.writeError(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	w.Header().Set("Content-Type", download.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": download.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(download.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(download.Content); err != nil {
		h.log.With(
			logger.NewField("order_id", orderID),
			logger.NewField("error", err),
		).Warn("write download")
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
