package ping_get

import (
	"encoding/json"
	"net/http"

	"checkout/internal/generated/dto"
	"checkout/pkg/logger"

	"github.com/AlekSi/pointer"
)

const pongMessage = "pong"

type Handler struct {
	log handlerLogger
}

func New(log handlerLogger) *Handler {
	handlerLog := log.With()

	return &Handler{
		log: handlerLog,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(dto.PingResponse{
		Message: pointer.To(pongMessage),
	})
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
