package payments_webhook_post

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"checkout/internal/entities"
	"checkout/internal/generated/dto"
	"checkout/internal/service/notification"
	"checkout/pkg/logger"

	"github.com/AlekSi/pointer"
)

const (
	statusOK    = "ok"
	statusError = "error"

	maxBodyBytes = 64 << 10
)

type Handler struct {
	log     handlerLogger
	service Service
	secret  string
}

// New builds the webhook endpoint. An empty secret disables signature checks.
func New(log handlerLogger, service Service, secret string) *Handler {
	handlerLog := log.With()

	return &Handler{
		log:     handlerLog,
		service: service,
		secret:  secret,
	}
}

// ServeHTTP always answers 200 so the gateway does not retry; failures are logged.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := h.parse(r)

	log := h.log.With(
		logger.NewField("topic", string(n.Topic)),
		logger.NewField("resource_id", n.ResourceID),
		logger.NewField("request_id", n.RequestID),
	)

	if h.secret != "" {
		err := verifySignature(h.secret, r.Header.Get("x-signature"), r.URL.Query().Get("data.id"), n.RequestID)
		if err != nil {
			log.With(
				logger.NewField("error", err),
			).Warn("webhook signature rejected")
			h.respond(w, dto.WebhookResponse{Status: statusError, Message: pointer.To("invalid signature")})
			return
		}
	}

	err := h.service.HandleNotification(r.Context(), n)
	if err != nil {
		switch {
		case errors.Is(err, notification.ErrUndefinedTopic),
			errors.Is(err, notification.ErrEmptyResource):
			log.Info("webhook notification ignored", logger.NewField("reason", err.Error()))
			h.respond(w, dto.WebhookResponse{Status: statusOK})
		default:
			log.With(
				logger.NewField("error", err),
			).Error("webhook notification failed")
			h.respond(w, dto.WebhookResponse{Status: statusError, Message: pointer.To("notification not processed")})
		}
		return
	}

	log.Info("webhook notification handled")
	h.respond(w, dto.WebhookResponse{Status: statusOK})
}

// parse takes topic and id from the query string first and falls back to the JSON body.
func (h *Handler) parse(r *http.Request) entities.Notification {
	query := r.URL.Query()

	topic := firstNonEmpty(query.Get("topic"), query.Get("type"))
	resourceID := firstNonEmpty(query.Get("id"), query.Get("data.id"))

	var body dto.WebhookNotification
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err == nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			h.log.With(
				logger.NewField("error", err),
			).Warn("webhook body is not JSON")
		}
	}

	if topic == "" {
		topic = pointer.Get(body.Type)
	}
	if resourceID == "" && body.Data != nil {
		resourceID = formatID(body.Data.Id)
	}

	return entities.Notification{
		Topic:      entities.NotificationTopic(strings.TrimSpace(topic)),
		ResourceID: strings.TrimSpace(resourceID),
		Action:     pointer.Get(body.Action),
		RequestID:  r.Header.Get("x-request-id"),
	}
}

func (h *Handler) respond(w http.ResponseWriter, response dto.WebhookResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}

// formatID accepts both string and numeric ids.
func formatID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
