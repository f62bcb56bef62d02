package resend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"checkout/internal/entities"
	"checkout/internal/pkg/metrics"
	retrierconfig "checkout/pkg/retrier"
	"checkout/pkg/retrier/backoff_adapter"
)

const serviceName = "resend"

const (
	initialInterval = 500 * time.Millisecond
	maxInterval     = 3 * time.Second
	maxElapsedTime  = 10 * time.Second
	maxRetries      = 2
	randomization   = 0.5
	multiplier      = 2.0
)

type Config struct {
	APIKey    string
	BaseURL   string
	FromName  string
	FromEmail string
	ReplyTo   string
	Timeout   time.Duration
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type retrier interface {
	ExecuteWithContext(ctx context.Context, fn func(context.Context) error) error
}

// Mailer sends through the Resend HTTP API. Every request carries the email's
// idempotency key, so retried sends are deduplicated by the provider.
type Mailer struct {
	cfg     Config
	client  httpClient
	retrier retrier
}

func New(cfg Config) *Mailer {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Mailer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		retrier: backoff_adapter.New(retrierconfig.Config{
			InitialInterval: initialInterval,
			MaxInterval:     maxInterval,
			MaxElapsedTime:  maxElapsedTime,
			MaxRetries:      maxRetries,
			Randomization:   randomization,
			Multiplier:      multiplier,
			ShouldRetry:     isRetryable,
		}),
	}
}

type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("resend responded %d: %s", e.Code, e.Message)
}

func (m *Mailer) Send(ctx context.Context, email entities.Email) error {
	payload := sendRequest{
		From:    fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail),
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
		ReplyTo: m.cfg.ReplyTo,
	}
	for _, a := range email.Attachments {
		payload.Attachments = append(payload.Attachments, attachment{
			Filename: a.Filename,
			Content:  base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode resend email: %w", err)
	}

	var attempt uint64
	start := time.Now()
	err = m.retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		attempt++
		return m.post(ctx, body, email.IdempotencyKey)
	})

	status := statusLabel(err)
	metrics.GatewayRequestDuration.WithLabelValues(serviceName, "SendEmail", status).Observe(time.Since(start).Seconds())
	if attempt > 1 {
		metrics.GatewayRetriesTotal.WithLabelValues(serviceName, "SendEmail", status).Inc()
	}

	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrMailDelivery, err)
	}
	return nil
}

func (m *Mailer) post(ctx context.Context, body []byte, idempotencyKey string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		var errResp errorResponse
		_ = json.Unmarshal(raw, &errResp)
		return &statusError{Code: resp.StatusCode, Message: errResp.Message}
	}

	var sent sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		return fmt.Errorf("decode resend response: %w", err)
	}
	if sent.ID == "" {
		return errors.New("resend response without id")
	}
	return nil
}

func isRetryable(err error) bool {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= http.StatusInternalServerError
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func statusLabel(err error) string {
	if err == nil {
		return "OK"
	}
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return strconv.Itoa(statusErr.Code)
	}
	return "UNKNOWN"
}
