package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"checkout/internal/entities"
	"checkout/internal/pkg/metrics"
	retrierconfig "checkout/pkg/retrier"
	"checkout/pkg/retrier/backoff_adapter"

	"github.com/google/uuid"
)

const serviceName = "mercadopago"

const (
	initialInterval = 200 * time.Millisecond
	maxInterval     = 2 * time.Second
	maxElapsedTime  = 10 * time.Second
	randomization   = 0.5
	multiplier      = 2.0

	maxErrorBody = 4 << 10
)

type Config struct {
	AccessToken         string
	BaseURL             string
	Timeout             time.Duration
	MaxRetries          int
	CurrencyID          string
	StatementDescriptor string
	NotificationURL     string
}

type Gateway struct {
	cfg     Config
	client  httpClient
	retrier retrier
}

// New builds a gateway on a bounded http.Client. Timeouts surface as ErrGateway.
func New(cfg Config) *Gateway {
	return NewWithClient(cfg, &http.Client{Timeout: cfg.Timeout})
}

func NewWithClient(cfg Config, client httpClient) *Gateway {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	retryConfig := retrierconfig.Config{
		InitialInterval: initialInterval,
		MaxInterval:     maxInterval,
		MaxElapsedTime:  maxElapsedTime,
		Randomization:   randomization,
		Multiplier:      multiplier,
		MaxRetries:      uint64(max(cfg.MaxRetries, 0)),
		ShouldRetry:     isRetryable,
	}
	if cfg.MaxRetries == 0 {
		retryConfig.ShouldRetry = func(error) bool { return false }
	}

	return &Gateway{
		cfg:     cfg,
		client:  client,
		retrier: backoff_adapter.New(retryConfig),
	}
}

// statusError is a non-2xx answer from the gateway.
type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mercadopago responded %d", e.Code)
	}
	return fmt.Sprintf("mercadopago responded %d: %s", e.Code, e.Message)
}

func (g *Gateway) CreatePreference(ctx context.Context, order *entities.Order, urls entities.ReturnURLs) (*entities.Preference, error) {
	body, err := json.Marshal(toPreferenceRequest(order, urls, g.cfg))
	if err != nil {
		return nil, fmt.Errorf("encode preference: %w", err)
	}

	// One key for every attempt so retries cannot create duplicate preferences.
	idempotencyKey := uuid.NewString()

	var resp preferenceResponse
	err = g.executeWithMetrics(ctx, "CreatePreference", func(ctx context.Context) error {
		return g.do(ctx, http.MethodPost, "/checkout/preferences", body, idempotencyKey, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create preference for order %d: %w", entities.ErrGateway, order.ID, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: preference response without id", entities.ErrGateway)
	}

	return preferenceToDomain(&resp), nil
}

func (g *Gateway) GetPayment(ctx context.Context, paymentID string) (*entities.Payment, error) {
	var resp paymentResponse
	err := g.executeWithMetrics(ctx, "GetPayment", func(ctx context.Context) error {
		return g.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, "", &resp)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", entities.ErrPaymentNotFound, paymentID)
		}
		return nil, fmt.Errorf("%w: get payment %s: %w", entities.ErrGateway, paymentID, err)
	}

	return paymentToDomain(&resp), nil
}

// SearchPayments lists the payments made against an external reference, newest first.
// No match is an empty slice, not an error.
func (g *Gateway) SearchPayments(ctx context.Context, externalReference string) ([]entities.Payment, error) {
	query := url.Values{
		"external_reference": {externalReference},
		"sort":               {"date_created"},
		"criteria":           {"desc"},
	}

	var resp paymentSearchResponse
	err := g.executeWithMetrics(ctx, "SearchPayments", func(ctx context.Context) error {
		return g.do(ctx, http.MethodGet, "/v1/payments/search?"+query.Encode(), nil, "", &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search payments for %q: %w", entities.ErrGateway, externalReference, err)
	}

	payments := make([]entities.Payment, 0, len(resp.Results))
	for i := range resp.Results {
		payments = append(payments, *paymentToDomain(&resp.Results[i]))
	}
	return payments, nil
}

func (g *Gateway) GetMerchantOrder(ctx context.Context, merchantOrderID string) (*entities.MerchantOrder, error) {
	var resp merchantOrderResponse
	err := g.executeWithMetrics(ctx, "GetMerchantOrder", func(ctx context.Context) error {
		return g.do(ctx, http.MethodGet, "/merchant_orders/"+url.PathEscape(merchantOrderID), nil, "", &resp)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: merchant order %s", entities.ErrPaymentNotFound, merchantOrderID)
		}
		return nil, fmt.Errorf("%w: get merchant order %s: %w", entities.ErrGateway, merchantOrderID, err)
	}

	return merchantOrderToDomain(&resp), nil
}

func (g *Gateway) do(ctx context.Context, method, path string, body []byte, idempotencyKey string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", idempotencyKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeStatusError(resp)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeStatusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	statusErr := &statusError{Code: resp.StatusCode}
	var apiErr apiError
	if json.Unmarshal(raw, &apiErr) == nil {
		statusErr.Message = apiErr.Message
	}
	return statusErr
}

func isNotFound(err error) bool {
	var statusErr *statusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}

// isRetryable accepts transport failures, timeouts, 429 and 5xx.
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= http.StatusInternalServerError
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF)
}

func (g *Gateway) executeWithMetrics(ctx context.Context, method string, fn func(context.Context) error) error {
	var attempt uint64
	start := time.Now()

	err := g.retrier.ExecuteWithContext(ctx, func(ctx context.Context) error {
		attempt++
		return fn(ctx)
	})

	status := statusLabel(err)
	metrics.GatewayRequestDuration.WithLabelValues(serviceName, method, status).Observe(time.Since(start).Seconds())
	if attempt > 1 {
		metrics.GatewayRetriesTotal.WithLabelValues(serviceName, method, status).Inc()
	}

	return err
}

func statusLabel(err error) string {
	if err == nil {
		return "OK"
	}
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return strconv.Itoa(statusErr.Code)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "TIMEOUT"
	}
	return "UNKNOWN"
}
