package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	domainerrors "blip.dashboard/internal/domain/errors"
	"blip.dashboard/pkg/httpclient"
	"blip.dashboard/pkg/logger"
)

// Doer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "blip_dashboard_backend_request_duration_seconds",
		Help:    "Duration of backend API calls.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "status"},
)

// errorBody is the backend's error payload.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Client talks to the Blip backend. Authentication rides on the session
// cookie kept by the Doer's jar.
type Client struct {
	baseURL string
	http    Doer
}

func NewClient(baseURL string, doer Doer) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: doer}
}

// call sends body as JSON and decodes a 2xx reply into out. A non-empty
// idempotencyKey makes the request replayable by the retrying client.
func (c *Client) call(ctx context.Context, method, path string, body any, idempotencyKey string, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return domainerrors.InternalError(fmt.Errorf("encode %s: %w", path, err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domainerrors.InternalError(fmt.Errorf("build %s: %w", path, err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set(httpclient.IdempotencyHeader, idempotencyKey)
	}

	start := time.Now()
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		requestDuration.WithLabelValues(path, "error").Observe(time.Since(start).Seconds())
		logger.Warn(ctx, "Backend request failed", zap.String("path", path), zap.Error(err))
		if errors.Is(err, context.Canceled) {
			return err
		}
		return domainerrors.Network(err)
	}
	defer func() { _ = resp.Body.Close() }()
	requestDuration.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseResponseError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return domainerrors.Network(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

// parseResponseError turns a non-2xx reply into an AppError carrying human
// copy. The backend's message is used only where it is meant for users.
func parseResponseError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	return mapStatus(resp.StatusCode, body.Code, msg, string(raw))
}

func mapStatus(status int, code, msg, raw string) error {
	switch {
	case code == domainerrors.CodeEmailNotVerified:
		return domainerrors.NotVerified()
	case status == http.StatusConflict:
		return domainerrors.Conflict(orDefault(msg, domainerrors.MsgWalletConflict))
	case status == http.StatusUnauthorized:
		return domainerrors.Unauthorized(orDefault(msg, domainerrors.MsgUnauthorized))
	case status == http.StatusTooManyRequests:
		return domainerrors.RateLimited(fmt.Errorf("backend status %d", status))
	case status == http.StatusNotFound:
		return domainerrors.NotFound(orDefault(msg, "Not found."))
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return domainerrors.Validation(orDefault(msg, "The request was rejected. Please check your input."))
	case status == http.StatusForbidden:
		return domainerrors.NewAppError(status, domainerrors.KindUnauthorized, orDefault(code, domainerrors.CodeUnauthorized),
			orDefault(msg, domainerrors.MsgUnauthorized), domainerrors.ErrUnauthorized)
	case status >= 500:
		return domainerrors.Network(&httpclient.ServerError{Status: status, Body: raw})
	}
	return domainerrors.NewAppError(status, domainerrors.KindUnknown, code, orDefault(msg, domainerrors.MsgNetwork), nil)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
