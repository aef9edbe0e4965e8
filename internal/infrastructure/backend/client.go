package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/wms-platform/handy-terminal/internal/i18n"
	apperrors "github.com/wms-platform/handy-terminal/pkg/errors"
	"github.com/wms-platform/handy-terminal/pkg/logging"
	"github.com/wms-platform/handy-terminal/pkg/resilience"
	"github.com/wms-platform/handy-terminal/pkg/tracing"
)

var tracer = otel.Tracer("handy-terminal/backend")

const maxResponseBytes = 8 << 20

var errServerStatus = errors.New("backend returned a server error")

// Credentials supplies the headers every backend request carries
type Credentials interface {
	APIKey() string
	Token() string
}

// GatewayMetrics records backend call outcomes
type GatewayMetrics interface {
	RecordGatewayCall(operation, status string, duration time.Duration)
}

// Config configures the backend client
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Breaker wraps every call when set.
	Breaker *resilience.CircuitBreakerConfig
	// Transport replaces http.DefaultTransport, e.g. with a contract-checking transport.
	Transport http.RoundTripper
}

// Client talks to the warehouse backend REST API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	credentials Credentials
	fallbacks   i18n.Fallbacks
	breaker     *resilience.CircuitBreaker
	logger      *logging.Logger
	metrics     GatewayMetrics
}

// NewClient creates a backend client. Fallbacks are the messages used when a
// failed response carries no message of its own.
func NewClient(cfg Config, credentials Credentials, fallbacks i18n.Fallbacks, logger *logging.Logger, metrics GatewayMetrics) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: cfg.Transport,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		credentials: credentials,
		fallbacks:   fallbacks,
		logger:      logger.WithComponent("backend"),
		metrics:     metrics,
	}

	if cfg.Breaker != nil {
		breakerCfg := *cfg.Breaker
		if breakerCfg.IsFailure == nil {
			breakerCfg.IsFailure = countsAgainstBreaker
		}
		c.breaker = resilience.NewCircuitBreaker(&breakerCfg, c.logger.Logger)
	}

	return c
}

// Breaker returns the circuit breaker, nil when disabled
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// countsAgainstBreaker ignores callers giving up on their own request
func countsAgainstBreaker(err error) bool {
	return !errors.Is(err, context.Canceled)
}

type request struct {
	operation string
	method    string
	path      string
	query     url.Values
	body      any
	fallback  string
}

type rawResponse struct {
	status int
	body   []byte
}

// do sends the request and decodes the envelope of a successful response.
// Failures are returned as *AppError except a canceled context.
func (c *Client) do(ctx context.Context, r request) (*envelope, error) {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "backend."+r.operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(tracing.HTTPClientSpanAttributes(r.method, r.path)...),
	)
	defer span.End()

	req, err := c.newRequest(ctx, r)
	if err != nil {
		c.recordFailure(ctx, r.operation, 0, start, err)
		span.RecordError(err)
		return nil, apperrors.ErrInternal("failed to build backend request").Wrap(err)
	}

	var raw *rawResponse
	send := func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}

		raw = &rawResponse{status: resp.StatusCode, body: body}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, errServerStatus
		}
		return raw, nil
	}

	if c.breaker != nil {
		_, err = c.breaker.Execute(ctx, send)
	} else {
		_, err = send()
	}

	if raw == nil {
		if err == nil {
			err = errors.New("empty backend response")
		}
		span.RecordError(err)
		c.recordFailure(ctx, r.operation, 0, start, err)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.ErrNetwork(err.Error()).Wrap(err)
	}

	span.SetAttributes(attribute.Int("http.status_code", raw.status))

	env, decodeErr := decodeEnvelope(raw.body)

	if raw.status < 200 || raw.status >= 300 {
		var result *resultBlock
		if decodeErr == nil {
			result = env.Result
		}
		appErr := apperrors.FromHTTPStatus(raw.status, extractErrorMessage(result, r.fallback))
		span.RecordError(appErr)
		c.recordFailure(ctx, r.operation, raw.status, start, appErr)
		return nil, appErr
	}

	if decodeErr != nil {
		span.RecordError(decodeErr)
		c.recordFailure(ctx, r.operation, raw.status, start, decodeErr)
		return nil, apperrors.ErrNetwork("malformed backend response").Wrap(decodeErr)
	}

	if !env.IsSuccess {
		appErr := apperrors.ErrUnknown(extractErrorMessage(env.Result, r.fallback))
		if env.Code != "" {
			appErr.WithDetail("code", env.Code)
		}
		span.RecordError(appErr)
		c.recordFailure(ctx, r.operation, raw.status, start, appErr)
		return nil, appErr
	}

	c.recordSuccess(ctx, r.operation, raw.status, start)
	return env, nil
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	req.Header.Set("X-Request-ID", requestID)

	if c.credentials != nil {
		if key := c.credentials.APIKey(); key != "" {
			req.Header.Set("X-API-Key", key)
		}
		if token := c.credentials.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	// Inject trace context into outgoing request headers
	tracing.InjectTraceContext(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

func decodeEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}
	return &env, nil
}

func (c *Client) recordSuccess(ctx context.Context, operation string, status int, start time.Time) {
	duration := time.Since(start)
	if c.metrics != nil {
		c.metrics.RecordGatewayCall(operation, "success", duration)
	}
	c.logger.GatewayCall(ctx, operation, status, duration, true)
}

func (c *Client) recordFailure(ctx context.Context, operation string, status int, start time.Time, err error) {
	duration := time.Since(start)
	outcome := "error"
	if errors.Is(err, context.Canceled) {
		outcome = "canceled"
	}
	if c.metrics != nil {
		c.metrics.RecordGatewayCall(operation, outcome, duration)
	}
	c.logger.GatewayCall(ctx, operation, status, duration, false)
	if outcome != "canceled" {
		c.logger.WithContext(ctx).WithError(err).Warn("Backend call failed",
			"operation", operation,
			"status", status,
		)
	}
}

// call performs the request and decodes the envelope's data into T.
// A success envelope without data is a failure.
func call[T any](ctx context.Context, c *Client, r request) (T, error) {
	var out T

	env, err := c.do(ctx, r)
	if err != nil {
		return out, err
	}

	if !env.hasData() {
		return out, apperrors.ErrUnknown(r.fallback)
	}

	if err := json.Unmarshal(env.Result.Data, &out); err != nil {
		return out, apperrors.ErrNetwork("malformed backend response").Wrap(err)
	}

	return out, nil
}

// exec performs a request whose success carries no data
func exec(ctx context.Context, c *Client, r request) error {
	_, err := c.do(ctx, r)
	return err
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
