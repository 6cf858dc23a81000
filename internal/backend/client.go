// Package backend is the client of the external REST API that owns templates, users,
// collections and payment verification.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/juantap/web/internal/platform/observability"
	"github.com/juantap/web/internal/platform/requestctx"
)

const (
	instrumentationName = "github.com/juantap/web/internal/backend"
	idempotencyHeader   = "Idempotency-Key"
	maxResponseBytes    = 4 << 20

	// DefaultPaymentTimeout bounds payment proof submission.
	DefaultPaymentTimeout = 30 * time.Second
	// DefaultMaxReceiptBytes is the largest accepted receipt image.
	DefaultMaxReceiptBytes int64 = 10 << 20
)

// Client issues calls against the backend API. A Client is safe for concurrent use;
// WithToken derives per-user copies that share the transport.
type Client struct {
	baseURL         string
	http            *http.Client
	token           string
	paymentTimeout  time.Duration
	maxReceiptBytes int64
	newKey          func() string
	tracer          trace.Tracer
	meter           metric.Meter
	latency         metric.Float64Histogram
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. Calls other than payment submission rely on its
// timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithPaymentTimeout overrides DefaultPaymentTimeout.
func WithPaymentTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.paymentTimeout = d
		}
	}
}

// WithMaxReceiptBytes overrides DefaultMaxReceiptBytes.
func WithMaxReceiptBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxReceiptBytes = n
		}
	}
}

// WithIdempotencyKeys replaces the generator of payment Idempotency-Key headers.
func WithIdempotencyKeys(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newKey = fn
		}
	}
}

// WithMeter overrides the meter used for request metrics. The global meter provider is
// used by default.
func WithMeter(m metric.Meter) Option {
	return func(c *Client) {
		if m != nil {
			c.meter = m
		}
	}
}

// NewClient constructs a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:            &http.Client{},
		paymentTimeout:  DefaultPaymentTimeout,
		maxReceiptBytes: DefaultMaxReceiptBytes,
		newKey:          newIdempotencyKey,
		tracer:          otel.Tracer(instrumentationName),
		meter:           otel.GetMeterProvider().Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	latency, err := c.meter.Float64Histogram(
		"backend.request.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds of backend API calls"),
	)
	if err != nil {
		latency, _ = noop.NewMeterProvider().Meter(instrumentationName).Float64Histogram("backend.request.duration")
	}
	c.latency = latency
	return c
}

// WithToken returns a copy of c that authenticates as the bearer of token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = strings.TrimSpace(token)
	return &clone
}

// Token returns the bearer token the client sends, if any.
func (c *Client) Token() string {
	return c.token
}

// MaxReceiptBytes is the receipt size limit enforced by SubmitPayment.
func (c *Client) MaxReceiptBytes() int64 {
	return c.maxReceiptBytes
}

type request struct {
	op          string
	method      string
	path        []string
	body        io.Reader
	contentType string
	header      http.Header
}

// do executes req and returns the response body of a 2xx answer. Failures are mapped to
// TransportError, ValidationError, ServerError or ErrUnauthorized.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	endpoint := c.endpoint(req.path...)
	ctx, span := c.tracer.Start(ctx, "backend "+req.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.method),
			attribute.String("url.path", "/"+strings.Join(req.path, "/")),
		),
	)
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, req.body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, fmt.Errorf("backend: %s: %w", req.op, err)
	}
	for key, values := range req.header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	observability.Propagator.Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	logger := requestctx.Logger(ctx)
	start := time.Now()
	status := 0
	defer func() {
		c.latency.Record(ctx, float64(time.Since(start))/float64(time.Millisecond), metric.WithAttributes(
			attribute.String("op", req.op),
			attribute.Int("status", status),
		))
	}()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		transportErr := &TransportError{Op: req.op, Timeout: isTimeout(err), Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		logger.Debug("backend request failed",
			zap.String("op", req.op),
			zap.Bool("timeout", transportErr.Timeout),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, transportErr
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))
	logger.Debug("backend request",
		zap.String("op", req.op),
		zap.String("method", req.method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, &TransportError{Op: req.op, Timeout: isTimeout(err), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

// getJSON performs a GET and decodes the body generically for the normalizer.
func (c *Client) getJSON(ctx context.Context, op string, path ...string) (any, error) {
	body, err := c.do(ctx, request{op: op, method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	return decodeBody(op, body)
}

func decodeBody(op string, body []byte) (any, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("backend: %s: decode response: %w", op, err)
	}
	return raw, nil
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
