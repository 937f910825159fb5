package xmlapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/wbxmeet/internal/instrumentation"
	"github.com/teemow/wbxmeet/internal/logging"
)

// Client sends operations to the XML service. It is safe for concurrent use
// as long as the underlying Doer is.
type Client struct {
	transport *Transport
	endpoint  string
	doer      Doer
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	debug     io.Writer
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient sets the Doer used for requests, e.g. an OAuth client.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) { c.doer = doer }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = metrics }
}

// WithDebug writes every request and response envelope to w with
// credentials masked. A nil writer disables the dumps.
func WithDebug(w io.Writer) Option {
	return func(c *Client) { c.debug = w }
}

// NewClient returns a Client with the given options applied.
func NewClient(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.transport = NewTransport(c.endpoint, c.doer)
	return c
}

// Endpoint returns the URL the client posts to.
func (c *Client) Endpoint() string {
	return c.transport.Endpoint()
}

// Call builds the envelope for op, posts it and validates the response.
// Errors are a *TransportError, an *APIError, or wrap ErrMalformedResponse
// or the network error.
func (c *Client) Call(ctx context.Context, op Operation, sc SecurityContext, fields ...Field) (*Document, error) {
	env, err := NewEnvelope(op, sc, fields...)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op.Name, err)
	}
	return c.Send(ctx, env, sc.SiteName)
}

// Send posts a prebuilt envelope. site is only used for logs, spans and
// metric labels.
func (c *Client) Send(ctx context.Context, env *Envelope, site string) (*Document, error) {
	op := env.Operation()
	logger := logging.WithOperation(c.logger, op.Name)

	ctx, span := instrumentation.StartAPISpan(ctx, op.Name, op.Binding(), site)
	defer span.End()

	c.dump("request", op, env.data)

	start := time.Now()
	raw, err := c.transport.Post(ctx, env.data)
	if raw != nil {
		span.SetAttributes(httpStatusAttr(raw.StatusCode))
		c.dump("response", op, raw.Body)
	}

	var doc *Document
	if err == nil {
		doc, err = validate(raw, op.Name)
	}
	duration := time.Since(start)

	result := classify(doc, err)
	c.metrics.RecordAPIOperation(ctx, op.Name, result, site, duration)

	if err != nil {
		instrumentation.SetSpanError(span, err)
		logger.Warn("XML API call failed",
			logging.Site(site),
			slog.String("result", result),
			slog.Duration(logging.KeyDuration, duration),
			logging.Err(err))
		return nil, err
	}

	instrumentation.SetSpanSuccess(span)
	logger.Debug("XML API call succeeded",
		logging.Site(site),
		slog.Duration(logging.KeyDuration, duration))
	return doc, nil
}

func (c *Client) dump(kind string, op Operation, data []byte) {
	if c.debug == nil {
		return
	}
	_, _ = fmt.Fprintf(c.debug, "--- %s %s ---\n%s\n", op.Name, kind, Redact(data))
}

// classify maps a call outcome to a metric result label.
func classify(doc *Document, err error) string {
	var (
		apiErr       *APIError
		transportErr *TransportError
	)
	switch {
	case err == nil && doc != nil:
		return instrumentation.ResultClass(doc.Result())
	case errors.As(err, &apiErr):
		return instrumentation.ResultClass(apiErr.Result)
	case errors.As(err, &transportErr):
		return instrumentation.ResultHTTP
	case errors.Is(err, ErrMalformedResponse):
		return instrumentation.ResultMalformed
	default:
		return instrumentation.ResultNetwork
	}
}

func httpStatusAttr(code int) attribute.KeyValue {
	return attribute.Int(instrumentation.SpanAttrHTTPStatus, code)
}
