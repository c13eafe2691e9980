package http

import (
	"context"
	"net/http"
	"time"

	"github.com/astro-web3/token-authorizer/pkg/tracer"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTimeout = 10 * time.Second
)

// Config controls the behavior of a Client. Retries are opt-in: a client
// with RetryCount 0 performs exactly one attempt per request.
type Config struct {
	Timeout        time.Duration
	RetryCount     int
	RetryWaitTime  time.Duration
	RetryCondition resty.RetryConditionFunc
}

// Client is a thin wrapper around resty that records a client span per
// request and injects W3C trace context headers.
type Client struct {
	rc *resty.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	if cfg.RetryCount > 0 {
		rc.SetRetryCount(cfg.RetryCount)
		if cfg.RetryWaitTime > 0 {
			rc.SetRetryWaitTime(cfg.RetryWaitTime)
			rc.SetRetryMaxWaitTime(cfg.RetryWaitTime)
		}
		if cfg.RetryCondition != nil {
			// A registered condition replaces resty's default
			// retry-on-transport-error policy, so only the caller's
			// condition triggers a retry.
			rc.AddRetryCondition(cfg.RetryCondition)
		}
	}

	return &Client{rc: rc}
}

type RequestOption func(*resty.Request)

func WithBody(body any) RequestOption {
	return func(r *resty.Request) {
		r.SetBody(body)
	}
}

func WithHeader(key, value string) RequestOption {
	return func(r *resty.Request) {
		r.SetHeader(key, value)
	}
}

func WithContentType(contentType string) RequestOption {
	return func(r *resty.Request) {
		r.SetHeader("Content-Type", contentType)
	}
}

func (c *Client) Request(ctx context.Context, method, url string, opts ...RequestOption) (*resty.Response, error) {
	ctx, span := startClientSpan(ctx, "http.Request", method, url)
	defer span.End()

	request := c.rc.R().SetContext(ctx)

	for _, opt := range opts {
		opt(request)
	}

	injectTracingHeaders(ctx, request)

	resp, err := request.Execute(method, url)

	recordSpan(span, resp, err)
	return resp, err
}

func (c *Client) Post(ctx context.Context, url string, opts ...RequestOption) (*resty.Response, error) {
	return c.Request(ctx, http.MethodPost, url, opts...)
}

func startClientSpan(
	ctx context.Context,
	spanName string,
	method string,
	url string,
) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", url),
	))
}

func recordSpan(span trace.Span, resp *resty.Response, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if resp == nil {
		return
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	if resp.IsError() {
		span.SetStatus(codes.Error, resp.Status())
		return
	}
	span.SetStatus(codes.Ok, "")
}
