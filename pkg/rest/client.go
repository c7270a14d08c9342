// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

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
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	xlog "github.com/ManuGH/retux/internal/log"
	"github.com/ManuGH/retux/internal/metrics"
	"github.com/ManuGH/retux/internal/platform/httpx"
	"github.com/ManuGH/retux/internal/telemetry"
	"github.com/ManuGH/retux/internal/version"
)

const (
	// DefaultBaseURL is the versioned API root.
	DefaultBaseURL = "https://discord.com/api/v10"

	DefaultRetries    = 3
	DefaultResetWait  = 5 * time.Second
	DefaultServerWait = 500 * time.Millisecond

	headerAuditReason = "X-Audit-Log-Reason"
	maxErrorBody      = 1 << 20
)

// Client talks to Discord's REST API on behalf of one bot token. It is safe
// for concurrent use.
type Client struct {
	token     string
	baseURL   string
	userAgent string
	http      *http.Client
	timeout   time.Duration

	retries    int
	resetWait  time.Duration
	serverWait time.Duration
	globalRate float64

	breakerThreshold int
	breakerReset     time.Duration

	limits  *rateLimiter
	breaker *CircuitBreaker
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// New creates a client authorised with a bot token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:            token,
		baseURL:          DefaultBaseURL,
		userAgent:        version.UserAgent(),
		retries:          DefaultRetries,
		resetWait:        DefaultResetWait,
		serverWait:       DefaultServerWait,
		globalRate:       DefaultGlobalRate,
		breakerThreshold: 5,
		breakerReset:     30 * time.Second,
		logger:           xlog.WithComponent("rest"),
		tracer:           telemetry.Tracer("github.com/ManuGH/retux/pkg/rest"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpx.NewClient(c.timeout, httpx.WithTracing())
	}
	if c.retries < 1 {
		c.retries = 1
	}
	c.limits = newRateLimiter(c.globalRate, c.logger)
	c.breaker = NewCircuitBreaker("discord_rest", c.breakerThreshold, c.breakerReset)
	return c
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Breaker exposes the circuit breaker state for status reporting.
func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// Request sends payload to route and returns the raw JSON body. GET and
// DELETE payloads become query parameters; other methods send JSON. A 204
// yields a nil body.
func (c *Client) Request(ctx context.Context, route Route, payload any, opts ...RequestOption) (json.RawMessage, error) {
	ro := requestOptions{retries: c.retries}
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.retries < 1 {
		ro.retries = 1
	}

	query, body, err := encodePayload(route, payload)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	ctx = xlog.ContextWithRequestID(ctx, requestID)
	ctx, span := c.tracer.Start(ctx, "discord "+route.Method+" "+route.Path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(telemetry.HTTPAttributes(route.Method, route.Path, 0)...)
	span.SetAttributes(telemetry.RouteAttributes(c.limits.bucketFor(route), route.GuildID, route.ChannelID)...)

	logger := xlog.WithContext(ctx, c.logger)
	serverBackoff := backoff.NewExponentialBackOff()
	serverBackoff.InitialInterval = c.serverWait
	serverBackoff.MaxInterval = 10 * c.serverWait

	var lastErr error
	for attempt := 1; attempt <= ro.retries; attempt++ {
		bucket := c.limits.bucketFor(route)
		if err := c.limits.wait(ctx, bucket); err != nil {
			return nil, c.fail(span, fmt.Errorf("rest: %s: waiting for rate limit: %w", route, err))
		}

		var resp *response
		started := time.Now()
		execErr := c.breaker.Execute(func() error {
			r, err := c.send(ctx, route, query, body, ro)
			if err != nil {
				return err
			}
			resp = r
			if r.status >= 500 {
				return ErrServer
			}
			return nil
		})

		if errors.Is(execErr, ErrCircuitOpen) {
			return nil, c.fail(span, fmt.Errorf("rest: %s: %w", route, ErrCircuitOpen))
		}

		if resp == nil {
			metrics.ObserveRESTRequest(route.Method, route.Path, 0, time.Since(started))
			logger.Debug().Str(xlog.FieldMethod, route.Method).Str(xlog.FieldRoute, route.Path).
				Int(xlog.FieldAttempt, attempt).Err(execErr).Msg("discord request failed")
			if ctx.Err() != nil {
				return nil, c.fail(span, fmt.Errorf("rest: %s: %w", route, ctx.Err()))
			}
			lastErr = fmt.Errorf("rest: %s: %w: %w", route, ErrUnavailable, execErr)
			if !isConnReset(execErr) {
				return nil, c.fail(span, lastErr)
			}
			if attempt < ro.retries {
				metrics.IncRetry("connection_reset")
				logger.Warn().Dur(xlog.FieldRetryAfter, c.resetWait).Msg("connection reset by Discord, pausing before retry")
				if err := sleep(ctx, c.resetWait); err != nil {
					return nil, c.fail(span, fmt.Errorf("rest: %s: %w", route, err))
				}
			}
			continue
		}

		metrics.ObserveRESTRequest(route.Method, route.Path, resp.status, time.Since(started))
		bucket = c.limits.observe(route, resp.header)
		span.SetAttributes(telemetry.HTTPAttributes(route.Method, route.Path, resp.status)...)
		logger.Debug().
			Str(xlog.FieldMethod, route.Method).
			Str(xlog.FieldRoute, route.Path).
			Str(xlog.FieldBucket, bucket).
			Int(xlog.FieldStatus, resp.status).
			Int(xlog.FieldAttempt, attempt).
			Dur("duration", time.Since(started)).
			Msg("discord request")

		switch {
		case resp.status == http.StatusTooManyRequests:
			wait, global := parse429(resp.header, resp.body)
			lastErr = newHTTPError(route, resp.status, resp.body)
			if global {
				metrics.IncRateLimited(scopeGlobal)
				logger.Warn().Dur(xlog.FieldRetryAfter, wait).Msg("global rate limit hit, locking down all requests")
				c.limits.lockGlobal(wait)
			} else {
				metrics.IncRateLimited(scopeBucket)
				logger.Warn().Str(xlog.FieldBucket, bucket).Dur(xlog.FieldRetryAfter, wait).Msg("bucket rate limit hit, locking down route")
				c.limits.lockBucket(bucket, wait)
			}
			metrics.IncRetry("rate_limited")

		case resp.status >= 500:
			lastErr = newHTTPError(route, resp.status, resp.body)
			if attempt < ro.retries {
				metrics.IncRetry("server_error")
				if err := sleep(ctx, serverBackoff.NextBackOff()); err != nil {
					return nil, c.fail(span, fmt.Errorf("rest: %s: %w", route, err))
				}
			}

		case resp.status >= 400:
			return nil, c.fail(span, newHTTPError(route, resp.status, resp.body))

		default:
			if hasErrorsKey(resp.body) {
				return nil, c.fail(span, newHTTPError(route, resp.status, resp.body))
			}
			if resp.status == http.StatusNoContent || len(resp.body) == 0 {
				return nil, nil
			}
			return json.RawMessage(resp.body), nil
		}
	}
	return nil, c.fail(span, lastErr)
}

func (c *Client) send(ctx context.Context, route Route, query url.Values, body []byte, ro requestOptions) (*response, error) {
	target := route.URL(c.baseURL)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, route.Method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if ro.reason != "" {
		req.Header.Set(headerAuditReason, url.PathEscape(ro.reason))
	}
	for k, vs := range ro.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &response{status: res.StatusCode, header: res.Header, body: data}, nil
}

func (c *Client) fail(span trace.Span, err error) error {
	if err == nil {
		return nil
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func encodePayload(route Route, payload any) (url.Values, []byte, error) {
	if payload == nil {
		return nil, nil, nil
	}
	if route.bodyless() {
		q, err := toQuery(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("rest: %s: encode query: %w", route, err)
		}
		return q, nil, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("rest: %s: encode body: %w", route, err)
	}
	return nil, body, nil
}

// toQuery flattens a payload into query parameters. Structs and maps go
// through their JSON form so struct tags name the parameters.
func toQuery(payload any) (url.Values, error) {
	switch p := payload.(type) {
	case url.Values:
		return p, nil
	case map[string]string:
		q := make(url.Values, len(p))
		for k, v := range p {
			q.Set(k, v)
		}
		return q, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("payload must encode to a JSON object: %w", err)
	}
	q := make(url.Values, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case nil:
		case string:
			q.Set(k, val)
		case bool:
			q.Set(k, strconv.FormatBool(val))
		case float64:
			q.Set(k, strconv.FormatFloat(val, 'f', -1, 64))
		case []any:
			for _, item := range val {
				q.Add(k, fmt.Sprint(item))
			}
		default:
			q.Set(k, fmt.Sprint(val))
		}
	}
	return q, nil
}

func hasErrorsKey(body []byte) bool {
	if len(body) == 0 || body[0] != '{' {
		return false
	}
	var probe struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	return len(probe.Errors) > 0 && string(probe.Errors) != "null"
}

func isConnReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF)
}

// decode unmarshals a response body into T.
func decode[T any](raw json.RawMessage, route Route) (*T, error) {
	var out T
	if len(raw) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("rest: %s: %w: %w", route, ErrBadResponse, err)
	}
	return &out, nil
}
