package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/metrics"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 3
	defaultBackoffBase = 2 * time.Second
	maxResponseBytes   = 8 << 20
)

// HTTPClientOptions configures throttling, retries and the breaker for one remote service
type HTTPClientOptions struct {
	Service            string // metrics label: steam, tradeupspy
	Timeout            time.Duration
	VerifySSL          bool
	RequestsPerSecond  float64
	Burst              int
	MaxRetries         int
	BackoffBase        time.Duration
	BreakerMaxFailures int
	BreakerCoolDown    time.Duration
	DefaultHeaders     map[string]string
	Jar                http.CookieJar
	Clock              shared.Clock
}

// Request is one outbound call. Form, when set, is sent url-encoded as the body.
//
// Only GET and HEAD requests, or requests marked Idempotent, are resent after the
// server may have seen them. Any other request is retried on 429 and on dial
// failures alone; a dropped connection, an unreadable body or a 5xx is returned
// at once because the server may already have acted on it.
type Request struct {
	Method     string
	URL        string
	Endpoint   string
	Query      url.Values
	Form       url.Values
	Headers    map[string]string
	Idempotent bool
}

func (r Request) resendable() bool {
	switch r.Method {
	case "", http.MethodGet, http.MethodHead:
		return true
	}
	return r.Idempotent
}

// StatusError is returned for non-2xx responses that were not retried away
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, body)
}

// retryableError marks a failure worth another attempt
type retryableError struct {
	reason     string
	retryAfter time.Duration
	cause      error
}

func (e *retryableError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.reason, e.cause)
	}
	return e.reason
}

func (e *retryableError) Unwrap() error {
	return e.cause
}

// HTTPClient is the shared transport of the Steam and TradeUpSpy adapters:
// rate limited, retried with exponential backoff plus jitter, and guarded by a circuit breaker.
type HTTPClient struct {
	httpClient     *http.Client
	limiter        *rate.Limiter
	breaker        *CircuitBreaker
	service        string
	maxRetries     int
	backoffBase    time.Duration
	defaultHeaders map[string]string
	clock          shared.Clock
}

// NewHTTPClient creates a client; zero-valued options fall back to conservative defaults
func NewHTTPClient(opts HTTPClientOptions) *HTTPClient {
	if opts.Clock == nil {
		opts.Clock = shared.NewRealClock()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = defaultBackoffBase
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !opts.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // operator opt-out via api.verify_ssl
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			Jar:       opts.Jar,
		},
		limiter:        rate.NewLimiter(limit, opts.Burst),
		breaker:        NewCircuitBreaker(opts.Service, opts.BreakerMaxFailures, opts.BreakerCoolDown, opts.Clock),
		service:        opts.Service,
		maxRetries:     opts.MaxRetries,
		backoffBase:    opts.BackoffBase,
		defaultHeaders: opts.DefaultHeaders,
		clock:          opts.Clock,
	}
}

// Breaker exposes the circuit breaker for inspection
func (c *HTTPClient) Breaker() *CircuitBreaker {
	return c.breaker
}

// Do executes the request and returns the response body of a 2xx response.
// Client errors (4xx) are returned as *StatusError and do not trip the breaker.
func (c *HTTPClient) Do(ctx context.Context, req Request) ([]byte, error) {
	var body []byte
	var clientErr error

	err := c.breaker.Call(func() error {
		respBody, err := c.doWithRetry(ctx, req)
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode < 500 {
			clientErr = err
			return nil
		}
		body = respBody
		return err
	})
	if err != nil {
		return nil, err
	}
	if clientErr != nil {
		return nil, clientErr
	}
	return body, nil
}

func (c *HTTPClient) doWithRetry(ctx context.Context, req Request) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := addJitter(c.backoffBase * time.Duration(1<<(attempt-1)))
			var retryable *retryableError
			if errors.As(lastErr, &retryable) && retryable.retryAfter > 0 {
				delay = retryable.retryAfter
			}
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, err := c.attempt(ctx, req)
		if err == nil {
			return body, nil
		}

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		lastErr = err
		if attempt < c.maxRetries {
			metrics.RecordAPIRetry(c.service, req.Endpoint, retryable.reason)
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *HTTPClient) attempt(ctx context.Context, req Request) ([]byte, error) {
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	metrics.RecordRateLimitWait(c.service, time.Since(waitStart).Seconds())

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordAPIRequest(c.service, req.Endpoint, 0, time.Since(start).Seconds())
		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		}
		if !req.resendable() && !isDialError(err) {
			return nil, fmt.Errorf("request may have reached %s: %w", c.service, err)
		}
		return nil, &retryableError{reason: "network error", cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	metrics.RecordAPIRequest(c.service, req.Endpoint, resp.StatusCode, time.Since(start).Seconds())
	if err != nil {
		if !req.resendable() {
			return nil, fmt.Errorf("response from %s lost: %w", c.service, err)
		}
		return nil, &retryableError{reason: "read error", cause: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &retryableError{
			reason:     "rate limited (429)",
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode >= 500 && !req.resendable():
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	case resp.StatusCode >= 500:
		return nil, &retryableError{
			reason: fmt.Sprintf("server error (%d)", resp.StatusCode),
			cause:  &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)},
		}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

func (c *HTTPClient) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := req.URL
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	var body io.Reader
	if req.Form != nil {
		body = strings.NewReader(req.Form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range c.defaultHeaders {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.Form != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}

	return httpReq, nil
}

func (c *HTTPClient) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-c.clock.After(d):
		return nil
	}
}

// isDialError reports whether err happened while connecting, before any byte of the request was written
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// addJitter returns a duration between 50% and 150% of d
func addJitter(d time.Duration) time.Duration {
	jitter := 0.5 + rand.Float64()
	return time.Duration(float64(d) * jitter)
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}
