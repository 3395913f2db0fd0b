// Package remote is the JSON-over-HTTP client for the Mueblix REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/blackstar01-dark/mueblix/internal/logger"
	"github.com/blackstar01-dark/mueblix/internal/metrics"
)

const maxResponseBody = 4 << 20 // 4MB

type Options struct {
	BaseURL string
	// RateLimit is the outbound requests per second; zero disables limiting.
	RateLimit       float64
	RateBurst       int
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	Transport       http.RoundTripper
	Metrics         *metrics.Metrics
	Logger          logrus.FieldLogger
}

type Request struct {
	// Endpoint labels the call in logs and metrics, e.g. "catalog.list".
	Endpoint string
	Method   string
	Path     string
	Query    url.Values
	Body     any
	// Token is sent as a bearer credential when non-empty.
	Token  string
	Header http.Header
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*Response]
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host are required", opts.BaseURL)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}

	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	c := &Client{
		baseURL: base,
		// no client-wide timeout: every call is bounded by its context
		http:    &http.Client{Transport: otelhttp.NewTransport(transport)},
		limiter: rate.NewLimiter(limit, burst),
		metrics: opts.Metrics,
		log:     log,
	}
	c.breaker = gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:    "remote-api",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state changed")
		},
	})
	return c, nil
}

// breakerSuccess counts only transport failures and server faults against the
// remote; a 4xx is a healthy server saying no.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Definitive()
	}
	return errors.Is(err, context.Canceled)
}

// Do issues a single request. Non-2xx responses come back as *StatusError; the
// response is returned alongside it. Nothing is retried.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.ObserveRemote(req.Endpoint, "cancelled")
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	resp, err := c.breaker.Execute(func() (*Response, error) {
		return c.roundTrip(httpReq)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.metrics.ObserveRemote(req.Endpoint, outcome(err))
	if err != nil {
		logger.FromContext(ctx, c.log).WithError(err).WithFields(logrus.Fields{
			"endpoint": req.Endpoint,
			"method":   httpReq.Method,
			"path":     httpReq.URL.Path,
		}).Warn("remote request failed")
	}
	return resp, err
}

// DoJSON issues the request and decodes a 2xx body into out.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, req.Endpoint, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", req.Endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", req.Endpoint, err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	return httpReq, nil
}

func (c *Client) roundTrip(httpReq *http.Request) (*Response, error) {
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := httpReq.Context().Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrNetwork, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
	}

	resp := &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   body,
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return resp, newStatusError(resp)
	}
	return resp, nil
}

func newStatusError(resp *Response) *StatusError {
	statusErr := &StatusError{Code: resp.Status}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return statusErr
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		statusErr.malformed = true
		return statusErr
	}
	statusErr.Message = payload.Message
	return statusErr
}

func outcome(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("status_%dxx", statusErr.Code/100)
	case errors.Is(err, ErrUnavailable):
		return "breaker_open"
	default:
		return "network_error"
	}
}
