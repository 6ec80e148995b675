package transport

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/packfinderz-client/pkg/config"
	pkgerrors "github.com/angelmondragon/packfinderz-client/pkg/errors"
	"github.com/angelmondragon/packfinderz-client/pkg/logger"
	"github.com/angelmondragon/packfinderz-client/pkg/metrics"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const tunnelBypassHeader = "ngrok-skip-browser-warning"

// TokenSource supplies the bearer credential attached to remote calls.
// An empty token means no live session; the call proceeds unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) string
}

// Request describes a single remote call.
type Request struct {
	Method string
	Path   string
	Body   any

	// Removal marks non-DELETE calls that semantically remove an object
	// (the qty-0 cart update), so a 404 "already absent" counts as done.
	Removal bool
}

// Response is the outcome of an executed call.
type Response struct {
	StatusCode    int
	Body          []byte
	LocalFallback bool
}

// Client is the request executor: it owns the timeout race, the
// retryable-vs-terminal classification, and the GET retry loop. Callers
// needing retry on mutations carry their own budget.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	tokens     TokenSource
	logg       *logger.Logger
	metrics    *metrics.TransportMetrics
	newID      func() string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTokenSource installs the session token source.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithMetrics installs transport counters.
func WithMetrics(m *metrics.TransportMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the executor from configuration.
func NewClient(api config.APIConfig, retryCfg config.RetryConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(api.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	client := &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		clientID:   api.ClientID,
		timeout:    api.RequestTimeout,
		maxRetries: retryCfg.MaxGetRetries,
		retryDelay: retryCfg.RetryDelay,
		logg:       logg,
		newID:      uuid.NewString,
	}
	if client.timeout <= 0 {
		client.timeout = 8 * time.Second
	}
	if client.maxRetries < 0 {
		client.maxRetries = 0
	}
	if client.retryDelay <= 0 {
		client.retryDelay = 600 * time.Millisecond
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Do executes the request. GET calls are retried on retryable failures
// up to the configured ceiling with a fixed delay; everything else gets
// exactly one attempt, since blind retries of non-idempotent writes risk
// duplicate side effects.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transport client not configured")
	}

	if req.Method != http.MethodGet {
		resp, err := c.attempt(ctx, req)
		c.record(req.Method, resp, err)
		return resp, err
	}

	backoff := retry.WithMaxRetries(uint64(c.maxRetries), retry.NewConstant(c.retryDelay))
	var resp *Response
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var attemptErr error
		resp, attemptErr = c.attempt(ctx, req)
		if attemptErr == nil {
			return nil
		}
		if pkgerrors.Retryable(attemptErr) {
			c.metrics.IncRetry(req.Method)
			return retry.RetryableError(attemptErr)
		}
		return attemptErr
	})
	c.record(req.Method, resp, err)
	return resp, err
}

func (c *Client) record(method string, resp *Response, err error) {
	switch {
	case err != nil:
		c.metrics.IncRequest(method, "failure")
	case resp != nil && resp.LocalFallback:
		c.metrics.IncRequest(method, "local_fallback")
		c.metrics.IncLocalFallback()
	default:
		c.metrics.IncRequest(method, "success")
	}
}

func (c *Client) attempt(parent context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, bodyReader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(tunnelBypassHeader, "true")
	if c.clientID != "" {
		httpReq.Header.Set("X-Client", c.clientID)
	}
	if req.Path != PathAdminBootstrap && c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.classifyTransportError(err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "read response body")
	}

	return c.classify(req, httpResp.StatusCode, body)
}

func (c *Client) classifyTransportError(err error) error {
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "request timed out")
	}
	var netErr net.Error
	if stdErrors.As(err, &netErr) && netErr.Timeout() {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "request timed out")
	}
	return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "request failed")
}

func (c *Client) classify(req Request, status int, body []byte) (*Response, error) {
	if status >= 200 && status < 300 {
		return &Response{StatusCode: status, Body: body}, nil
	}

	// Order creation must complete user-visibly even when the backend
	// write fails; a 5xx there becomes a locally synthesized receipt.
	if req.Method == http.MethodPost && req.Path == PathOrders && status >= 500 {
		receipt, err := json.Marshal(map[string]any{
			"id":     "local-" + c.newID(),
			"status": "processing",
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "synthesize order receipt")
		}
		return &Response{StatusCode: status, Body: receipt, LocalFallback: true}, nil
	}

	message := extractMessage(body)

	if status == http.StatusNotFound && (req.Method == http.MethodDelete || req.Removal) && indicatesAbsence(message) {
		return &Response{StatusCode: status}, nil
	}

	if req.Method == http.MethodGet && status >= 400 && status < 500 && indicatesEmptyCollection(message) {
		return &Response{StatusCode: status, Body: []byte("[]")}, nil
	}

	code := pkgerrors.FromStatus(status)
	if message == "" {
		message = pkgerrors.MetadataFor(code).PublicMessage
	}
	return nil, pkgerrors.New(code, message)
}

// Execute runs the request and decodes a successful body into T. A 204
// or empty body yields the zero value.
func Execute[T any](ctx context.Context, c *Client, req Request) (Result[T], error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return Fail[T](err), err
	}

	var data T
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			decodeErr := pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode response")
			return Fail[T](decodeErr), decodeErr
		}
	}
	if resp.LocalFallback {
		return OkFallback(data), nil
	}
	return Ok(data), nil
}
