package upstream

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

	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
	"github.com/angelmondragon/lttsale-console/pkg/metrics"
)

const (
	defaultTimeout            = 15 * time.Second
	responseReadLimit   int64 = 16 << 20
	fallbackMessage           = "Request failed"
	unauthorizedMessage       = "Unauthorized"
)

// ErrNoServerMessage is the cause of failures whose response named no message, so
// callers can substitute their own wording for the generated one.
var ErrNoServerMessage = errors.New("upstream response carried no message")

// TokenSource supplies bearer tokens and recovers from an expired access token.
type TokenSource interface {
	AccessToken(ctx context.Context) string
	// Refresh replaces the token pair; stale is the access token the failed request carried.
	Refresh(ctx context.Context, stale string) bool
	// Expire tears the session down after a refresh could not recover it.
	Expire(ctx context.Context)
}

// Request describes one call against a backend.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Client issues JSON requests against one backend using the authenticated request protocol.
type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
	decoder    Decoder
	tokens     TokenSource
	logg       *logger.Logger
	metrics    *metrics.UpstreamMetrics
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

// WithTokenSource enables bearer auth and the refresh-once retry.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a client for the backend rooted at baseURL.
func NewClient(name, baseURL string, decoder Decoder, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%s base url %q must be absolute", name, baseURL)
	}
	if decoder == nil {
		return nil, fmt.Errorf("%s decoder is required", name)
	}

	client := &Client{
		name:       name,
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
		decoder:    decoder,
		logg:       logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Name identifies the backend in logs and metrics.
func (c *Client) Name() string {
	return c.name
}

// WithTokens returns a copy of the client bound to another session's tokens.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

// WithDecoder returns a copy of the client using another envelope decoder.
func (c *Client) WithDecoder(decoder Decoder) *Client {
	clone := *c
	if decoder != nil {
		clone.decoder = decoder
	}
	return &clone
}

// Do sends req and decodes the unwrapped payload into out (which may be nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "upstream client not configured")
	}

	var payload []byte
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		payload = encoded
	}

	token := c.accessToken(ctx)
	resp, err := c.send(ctx, req, payload, token)
	if err != nil {
		return err
	}

	if resp.status == http.StatusUnauthorized && c.tokens != nil {
		if !c.tokens.Refresh(ctx, token) {
			c.tokens.Expire(ctx)
			return pkgerrors.New(pkgerrors.CodeUnauthorized, unauthorizedMessage).
				WithDetails(map[string]any{"status": resp.status})
		}
		resp, err = c.send(ctx, req, payload, c.accessToken(ctx))
		if err != nil {
			return err
		}
	}

	return c.handle(ctx, req, resp, out)
}

type response struct {
	status int
	body   []byte
}

func (c *Client) accessToken(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken(ctx)
}

func (c *Client) send(ctx context.Context, req Request, payload []byte, token string) (*response, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upstream request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if id := RequestIDFrom(ctx); id != "" {
		httpReq.Header.Set(RequestIDHeader, id)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveRequest(c.name, method, 0, time.Since(started))
		c.logg.Error(ctx, fmt.Sprintf("%s %s %s failed", c.name, method, req.Path), err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallbackMessage)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
	c.metrics.ObserveRequest(c.name, method, resp.StatusCode, time.Since(started))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallbackMessage)
	}
	return &response{status: resp.StatusCode, body: raw}, nil
}

func (c *Client) handle(ctx context.Context, req Request, resp *response, out any) error {
	if resp.status == http.StatusNoContent {
		return nil
	}
	if resp.status < 200 || resp.status > 299 {
		message := c.decoder.ErrorMessage(resp.body)
		var cause error
		if message == "" {
			message = fmt.Sprintf("HTTP %d", resp.status)
			cause = ErrNoServerMessage
		}
		if resp.status >= http.StatusInternalServerError {
			c.logg.Warn(ctx, fmt.Sprintf("%s %s %s returned %d: %s", c.name, req.Method, req.Path, resp.status, message))
		}
		return pkgerrors.Wrap(codeForStatus(resp.status), cause, message).
			WithDetails(map[string]any{"status": resp.status})
	}
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	return c.decoder.Decode(resp.status, resp.body, out)
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	default:
		return pkgerrors.CodeUpstream
	}
}
