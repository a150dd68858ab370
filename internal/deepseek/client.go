// Package deepseek implements a single-shot client for the DeepSeek
// Chat Completions API.
package deepseek

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// Client sends the fixed chat completion request. It carries no state
// between calls beyond its configuration.
type Client struct {
	apiKey   string
	endpoint string
	http     *resty.Client
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// WithTimeout bounds the whole exchange. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithTransport replaces the HTTP round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.SetTransport(rt) }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the given credential.
// It returns ErrMissingCredential when apiKey is blank.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}
	c := &Client{
		apiKey:   apiKey,
		endpoint: DefaultEndpoint,
		http:     resty.New(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Complete sends FixedRequest once and returns the first choice's content.
// Failures come back as *TransportError, *ParseError or *APIError.
func (c *Client) Complete(ctx context.Context) (string, error) {
	status, body, err := c.post(ctx, FixedRequest())
	if err != nil {
		return "", err
	}
	return Interpret(status, body)
}

func (c *Client) post(ctx context.Context, req ChatRequest) (int, []byte, error) {
	c.logger.DebugContext(ctx, "sending chat completion", "endpoint", c.endpoint, "model", req.Model)

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(c.endpoint)
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}

	c.logger.DebugContext(ctx, "chat completion response",
		"status", resp.StatusCode(), "bytes", len(resp.Body()), "elapsed", resp.Time())
	return resp.StatusCode(), resp.Body(), nil
}

// Interpret classifies a response body. The HTTP status is only carried
// along for diagnostics; the body alone decides the outcome.
func Interpret(status int, body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", &ParseError{StatusCode: status, Raw: body}
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() || !root.Get("choices").IsArray() {
		return "", &APIError{StatusCode: status, Body: body}
	}

	// A null content (e.g. a tool-call-only choice) has nothing to print.
	content := root.Get("choices.0.message.content")
	if !content.Exists() || content.Type == gjson.Null {
		return "", &APIError{StatusCode: status, Body: body}
	}
	return content.String(), nil
}
