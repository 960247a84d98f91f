package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phrazzld/scry-words/internal/api/middleware"
	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/redact"
)

// DefaultTimeout bounds every call when no WithTimeout option is given.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Client performs the service's operations over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	transport  http.RoundTripper
	tokens     middleware.TokenIssuer
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the base transport beneath the tracing and credential
// middleware. Tests pass httptest.Server.Client().Transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithTimeout bounds each call. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger; nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTokenIssuer signs username-scoped requests with bearer tokens.
func WithTokenIssuer(t middleware.TokenIssuer) Option {
	return func(c *Client) { c.tokens = t }
}

// NewClient creates a Client for the service rooted at baseURL
// (e.g. "http://localhost:8080/api").
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "api_client")
	c.httpClient = &http.Client{
		Transport: middleware.Chain(c.transport,
			middleware.Trace(c.logger),
			middleware.Credentials(c.tokens),
		),
	}
	return c, nil
}

// call describes one HTTP exchange.
type call struct {
	op      string
	method  string
	segs    []string // path segments below the base URL, escaped individually
	query   url.Values
	subject string // username the call acts for; empty for public routes
	body    any
	out     any
}

func (c *Client) endpoint(segs []string, query url.Values) string {
	escaped := make([]string, len(segs))
	for i, s := range segs {
		escaped[i] = url.PathEscape(s)
	}
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.Join(segs, "/")
	u.RawPath = c.baseURL.EscapedPath() + "/" + strings.Join(escaped, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs cl and normalizes every failure into an *Error.
func (c *Client) do(ctx context.Context, cl call) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if cl.subject != "" {
		ctx = middleware.WithSubject(ctx, cl.subject)
	}

	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return c.fail(ctx, cl, &Error{Op: cl.op, Message: MessageCommunication, Kind: ErrCommunication, Err: err})
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.endpoint(cl.segs, cl.query), body)
	if err != nil {
		return c.fail(ctx, cl, &Error{Op: cl.op, Message: MessageCommunication, Kind: ErrCommunication, Err: err})
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(ctx, cl, &Error{Op: cl.op, Message: MessageCommunication, Kind: ErrCommunication, Err: err})
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.fail(ctx, cl, &Error{Op: cl.op, Status: resp.StatusCode, Message: MessageCommunication, Kind: ErrCommunication, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(ctx, cl, statusError(cl.op, resp.StatusCode, raw))
	}

	if err := decodeBody(raw, cl.out); err != nil {
		return c.fail(ctx, cl, &Error{Op: cl.op, Status: resp.StatusCode, Message: MessageCommunication, Kind: ErrCommunication, Err: err})
	}
	return nil
}

// statusError builds the error for a non-2xx response, preferring the
// server's {"error": "..."} message.
func statusError(op string, status int, raw []byte) *Error {
	kind := ErrServer
	if status == http.StatusNotFound {
		kind = ErrNotFound
	}
	message := MessageRequestFailed
	var body shared.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Error) != "" {
		message = body.Error
	}
	return &Error{Op: op, Status: status, Message: message, Kind: kind}
}

// decodeBody parses a success body. Every success body must be JSON; an empty
// body is accepted only when no result is expected.
func decodeBody(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		if out == nil {
			return nil
		}
		return errors.New("empty response body")
	}
	if out == nil {
		var discard json.RawMessage
		out = &discard
	}
	return json.Unmarshal(raw, out)
}

// fail logs err against the operation and returns it unchanged.
func (c *Client) fail(ctx context.Context, cl call, err *Error) error {
	log := logger.FromContextOrDefault(ctx, c.logger)
	level := slog.LevelError
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		level = slog.LevelInfo
	}
	log.Log(ctx, level, "api request failed",
		"op", cl.op,
		"method", cl.method,
		"status", err.Status,
		"kind", err.Kind.Error(),
		"error", redact.Error(err))
	return err
}

// invalid rejects input before any request is made.
func (c *Client) invalid(ctx context.Context, op string, err error) error {
	return c.fail(ctx, call{op: op}, &Error{Op: op, Message: err.Error(), Kind: ErrValidation, Err: err})
}
