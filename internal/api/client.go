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
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/colthorp/aoclb/internal/core"
)

const maxBodyBytes = 10 << 20

var htmlMarker = []byte("<!doctype html")

// Client is the HTTP wrapper around the private leaderboard endpoint.
type Client struct {
	session    string
	year       string
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different host (tests, mirrors).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the timeout of the default *http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithTracer sets the tracer used for upstream spans.
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithLogger sets the logger used for request debugging.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new API client for one event year.
func NewClient(session, year string, opts ...ClientOption) *Client {
	c := &Client{
		session: session,
		year:    year,
		baseURL: core.DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: core.DefaultHTTPTimeout,
		},
		tracer: otel.Tracer("github.com/colthorp/aoclb/internal/api"),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Year returns the event year this client reads.
func (c *Client) Year() string {
	return c.year
}

// FetchLeaderboard performs one GET for the leaderboard and decodes it.
// It never retries; failures are returned as *TransportError, *RedirectError
// or ErrMalformedPayload.
func (c *Client) FetchLeaderboard(ctx context.Context, id string) (*RawLeaderboard, error) {
	url := core.LeaderboardURL(c.baseURL, c.year, id)

	ctx, span := c.tracer.Start(ctx, "upstream.fetch_leaderboard",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("leaderboard.id", id),
			attribute.String("leaderboard.year", c.year),
		))
	defer span.End()

	raw, status, err := c.fetch(ctx, url)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("leaderboard.members", len(raw.Members)))
	return raw, nil
}

func (c *Client) fetch(ctx context.Context, url string) (*RawLeaderboard, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: core.SessionCookie, Value: c.session})
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", core.UserAgent)

	c.logger.DebugContext(ctx, "upstream request", "method", req.Method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, &TransportError{
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Message:    "failed to read response body",
			Err:        err,
		}
	}

	c.logger.DebugContext(ctx, "upstream response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &TransportError{
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	if !json.Valid(body) && IsHTML(body) {
		return nil, resp.StatusCode, &RedirectError{URL: resp.Request.URL.String()}
	}

	raw, err := ParseLeaderboard(body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return raw, resp.StatusCode, nil
}

// IsHTML reports whether body carries an HTML document marker. Callers only
// consult it for bodies that are not valid JSON.
func IsHTML(body []byte) bool {
	return bytes.Contains(bytes.ToLower(body), htmlMarker)
}

// ParseLeaderboard decodes an upstream document. Syntax and type errors are
// reported as ErrMalformedPayload.
func ParseLeaderboard(body []byte) (*RawLeaderboard, error) {
	var raw RawLeaderboard
	if err := json.Unmarshal(body, &raw); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			return nil, fmt.Errorf("%w: invalid JSON at offset %d", ErrMalformedPayload, syntaxErr.Offset)
		case errors.As(err, &typeErr):
			return nil, fmt.Errorf("%w: field %q has unexpected type %s", ErrMalformedPayload, typeErr.Field, typeErr.Value)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &raw, nil
}
