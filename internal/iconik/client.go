package iconik

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"assetgate/internal/logging"
	"assetgate/internal/services"
)

const (
	apiPrefix       = "/API/"
	defaultPerPage  = "100"
	maxErrorBodyLen = 4096
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config contains connection settings for the catalog API.
type Config struct {
	BaseURL      string
	AppID        string
	AuthToken    string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP transport.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger attaches a logger for request tracing and retry warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "iconik")
	}
}

// Client is a typed JSON client for the catalog REST API.
type Client struct {
	baseURL      string
	appID        string
	authToken    string
	maxRetries   int
	retryBackoff time.Duration
	http         HTTPDoer
	logger       *slog.Logger
}

// NewClient constructs a Client. Without WithHTTPClient it uses an
// http.Client bounded by cfg.Timeout.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		appID:        strings.TrimSpace(cfg.AppID),
		authToken:    strings.TrimSpace(cfg.AuthToken),
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: cfg.RetryBackoff,
		http:         &http.Client{Timeout: timeout},
		logger:       logging.NewComponentLogger(nil, "iconik"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doJSONRequest sends body as JSON and decodes the response into out,
// retrying transient failures with exponential backoff. POSTs create records,
// so they are only retried when the server cannot have acted on them.
func (c *Client) doJSONRequest(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	attempts := c.maxRetries + 1
	for attempt := 1; ; attempt++ {
		err := c.doOnce(ctx, method, path, query, payload, body != nil, out)
		if err == nil {
			return nil
		}
		if attempt >= attempts || ctx.Err() != nil || !retryAllowed(method, err) {
			return err
		}
		delay := c.retryBackoff << (attempt - 1)
		logging.WarnWithContext(ctx, c.logger, "request failed, retrying", "request_retry",
			logging.String("method", method),
			logging.String("path", path),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "transient catalog failure; retrying automatically"),
			logging.String(logging.FieldImpact, "request delayed"),
		)
		if err := SleepWithContext(ctx, delay); err != nil {
			return err
		}
	}
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte, hasBody bool, out any) error {
	endpoint := c.baseURL + apiPrefix + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if hasBody {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("App-ID", c.appID)
	req.Header.Set("Auth-Token", c.authToken)
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if !logging.IsQuiet(ctx) {
		c.logger.DebugContext(ctx, "catalog request",
			logging.String("method", method),
			logging.String("path", path),
			logging.Int("status", resp.StatusCode),
			logging.Duration("elapsed", time.Since(start)),
			logging.String(logging.FieldCorrelationID, requestID),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func listQuery(extra url.Values) url.Values {
	q := url.Values{"per_page": {defaultPerPage}}
	for k, v := range extra {
		q[k] = v
	}
	return q
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
