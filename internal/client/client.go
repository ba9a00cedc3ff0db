// Package client wraps the meal plan and recipe endpoints of the backend.
// Both services are stateless: every call is one HTTP request bounded by
// Config.Timeout and the caller's context.
package client

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fdg312/mealcraft/internal/config"
)

const defaultTimeout = 10 * time.Second

// ErrTransport marks failures where no HTTP response was received.
var ErrTransport = errors.New("transport error")

// StatusError is returned for non-2xx responses. The body is not parsed.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64 // 0 disables pacing
}

// ConfigFrom takes the client section of the app config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		BaseURL:       cfg.APIBaseURL,
		Timeout:       cfg.APITimeout(),
		RatePerSecond: cfg.APIRatePerSecond,
	}
}

// Client holds the two services sharing one transport.
type Client struct {
	MealPlans *MealPlans
	Recipes   *Recipes
}

// New builds both services. httpClient may be nil.
func New(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	t := newTransport(cfg, httpClient, logger)
	return &Client{
		MealPlans: &MealPlans{t: t},
		Recipes:   &Recipes{t: t},
	}
}

type transport struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

func newTransport(cfg Config, httpClient *http.Client, logger *zap.Logger) *transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := *httpClient
	c.Timeout = timeout

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = config.DefaultAPIBaseURL
	}

	t := &transport{
		base:   base,
		http:   &c,
		logger: logger.Named("client"),
	}
	if cfg.RatePerSecond > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return t
}

// do sends one request and decodes a 2xx JSON body into out (when non-nil).
func (t *transport) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	raw, err := t.send(ctx, method, path, query, body, "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.logger.Error("decode response failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (t *transport) send(ctx context.Context, method, path string, query url.Values, body any, accept string) ([]byte, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
		}
	}

	u := t.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := t.http.Do(req)
	if err != nil {
		t.logger.Error("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		serr := &StatusError{StatusCode: resp.StatusCode, Method: method, Path: path}
		t.logger.Error("unexpected status", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, serr
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.logger.Error("read response failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: read %s %s: %v", ErrTransport, method, path, err)
	}

	t.logger.Debug("request", zap.String("method", method), zap.String("path", path),
		zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(start)))
	return raw, nil
}
