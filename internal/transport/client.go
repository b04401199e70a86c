package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/agentstation/locsync/pkg/constants"
	"github.com/agentstation/locsync/pkg/errors"
)

// Config configures a Client for one remote system.
type Config struct {
	// System tags errors with the side of the sync they came from.
	System errors.System

	// Timeout for individual requests (default: 30s).
	Timeout time.Duration

	// VerifyTLS enables certificate verification. Off by default because
	// both appliances commonly run with self-signed certificates.
	VerifyTLS bool

	// ProxyURL routes requests through an HTTP proxy; empty uses the environment.
	ProxyURL string

	// MaxRetries is the number of immediate retries for GET requests.
	MaxRetries int

	// RateLimit requests per second; zero disables limiting.
	RateLimit float64

	// RateBurst maximum burst size.
	RateBurst int

	// Transport allows injecting a custom round tripper (for tests).
	Transport http.RoundTripper

	// Logger receives retry and request diagnostics.
	Logger *zerolog.Logger
}

// Client provides HTTP client functionality with authentication, rate
// limiting, and a small retry allowance for reads.
type Client struct {
	cfg     Config
	http    *http.Client
	auth    Authenticator
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

// New creates a new transport client with the specified authenticator.
func New(cfg Config, auth Authenticator) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultHTTPTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if auth == nil {
		auth = &NoAuth{}
	}

	rt := cfg.Transport
	if rt == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		// #nosec G402 -- verification is an explicit operator setting
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS}
		if cfg.ProxyURL != "" {
			proxy, err := url.Parse(cfg.ProxyURL)
			if err != nil {
				return nil, errors.NewValidationError("proxy", cfg.ProxyURL, err.Error())
			}
			tr.Proxy = http.ProxyURL(proxy)
		}
		rt = tr
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = constants.DefaultRateBurst
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if cfg.Transport == nil && !cfg.VerifyTLS {
		logger.Warn().Str("system", string(cfg.System)).Msg("TLS certificate verification is disabled")
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout, Transport: rt},
		auth:    auth,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// AuthMethod returns the name of the configured authentication scheme.
func (c *Client) AuthMethod() string {
	return c.auth.Method()
}

// Get performs a GET request, retrying immediately on network errors,
// 429 and 5xx responses. The last response is returned as-is so the
// caller can decode its status.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, errors.NewValidationError("url", rawURL, err.Error())
		}

		resp, err := c.do(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.NewUnavailableError(c.cfg.System, "GET "+redact(req.URL), ctx.Err())
			}
			lastErr = err
			c.logger.Warn().Err(err).Int("attempt", attempt+1).Str("system", string(c.cfg.System)).Msg("Request failed")
			continue
		}

		if retryableStatus(resp.StatusCode) && attempt < c.cfg.MaxRetries {
			c.logger.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Str("system", string(c.cfg.System)).Msg("Retrying request")
			drain(resp)
			continue
		}
		return resp, nil
	}

	return nil, errors.NewUnavailableError(c.cfg.System, "GET "+rawURL, lastErr)
}

// PutJSON sends body as JSON in a single attempt. Writes are never retried.
func (c *Client) PutJSON(ctx context.Context, rawURL string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.WrapParse("json", "request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, rawURL, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.NewValidationError("url", rawURL, err.Error())
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, errors.NewUnavailableError(c.cfg.System, "PUT "+redact(req.URL), err)
	}
	return resp, nil
}

// do applies headers, authentication and rate limiting, then sends req.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.UserAgent)
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}
	c.auth.Apply(req)

	c.logger.Debug().Str("method", req.Method).Str("url", redact(req.URL)).Str("system", string(c.cfg.System)).Msg("HTTP request")
	return c.http.Do(req)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, constants.MaxErrorBodyLength))
	_ = resp.Body.Close()
}

// redact drops user info from a URL before it is logged.
func redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Redacted()
}
