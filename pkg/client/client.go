// Package client provides the Pulse HTTP client: bearer authentication,
// page fetching, envelope decoding, and error surfacing for the
// pagination engine.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/pulse-api-client/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for Pulse API requests.
var (
	pulseRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_requests_total",
		Help: "Total Pulse API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	pulseRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_request_duration_seconds",
		Help:    "Pulse API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	pulseRequestErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_request_errors_total",
		Help: "Total failed Pulse API page fetches by reason",
	}, []string{"reason"})
)

// Failure reasons used as the pulse_request_errors_total label.
const (
	reasonNetwork = "network"
	reasonStatus  = "status"
	reasonDecode  = "decode"
)

// Default configuration values applied by New.
const (
	DefaultUserAgent = "pulse-api-client/1.0"
	DefaultMaxPages  = 3
	DefaultTimeout   = 30 * time.Second
)

// Client is the Pulse API client. It is safe for concurrent use: traversals
// share the transport and credential but never share traversal state.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the root of the Pulse API, e.g. "https://api.pulse.example.com/v1".
	BaseURL string

	// Token is the bearer credential sent with every request.
	Token string

	// UserAgent identifies the integration to the API.
	UserAgent string

	// DefaultMaxPages bounds traversals whose callers do not pick a policy.
	DefaultMaxPages int

	// Timeout bounds each individual page request.
	Timeout time.Duration
}

// DefaultConfig returns a configuration with safe defaults for the given
// API root and credential.
func DefaultConfig(baseURL, token string) Config {
	return Config{
		BaseURL:         baseURL,
		Token:           token,
		UserAgent:       DefaultUserAgent,
		DefaultMaxPages: DefaultMaxPages,
		Timeout:         DefaultTimeout,
	}
}

// New creates a Pulse client. Missing or invalid configuration is rejected
// here, before any traversal begins.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	if cfg.DefaultMaxPages < 0 {
		return nil, fmt.Errorf("default max pages must be positive (got %d)", cfg.DefaultMaxPages)
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.DefaultMaxPages == 0 {
		cfg.DefaultMaxPages = DefaultMaxPages
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	logger := log.With().Str("component", "pulse-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// envelope is the wire shape of one page: a data array and a nullable cursor.
// A missing $data field is an empty page; a missing or null $next means the
// server has no more data.
type envelope struct {
	Data []json.RawMessage `json:"$data"`
	Next *string           `json:"$next"`
}

// FetchPage performs a single GET against url and decodes the page envelope.
// The URL is used verbatim, so it serves both the first request of a
// traversal and every server-issued cursor after it. Failures of any kind
// come back as *APIError carrying the URL that failed.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (pagination.Page[json.RawMessage], error) {
	endpoint := endpointLabel(pageURL)

	startTime := time.Now()
	defer func() {
		pulseRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return pagination.Page[json.RawMessage]{}, &APIError{
			URL:     pageURL,
			Message: "build request",
			Err:     err,
		}
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	c.logger.Debug().
		Str("endpoint", endpoint).
		Msg("Fetching page")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		pulseRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		pulseRequestErrorsTotal.WithLabelValues(reasonNetwork).Inc()
		c.logger.Error().
			Err(err).
			Str("endpoint", endpoint).
			Msg("Page request failed")
		return pagination.Page[json.RawMessage]{}, &APIError{
			URL:     pageURL,
			Message: "request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	pulseRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		pulseRequestErrorsTotal.WithLabelValues(reasonStatus).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("Pulse API returned error status")
		return pagination.Page[json.RawMessage]{}, &APIError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		pulseRequestErrorsTotal.WithLabelValues(reasonDecode).Inc()
		c.logger.Error().
			Err(err).
			Str("endpoint", endpoint).
			Msg("Page envelope decode failed")
		return pagination.Page[json.RawMessage]{}, &APIError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Message:    "decode page envelope",
			Err:        err,
		}
	}

	page := pagination.Page[json.RawMessage]{Data: env.Data}
	if env.Next != nil {
		page.Next = *env.Next
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("records", len(page.Data)).
		Bool("has_next", page.Next != "").
		Msg("Page fetched")

	return page, nil
}

// endpointLabel reduces a page URL to its path so that per-cursor query
// strings do not explode metric label cardinality.
func endpointLabel(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Path == "" {
		return "unknown"
	}
	return u.Path
}
