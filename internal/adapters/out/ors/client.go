// Package ors talks to OpenRouteService: the VROOM optimization endpoint and the
// Pelias geocoder. The api key travels with every call and is never stored.
package ors

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"dispatch/internal/pkg/metrics"
	"dispatch/internal/pkg/retry"

	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL         = "https://api.openrouteservice.org"
	DefaultCountry         = "BR"
	DefaultDialTimeout     = 10 * time.Second
	DefaultResponseTimeout = 60 * time.Second
	DefaultMaxAttempts     = 5
	DefaultBaseDelay       = time.Second
	DefaultMaxDelay        = 16 * time.Second
)

var (
	// ErrOptimizerFailed is returned when the optimizer could not produce an answer:
	// transient errors exhausted the attempts or the provider rejected the request.
	ErrOptimizerFailed = errors.New("route optimizer failed")
	// ErrOptimizerMalformedResponse is returned when the answer does not have the
	// expected shape. It is never retried.
	ErrOptimizerMalformedResponse = errors.New("route optimizer returned a malformed response")
	// ErrGeocoderFailed is returned when the geocoder could not be queried.
	ErrGeocoderFailed = errors.New("geocoder failed")
)

// Config holds the connection settings. Zero values fall back to the defaults.
type Config struct {
	BaseURL string
	// Country restricts geocoding results (ISO 3166 alpha-2).
	Country         string
	DialTimeout     time.Duration
	ResponseTimeout time.Duration
	Retry           retry.Policy
	Breaker         BreakerConfig
}

// Client implements ports.RouteOptimizer and ports.Geocoder.
type Client struct {
	http            *http.Client
	baseURL         string
	country         string
	responseTimeout time.Duration
	policy          retry.Policy
	breaker         *gobreaker.CircuitBreaker
	metrics         *metrics.Metrics
	logger          *slog.Logger
}

func NewClient(cfg Config, m *metrics.Metrics, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Country == "" {
		cfg.Country = DefaultCountry
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = DefaultResponseTimeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Retry.BaseDelay <= 0 {
		cfg.Retry.BaseDelay = DefaultBaseDelay
	}
	if cfg.Retry.MaxDelay <= 0 {
		cfg.Retry.MaxDelay = DefaultMaxDelay
	}
	if cfg.Retry.Retryable == nil {
		cfg.Retry.Retryable = IsTransient
	}

	logger = logger.With("component", "ors_client")

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: cfg.DialTimeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = cfg.DialTimeout
	transport.ResponseHeaderTimeout = cfg.ResponseTimeout

	return &Client{
		http:            &http.Client{Transport: transport},
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		country:         cfg.Country,
		responseTimeout: cfg.ResponseTimeout,
		policy:          cfg.Retry,
		breaker:         newBreaker(cfg.Breaker, m, logger),
		metrics:         m,
		logger:          logger,
	}
}
