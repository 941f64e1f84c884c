package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"nftmarket/internal/config"
	"nftmarket/internal/requests"
	"nftmarket/internal/resilience"
	"nftmarket/internal/telemetry"
)

const maxBodySize = 4 << 20

// ServiceClient sends typed requests to the backend and decodes JSON answers.
type ServiceClient struct {
	cfg     *config.Config
	client  *http.Client
	breaker *resilience.CircuitBreaker
	limiter *rate.Limiter
}

type Option func(*ServiceClient)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *ServiceClient) { s.client = c }
}

func NewServiceClient(cfg *config.Config, opts ...Option) *ServiceClient {
	s := &ServiceClient{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: telemetry.NewTransport(nil),
		},
		breaker: resilience.NewCircuitBreaker("backend", cfg.BreakerThreshold, cfg.BreakerTimeout),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send performs req and decodes the response into target (which may be nil).
// Non-idempotent requests are attempted exactly once.
func (s *ServiceClient) Send(ctx context.Context, req requests.Request, target any) error {
	ctx = telemetry.WithEndpoint(ctx, req.Name)

	attempts := 1
	if req.Idempotent {
		attempts = s.cfg.RetryAttempts
	}

	err := resilience.Retry(ctx, attempts, s.cfg.RetryDelay, func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return resilience.Permanent(&TransportError{Endpoint: req.Name, Err: err})
		}
		err := s.breaker.Execute(func() error {
			return s.do(ctx, req, target)
		})
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return resilience.Permanent(&TransportError{Endpoint: req.Name, Err: err})
		}
		return err
	})
	if err != nil {
		slog.Debug("Backend request failed", "endpoint", req.Name, "error", err)
	}
	return err
}

func (s *ServiceClient) do(ctx context.Context, req requests.Request, target any) error {
	httpReq, err := req.Build(ctx, s.cfg.BaseURL, s.cfg.Token)
	if err != nil {
		return resilience.Permanent(err)
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := s.client.Do(httpReq)
	if err != nil {
		terr := &TransportError{Endpoint: req.Name, Err: err}
		if ctx.Err() != nil {
			return resilience.Permanent(terr)
		}
		return terr
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return &HTTPStatusError{Endpoint: req.Name, StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resilience.Permanent(&HTTPStatusError{Endpoint: req.Name, StatusCode: resp.StatusCode})
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(target); err != nil {
		return resilience.Permanent(&ParseError{Endpoint: req.Name, Err: fmt.Errorf("decode: %w", err)})
	}
	return nil
}
