package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/feral-file/ff-collectibles/internal/logger"
)

// ErrProxyClosed is returned for requests submitted after Close
var ErrProxyClosed = errors.New("rate limit proxy closed")

// RequestFunc is a function that performs the actual API request
type RequestFunc func(ctx context.Context) (interface{}, error)

// ProviderConfig holds the token bucket settings for one provider
type ProviderConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Config holds the rate limiter configuration keyed by provider name
type Config struct {
	Providers map[string]ProviderConfig
}

// Proxy defines the interface for rate-limiting proxy
//
//go:generate mockgen -source=proxy.go -destination=../mocks/ratelimit_proxy.go -package=mocks -mock_names=Proxy=MockRateLimitProxy
type Proxy interface {
	// Request waits for the provider's rate limit and executes fn
	Request(ctx context.Context, providerName string, fn RequestFunc) (interface{}, error)

	// Close rejects further requests
	Close() error
}

// proxy is the concrete implementation of the rate-limiting proxy
type proxy struct {
	limiters  map[string]*rate.Limiter
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewProxy creates a new rate-limiting proxy
func NewProxy(cfg Config) (Proxy, error) {
	limiters := make(map[string]*rate.Limiter, len(cfg.Providers))
	for name, providerConfig := range cfg.Providers {
		if providerConfig.RequestsPerSecond <= 0 {
			return nil, fmt.Errorf("invalid requests_per_second for provider %s: %v", name, providerConfig.RequestsPerSecond)
		}
		burst := max(providerConfig.Burst, 1)
		limiters[name] = rate.NewLimiter(rate.Limit(providerConfig.RequestsPerSecond), burst)
	}

	logger.Info("Rate limit proxy initialized", zap.Int("providers", len(limiters)))

	return &proxy{limiters: limiters}, nil
}

// Request waits for the provider's rate limit and executes fn.
// Providers without a configured limit are not throttled.
func (p *proxy) Request(ctx context.Context, providerName string, fn RequestFunc) (interface{}, error) {
	if p.closed.Load() {
		return nil, ErrProxyClosed
	}

	if limiter, ok := p.limiters[providerName]; ok {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait for %s: %w", providerName, err)
		}
	} else {
		logger.DebugCtx(ctx, "No rate limit configured for provider", zap.String("provider", providerName))
	}

	return fn(ctx)
}

// Close rejects further requests
func (p *proxy) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
	})
	return nil
}

// Request submits a rate-limited request for execution and returns the result with type safety
func Request[T any](ctx context.Context, p Proxy, providerName string, fn func(ctx context.Context) (T, error)) (T, error) {
	// If proxy is nil, execute the function directly
	if p == nil {
		return fn(ctx)
	}

	var zero T
	result, err := p.Request(ctx, providerName, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected result type %T from provider %s", result, providerName)
	}
	return typed, nil
}
