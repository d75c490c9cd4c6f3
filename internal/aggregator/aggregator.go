package aggregator

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collectibles/internal/collectibles"
	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/logger"
)

// Aggregator resolves the collectibles of wallets across every configured chain
//
//go:generate mockgen -source=aggregator.go -destination=../mocks/aggregator.go -package=mocks -mock_names=Aggregator=MockAggregator
type Aggregator interface {
	// GetAllCollectibles splits the wallets by chain and resolves every chain concurrently.
	// The snapshot is returned alongside a *PartialError when some chain failed.
	GetAllCollectibles(ctx context.Context, wallets []string) (*Snapshot, error)
}

// Snapshot holds the reconciled state of every chain that was resolved
type Snapshot struct {
	Chains map[domain.Blockchain]domain.CollectibleState
}

// Count returns the number of collectibles across all chains
func (s *Snapshot) Count() int {
	n := 0
	for _, state := range s.Chains {
		n += state.Count()
	}
	return n
}

// PartialError reports the chains whose pipeline failed.
// It matches domain.ErrAllChainsFailed when no attempted chain succeeded
// and domain.ErrPartialResult otherwise.
type PartialError struct {
	Errors map[domain.Blockchain]error
	all    bool
}

func (e *PartialError) Error() string {
	chains := make([]string, 0, len(e.Errors))
	for chain := range e.Errors {
		chains = append(chains, string(chain))
	}
	slices.Sort(chains)

	msg := domain.ErrPartialResult.Error()
	if e.all {
		msg = domain.ErrAllChainsFailed.Error()
	}
	for _, chain := range chains {
		msg += fmt.Sprintf("; %s: %v", chain, e.Errors[domain.Blockchain(chain)])
	}
	return msg
}

// Is matches the sentinel describing the outcome
func (e *PartialError) Is(target error) bool {
	if e.all {
		return target == domain.ErrAllChainsFailed
	}
	return target == domain.ErrPartialResult
}

// Unwrap exposes the per-chain errors
func (e *PartialError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, err := range e.Errors {
		errs = append(errs, err)
	}
	return errs
}

// RetryConfig configures the whole-cycle retry of one chain pipeline
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
}

type aggregator struct {
	services map[domain.Blockchain]collectibles.Service
	retry    RetryConfig
}

// New creates an aggregator over one pipeline per blockchain
func New(services map[domain.Blockchain]collectibles.Service, retry RetryConfig) Aggregator {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}
	return &aggregator{services: services, retry: retry}
}

type chainResult struct {
	chain domain.Blockchain
	state domain.CollectibleState
	err   error
}

// GetAllCollectibles splits the wallets by chain and resolves every chain concurrently
func (a *aggregator) GetAllCollectibles(ctx context.Context, wallets []string) (*Snapshot, error) {
	byChain := splitWallets(wallets)

	chains := make([]domain.Blockchain, 0, len(a.services)+len(byChain))
	for chain := range a.services {
		chains = append(chains, chain)
	}
	for chain := range byChain {
		if _, ok := a.services[chain]; !ok {
			chains = append(chains, chain)
		}
	}

	results := make([]chainResult, len(chains))
	var wg sync.WaitGroup
	for i, chain := range chains {
		chainWallets := byChain[chain]
		if len(chainWallets) == 0 {
			results[i] = chainResult{chain: chain, state: domain.CollectibleState{}}
			continue
		}

		svc, ok := a.services[chain]
		if !ok {
			results[i] = chainResult{chain: chain, err: fmt.Errorf("%w: %s", domain.ErrUnsupportedChain, chain)}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = chainResult{chain: chain, err: fmt.Errorf("chain pipeline panicked: %v", r)}
				}
			}()
			state, err := a.resolveChain(ctx, chain, svc, chainWallets)
			results[i] = chainResult{chain: chain, state: state, err: err}
		}()
	}
	wg.Wait()

	snapshot := &Snapshot{Chains: make(map[domain.Blockchain]domain.CollectibleState, len(results))}
	errs := make(map[domain.Blockchain]error)
	attempted := 0
	for _, res := range results {
		if len(byChain[res.chain]) > 0 {
			attempted++
		}
		if res.err != nil {
			errs[res.chain] = res.err
			logger.ErrorCtx(ctx, res.err,
				zap.String("chain", string(res.chain)),
				zap.Int("wallets", len(byChain[res.chain])),
			)
			continue
		}
		snapshot.Chains[res.chain] = res.state
	}

	if len(errs) == 0 {
		return snapshot, nil
	}

	return snapshot, &PartialError{Errors: errs, all: len(errs) == attempted}
}

// resolveChain runs the fetch-and-reconcile cycle of one chain, retrying it as a whole
func (a *aggregator) resolveChain(ctx context.Context, chain domain.Blockchain, svc collectibles.Service, wallets []string) (domain.CollectibleState, error) {
	b := backoff.NewExponentialBackOff()
	if a.retry.InitialInterval > 0 {
		b.InitialInterval = a.retry.InitialInterval
	}
	b.MaxElapsedTime = 0

	var state domain.CollectibleState
	operation := func() error {
		var err error
		state, err = svc.GetAllCollectibles(ctx, wallets)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Chain pipeline failed, retrying",
			zap.String("chain", string(chain)),
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(a.retry.MaxAttempts-1)), ctx)
	if err := backoff.RetryNotify(operation, policy, notifyOnError); err != nil {
		return nil, fmt.Errorf("%s: %w", chain, err)
	}

	return state, nil
}

// splitWallets normalizes the wallets and groups them by blockchain, dropping duplicates
func splitWallets(wallets []string) map[domain.Blockchain][]string {
	byChain := make(map[domain.Blockchain][]string)
	seen := make(map[string]struct{}, len(wallets))
	for _, wallet := range domain.NormalizeAddresses(wallets) {
		if wallet == "" {
			continue
		}
		if _, ok := seen[wallet]; ok {
			continue
		}
		seen[wallet] = struct{}{}
		chain := domain.AddressToBlockchain(wallet)
		byChain[chain] = append(byChain[chain], wallet)
	}
	return byChain
}
