package app

import (
	"fmt"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collectibles/internal/adapter"
	"github.com/feral-file/ff-collectibles/internal/aggregator"
	"github.com/feral-file/ff-collectibles/internal/collectibles"
	"github.com/feral-file/ff-collectibles/internal/config"
	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/logger"
	"github.com/feral-file/ff-collectibles/internal/materializer"
	"github.com/feral-file/ff-collectibles/internal/providers/solana"
	"github.com/feral-file/ff-collectibles/internal/providers/vendors/opensea"
	"github.com/feral-file/ff-collectibles/internal/ratelimit"
	"github.com/feral-file/ff-collectibles/internal/registry"
	"github.com/feral-file/ff-collectibles/internal/uri"
)

// Runtime holds the wired aggregation pipeline and the resources it owns
type Runtime struct {
	Aggregator aggregator.Aggregator

	pool           pond.Pool
	rateLimitProxy ratelimit.Proxy
}

// New wires the chain pipelines described by the configuration
func New(cfg *config.AggregatorConfig) (*Runtime, error) {
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()
	httpClient := adapter.NewHTTPClient(cfg.Fetch.HTTPTimeout)

	// Load blacklist registry
	var blacklistRegistry registry.BlacklistRegistry
	if cfg.BlacklistPath != "" {
		var err error
		blacklistRegistry, err = registry.NewBlacklistRegistryLoader(fs, jsonAdapter).Load(cfg.BlacklistPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load blacklist registry: %w", err)
		}
		logger.Info("Loaded blacklist registry", zap.String("path", cfg.BlacklistPath))
	} else {
		logger.Warn("Blacklist registry path not configured, all contracts will be allowed")
	}

	rateLimitProxy, err := ratelimit.NewProxy(ratelimit.Config{
		Providers: map[string]ratelimit.ProviderConfig{
			opensea.PROVIDER_NAME: {
				RequestsPerSecond: cfg.OpenSea.RequestsPerSecond,
				Burst:             cfg.OpenSea.Burst,
			},
			solana.PROVIDER_NAME: {
				RequestsPerSecond: cfg.Solana.RequestsPerSecond,
				Burst:             cfg.Solana.Burst,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit proxy: %w", err)
	}

	resolver := uri.NewResolver(httpClient, uri.Config{
		IPFSGateways:    cfg.Media.IPFSGateways,
		ArweaveGateways: cfg.Media.ArweaveGateways,
	})
	reconciler := collectibles.NewReconciler(
		collectibles.NewFilter(blacklistRegistry),
		materializer.New(httpClient, resolver),
		cfg.Fetch.MaterializerConcurrency,
	)

	pool := pond.NewPool(cfg.Fetch.PoolSize, pond.WithQueueSize(cfg.Fetch.QueueSize))

	if cfg.OpenSea.APIKey == "" {
		logger.Warn("OpenSea API key not configured, Ethereum requests will be rejected upstream")
	}
	openseaSource := opensea.NewSource(
		opensea.NewClient(httpClient, rateLimitProxy, cfg.OpenSea.APIURL, cfg.OpenSea.APIKey, jsonAdapter),
		opensea.SourceConfig{Chain: cfg.OpenSea.ChainID, MaxPages: cfg.OpenSea.MaxPages},
	)
	solanaSource := solana.NewSource(
		solana.NewClient(httpClient, rateLimitProxy, cfg.Solana.RPCURL, jsonAdapter),
		solana.SourceConfig{Chain: cfg.Solana.ChainID, MaxPages: cfg.Solana.MaxPages},
	)

	services := map[domain.Blockchain]collectibles.Service{
		domain.BlockchainEthereum: collectibles.NewService(openseaSource, reconciler, pool, collectibles.ServiceConfig{Limit: cfg.OpenSea.PageLimit}),
		domain.BlockchainSolana:   collectibles.NewService(solanaSource, reconciler, pool, collectibles.ServiceConfig{Limit: cfg.Solana.PageLimit}),
	}

	agg := aggregator.New(services, aggregator.RetryConfig{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: cfg.Retry.InitialInterval,
	})

	logger.Info("Collectibles pipeline ready",
		zap.String("opensea_chain", string(cfg.OpenSea.ChainID)),
		zap.String("solana_chain", string(cfg.Solana.ChainID)),
		zap.Int("pool_size", cfg.Fetch.PoolSize),
	)

	return &Runtime{
		Aggregator:     agg,
		pool:           pool,
		rateLimitProxy: rateLimitProxy,
	}, nil
}

// Close rejects further upstream requests and waits for queued fetches
func (r *Runtime) Close() {
	if err := r.rateLimitProxy.Close(); err != nil {
		logger.Warn("Failed to close rate limit proxy", zap.Error(err))
	}
	r.pool.StopAndWait()
}
