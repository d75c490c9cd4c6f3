package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-collectibles/internal/adapter"
	"github.com/feral-file/ff-collectibles/internal/api/rest/dto"
	"github.com/feral-file/ff-collectibles/internal/app"
	"github.com/feral-file/ff-collectibles/internal/config"
	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/logger"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	wallets    = flag.String("wallets", "", "Comma separated wallet addresses (Ethereum and/or Solana)")
)

func main() {
	flag.Parse()

	addresses := parseWallets(*wallets)
	if len(addresses) == 0 {
		fmt.Fprintln(os.Stderr, "at least one wallet is required: -wallets <address1>,<address2>")
		os.Exit(2)
	}

	config.ChdirRepoRoot()
	cfg, err := config.LoadCLIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Logs go to stderr so stdout only carries the JSON result
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "collectibles-cli",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	if cfg.MaxWallets > 0 && len(addresses) > cfg.MaxWallets {
		logger.Fatal("Too many wallets", zap.Int("wallets", len(addresses)), zap.Int("max_wallets", cfg.MaxWallets))
	}
	for _, address := range addresses {
		if !domain.IsValidAddress(domain.AddressToBlockchain(address), address) {
			logger.Fatal("Invalid wallet address", zap.String("wallet", address))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
	}

	runtime, err := app.New(cfg)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize collectibles pipeline", zap.Error(err))
	}
	defer runtime.Close()

	snapshot, err := runtime.Aggregator.GetAllCollectibles(ctx, addresses)
	if err != nil && !errors.Is(err, domain.ErrPartialResult) && !errors.Is(err, domain.ErrAllChainsFailed) {
		logger.FatalCtx(ctx, "Failed to retrieve collectibles", zap.Error(err))
	}

	out, mErr := adapter.NewJSON().MarshalIndent(dto.NewCollectiblesResponse(snapshot, err), "", "  ")
	if mErr != nil {
		logger.FatalCtx(ctx, "Failed to encode collectibles", zap.Error(mErr))
	}
	fmt.Println(string(out))

	if errors.Is(err, domain.ErrAllChainsFailed) {
		logger.ErrorCtx(ctx, err)
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}
}

func parseWallets(raw string) []string {
	var addresses []string
	seen := make(map[string]struct{})
	for _, item := range strings.Split(raw, ",") {
		address := domain.NormalizeAddress(item)
		if address == "" {
			continue
		}
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}
		addresses = append(addresses, address)
	}
	return addresses
}
