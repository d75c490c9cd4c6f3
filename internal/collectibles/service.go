package collectibles

import (
	"context"
	"errors"
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/logger"
)

// Service resolves the collectibles of a set of wallets on one chain
//
//go:generate mockgen -source=service.go -destination=../mocks/collectibles_service.go -package=mocks -mock_names=Service=MockCollectiblesService
type Service interface {
	// GetAllCollectibles fetches the three sources for every wallet and reconciles them
	GetAllCollectibles(ctx context.Context, wallets []string) (domain.CollectibleState, error)
}

// ServiceConfig holds the fetch settings of a chain pipeline
type ServiceConfig struct {
	// Limit is the page size requested from the source
	Limit int
}

type service struct {
	source     Source
	reconciler *Reconciler
	pool       pond.Pool
	config     ServiceConfig
}

// NewService creates a chain pipeline over a source. Per-wallet retrievals run on pool.
func NewService(source Source, reconciler *Reconciler, pool pond.Pool, config ServiceConfig) Service {
	return &service{
		source:     source,
		reconciler: reconciler,
		pool:       pool,
		config:     config,
	}
}

// GetAllCollectibles fetches owned assets, creation events and transfer events
// concurrently, then reconciles them. Failed per-wallet retrievals are dropped.
func (s *service) GetAllCollectibles(ctx context.Context, wallets []string) (domain.CollectibleState, error) {
	if len(wallets) == 0 {
		return domain.CollectibleState{}, nil
	}
	if s.source == nil || s.reconciler == nil {
		return nil, errors.New("collectibles service is not configured")
	}

	var (
		wg        sync.WaitGroup
		assets    []Result[domain.RawAsset]
		creations []Result[domain.RawEvent]
		transfers []Result[domain.RawEvent]
		errs      [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		assets, errs[0] = FetchAll(ctx, s.pool, wallets, func(ctx context.Context, wallet string) ([]domain.RawAsset, error) {
			return s.source.FetchOwnedAssets(ctx, wallet, s.config.Limit)
		})
	}()
	go func() {
		defer wg.Done()
		creations, errs[1] = FetchAll(ctx, s.pool, wallets, func(ctx context.Context, wallet string) ([]domain.RawEvent, error) {
			return s.source.FetchEvents(ctx, wallet, domain.EventKindCreation, s.config.Limit)
		})
	}()
	go func() {
		defer wg.Done()
		transfers, errs[2] = FetchAll(ctx, s.pool, wallets, func(ctx context.Context, wallet string) ([]domain.RawEvent, error) {
			return s.source.FetchEvents(ctx, wallet, domain.EventKindTransfer, s.config.Limit)
		})
	}()
	wg.Wait()

	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}

	ownedAssets := Flatten(ctx, string(domain.SourceOwnedAssets), assets, stampAsset)
	creationEvents := Flatten(ctx, string(domain.SourceCreationEvents), creations, stampEvent)
	transferEvents := Flatten(ctx, string(domain.SourceTransferEvents), transfers, stampEvent)

	logger.InfoCtx(ctx, "Fetched collectible sources",
		zap.String("source", s.source.Name()),
		zap.Int("wallets", len(wallets)),
		zap.Int("owned_assets", len(ownedAssets)),
		zap.Int("creation_events", len(creationEvents)),
		zap.Int("transfer_events", len(transferEvents)),
	)

	state, err := s.reconciler.Reconcile(ctx, ownedAssets, creationEvents, transferEvents, wallets)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Reconciled collectibles",
		zap.String("source", s.source.Name()),
		zap.Int("collectibles", state.Count()),
	)

	return state, nil
}

func stampAsset(asset *domain.RawAsset, wallet string) {
	asset.Wallet = wallet
}

func stampEvent(event *domain.RawEvent, wallet string) {
	event.Wallet = wallet
	event.Asset.Wallet = wallet
}
