package collectibles

import (
	"context"
	"fmt"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/logger"
)

// Materializer turns raw records into collectibles
//
//go:generate mockgen -source=reconcile.go -destination=../mocks/materializer.go -package=mocks -mock_names=Materializer=MockMaterializer
type Materializer interface {
	// AssetToCollectible materializes an owned asset
	AssetToCollectible(ctx context.Context, asset domain.RawAsset) (*domain.Collectible, error)

	// CreationEventToCollectible materializes a creation event
	CreationEventToCollectible(ctx context.Context, event domain.RawEvent) (*domain.Collectible, error)

	// TransferEventToCollectible materializes a transfer event; owned tells whether
	// the queried wallets currently hold the asset
	TransferEventToCollectible(ctx context.Context, event domain.RawEvent, owned bool) (*domain.Collectible, error)
}

// Reconciler merges owned assets, creation events and transfer events into one state
type Reconciler struct {
	filter       Filter
	materializer Materializer
	concurrency  int
}

// NewReconciler creates a reconciler. Concurrency bounds the materializer calls of one stage.
func NewReconciler(filter Filter, materializer Materializer, concurrency int) *Reconciler {
	return &Reconciler{
		filter:       filter,
		materializer: materializer,
		concurrency:  max(concurrency, 1),
	}
}

// collectibleIndex is the working identity -> collectible map of one reconciliation.
// Insertion order is kept explicitly and is the order of the regrouped result.
type collectibleIndex struct {
	order []domain.Identity
	items map[domain.Identity]*domain.Collectible
}

func newCollectibleIndex() *collectibleIndex {
	return &collectibleIndex{items: make(map[domain.Identity]*domain.Collectible)}
}

// known reports whether the identity has been resolved by an earlier stage
func (x *collectibleIndex) known(id domain.Identity) bool {
	_, ok := x.items[id]
	return ok
}

// put inserts or replaces the collectible; a replaced identity keeps its position
func (x *collectibleIndex) put(id domain.Identity, c *domain.Collectible) {
	c.ID = id
	if !x.known(id) {
		x.order = append(x.order, id)
	}
	x.items[id] = c
}

// latestByIdentity groups events by identity, keeping the strictly newest one.
// Groups are ordered by the first appearance of their identity.
func latestByIdentity(events []domain.RawEvent) []domain.RawEvent {
	positions := make(map[domain.Identity]int, len(events))
	latest := make([]domain.RawEvent, 0, len(events))
	for _, event := range events {
		id := event.Identity()
		pos, ok := positions[id]
		if !ok {
			positions[id] = len(latest)
			latest = append(latest, event)
			continue
		}
		if event.Timestamp.After(latest[pos].Timestamp) {
			latest[pos] = event
		}
	}
	return latest
}

// Reconcile runs the four ordered merge stages and regroups the result by wallet.
// Any materializer error fails the whole call.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	assets []domain.RawAsset,
	creations []domain.RawEvent,
	transfers []domain.RawEvent,
	wallets []string,
) (domain.CollectibleState, error) {
	index := newCollectibleIndex()

	if err := r.seedOwnedAssets(ctx, index, assets); err != nil {
		return nil, err
	}

	var mints, moves []domain.RawEvent
	for _, event := range transfers {
		if !r.filter.Valid(event.Asset) {
			continue
		}
		if domain.IsNullAddress(event.FromAddress) {
			mints = append(mints, event)
		} else {
			moves = append(moves, event)
		}
	}

	if err := r.applyMintTransfers(ctx, index, latestByIdentity(mints)); err != nil {
		return nil, err
	}

	if err := r.applyCreations(ctx, index, creations); err != nil {
		return nil, err
	}

	if err := r.applyTransfers(ctx, index, latestByIdentity(moves), wallets); err != nil {
		return nil, err
	}

	return regroup(ctx, index), nil
}

// seedOwnedAssets inserts every valid owned asset
func (r *Reconciler) seedOwnedAssets(ctx context.Context, index *collectibleIndex, assets []domain.RawAsset) error {
	valid := make([]domain.RawAsset, 0, len(assets))
	for _, asset := range assets {
		if r.filter.Valid(asset) {
			valid = append(valid, asset)
		}
	}

	collectibles, err := materializeAll(ctx, r.concurrency, valid, r.materializer.AssetToCollectible)
	if err != nil {
		return fmt.Errorf("owned assets: %w", err)
	}

	for i, asset := range valid {
		index.put(asset.Identity(), collectibles[i])
	}
	return nil
}

// applyMintTransfers treats transfers from the null address as creations
func (r *Reconciler) applyMintTransfers(ctx context.Context, index *collectibleIndex, mints []domain.RawEvent) error {
	var pending []domain.RawEvent
	for _, event := range mints {
		id := event.Identity()
		if index.known(id) {
			index.items[id].SetDateLastTransferred(event.Timestamp)
			continue
		}
		pending = append(pending, event)
	}

	collectibles, err := materializeAll(ctx, r.concurrency, pending, func(ctx context.Context, event domain.RawEvent) (*domain.Collectible, error) {
		return r.materializer.TransferEventToCollectible(ctx, event, false)
	})
	if err != nil {
		return fmt.Errorf("mint transfers: %w", err)
	}

	for i, event := range pending {
		index.put(event.Identity(), collectibles[i])
	}
	return nil
}

// applyCreations inserts creation events whose identity is still unknown.
// Creation events never overwrite an existing entry.
func (r *Reconciler) applyCreations(ctx context.Context, index *collectibleIndex, creations []domain.RawEvent) error {
	seen := make(map[domain.Identity]struct{})
	var pending []domain.RawEvent
	for _, event := range creations {
		if !r.filter.Valid(event.Asset) {
			continue
		}
		id := event.Identity()
		if index.known(id) {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		pending = append(pending, event)
	}

	collectibles, err := materializeAll(ctx, r.concurrency, pending, r.materializer.CreationEventToCollectible)
	if err != nil {
		return fmt.Errorf("creation events: %w", err)
	}

	for i, event := range pending {
		index.put(event.Identity(), collectibles[i])
	}
	return nil
}

// applyTransfers records the latest transfer of known identities and inserts
// unknown ones only when they were received by a queried wallet
func (r *Reconciler) applyTransfers(ctx context.Context, index *collectibleIndex, transfers []domain.RawEvent, wallets []string) error {
	queried := make(map[string]struct{}, len(wallets))
	for _, wallet := range wallets {
		queried[domain.NormalizeAddress(wallet)] = struct{}{}
	}

	var pending []domain.RawEvent
	for _, event := range transfers {
		id := event.Identity()
		if index.known(id) {
			index.items[id].SetDateLastTransferred(event.Timestamp)
			continue
		}
		if _, ok := queried[domain.NormalizeAddress(event.ToAddress)]; !ok {
			logger.DebugCtx(ctx, "Skipping third-party transfer",
				zap.String("identity", id.String()),
				zap.String("to", event.ToAddress),
			)
			continue
		}
		pending = append(pending, event)
	}

	collectibles, err := materializeAll(ctx, r.concurrency, pending, func(ctx context.Context, event domain.RawEvent) (*domain.Collectible, error) {
		return r.materializer.TransferEventToCollectible(ctx, event, true)
	})
	if err != nil {
		return fmt.Errorf("transfer events: %w", err)
	}

	for i, event := range pending {
		index.put(event.Identity(), collectibles[i])
	}
	return nil
}

// materializeAll runs fn for every record and returns the collectibles in record order.
// The error of the first failing record by position is returned.
func materializeAll[T any](
	ctx context.Context,
	concurrency int,
	records []T,
	fn func(context.Context, T) (*domain.Collectible, error),
) ([]*domain.Collectible, error) {
	if len(records) == 0 {
		return nil, nil
	}

	collectibles := make([]*domain.Collectible, len(records))
	errs := make([]error, len(records))

	pool := pond.NewPool(min(concurrency, len(records)), pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for i, record := range records {
		group.Submit(func() {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("materializer panicked: %v", r)
				}
			}()
			collectibles[i], errs[i] = fn(ctx, record)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMaterialization, err)
	}

	for i := range records {
		if errs[i] != nil {
			return nil, fmt.Errorf("%w: record %d: %w", domain.ErrMaterialization, i, errs[i])
		}
		if collectibles[i] == nil {
			return nil, fmt.Errorf("%w: record %d: materializer returned no collectible", domain.ErrMaterialization, i)
		}
	}

	return collectibles, nil
}

// regroup folds the working map into a wallet keyed state in insertion order.
// Collectibles without a wallet cannot be attributed and are dropped.
func regroup(ctx context.Context, index *collectibleIndex) domain.CollectibleState {
	state := make(domain.CollectibleState)
	for _, id := range index.order {
		c := index.items[id]
		if c.Wallet == "" {
			logger.WarnCtx(ctx, "Dropping collectible without wallet", zap.String("identity", id.String()))
			continue
		}
		state[c.Wallet] = append(state[c.Wallet], c)
	}
	return state
}
