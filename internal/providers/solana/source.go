package solana

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/logger"
)

// SourceConfig holds the pagination settings of the Solana source
type SourceConfig struct {
	Chain    domain.Chain
	MaxPages int
}

// Source retrieves the collectibles held by Solana wallets through the DAS API
type Source struct {
	client Client
	config SourceConfig
}

// NewSource creates a DAS backed collectibles source
func NewSource(client Client, config SourceConfig) *Source {
	if config.MaxPages <= 0 {
		config.MaxPages = 1
	}
	return &Source{client: client, config: config}
}

// Name returns the provider name
func (s *Source) Name() string {
	return PROVIDER_NAME
}

// FetchOwnedAssets pages through the non-fungible assets held by the wallet
func (s *Source) FetchOwnedAssets(ctx context.Context, wallet string, limit int) ([]domain.RawAsset, error) {
	limit = min(max(limit, 1), MAX_PAGE_LIMIT)

	var assets []domain.RawAsset
	for page := 1; page <= s.config.MaxPages; page++ {
		list, err := s.client.GetAssetsByOwner(ctx, wallet, page, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to get assets of %s: %w", wallet, err)
		}

		for _, item := range list.Items {
			if isFungible(item.Interface) {
				continue
			}
			assets = append(assets, s.mapAsset(item))
		}

		if len(list.Items) < limit {
			return assets, nil
		}
	}

	logger.WarnCtx(ctx, "Stopped paging Solana assets at max pages",
		zap.String("wallet", wallet),
		zap.Int("max_pages", s.config.MaxPages),
		zap.Int("assets", len(assets)))

	return assets, nil
}

// FetchEvents returns no events: the DAS API exposes no mint or transfer history,
// so Solana collectibles are resolved from owned assets alone
func (s *Source) FetchEvents(ctx context.Context, wallet string, kind domain.EventKind, limit int) ([]domain.RawEvent, error) {
	return nil, nil
}

func (s *Source) mapAsset(item Asset) domain.RawAsset {
	standard := domain.StandardMetaplex
	if item.Compression != nil && item.Compression.Compressed {
		standard = domain.StandardCompressed
	}

	var collection string
	for _, g := range item.Grouping {
		if g.GroupKey == "collection" {
			collection = g.GroupValue
			break
		}
	}

	image := item.Content.Links.Image
	if image == "" {
		for _, f := range item.Content.Files {
			if f.URI != "" {
				image = f.URI
				break
			}
		}
	}

	return domain.RawAsset{
		Chain:           s.config.Chain,
		Standard:        standard,
		TokenID:         item.ID,
		ContractAddress: collection,
		Collection:      item.Content.Metadata.Symbol,
		Name:            item.Content.Metadata.Name,
		Description:     item.Content.Metadata.Description,
		ImageURL:        image,
		AnimationURL:    item.Content.Links.AnimationURL,
		ExternalURL:     item.Content.Links.ExternalURL,
		MetadataURL:     item.Content.JSONURI,
		// Burnt assets linger in DAS results but can no longer be displayed
		Spam: item.Burnt,
	}
}

func isFungible(assetInterface string) bool {
	return assetInterface == "FungibleToken" || assetInterface == "FungibleAsset"
}
