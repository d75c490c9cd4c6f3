package opensea

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/logger"
)

// SourceConfig holds the pagination settings of the OpenSea source
type SourceConfig struct {
	Chain    domain.Chain
	MaxPages int
}

// Source retrieves owned assets and account events of Ethereum wallets from OpenSea
type Source struct {
	client Client
	config SourceConfig
}

// NewSource creates an OpenSea backed collectibles source
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

// FetchOwnedAssets pages through the NFTs held by the wallet
func (s *Source) FetchOwnedAssets(ctx context.Context, wallet string, limit int) ([]domain.RawAsset, error) {
	chain, err := chainSlug(s.config.Chain)
	if err != nil {
		return nil, err
	}

	var assets []domain.RawAsset
	cursor := ""
	for page := 0; page < s.config.MaxPages; page++ {
		resp, err := s.client.ListAccountNFTs(ctx, chain, wallet, limit, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list NFTs of %s: %w", wallet, err)
		}

		for _, nft := range resp.NFTs {
			assets = append(assets, s.mapNFT(nft))
		}

		if resp.Next == "" {
			return assets, nil
		}
		cursor = resp.Next
	}

	logger.WarnCtx(ctx, "Stopped paging owned NFTs at max pages",
		zap.String("wallet", wallet),
		zap.Int("max_pages", s.config.MaxPages),
		zap.Int("assets", len(assets)))

	return assets, nil
}

// FetchEvents pages through the mint or transfer events of the wallet
func (s *Source) FetchEvents(ctx context.Context, wallet string, kind domain.EventKind, limit int) ([]domain.RawEvent, error) {
	chain, err := chainSlug(s.config.Chain)
	if err != nil {
		return nil, err
	}

	var eventType string
	switch kind {
	case domain.EventKindCreation:
		eventType = EventTypeMint
	case domain.EventKindTransfer:
		eventType = EventTypeTransfer
	default:
		return nil, fmt.Errorf("unsupported event kind: %s", kind)
	}

	var events []domain.RawEvent
	cursor := ""
	for page := 0; page < s.config.MaxPages; page++ {
		resp, err := s.client.ListAccountEvents(ctx, chain, wallet, eventType, limit, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s events of %s: %w", eventType, wallet, err)
		}

		for _, e := range resp.AssetEvents {
			if e.NFT == nil {
				// Collection level events carry no token
				continue
			}
			events = append(events, domain.RawEvent{
				Kind:        kind,
				Asset:       s.mapNFT(*e.NFT),
				FromAddress: domain.NormalizeAddress(e.FromAddress),
				ToAddress:   domain.NormalizeAddress(e.ToAddress),
				Timestamp:   time.Unix(e.EventTimestamp, 0).UTC(),
				TxHash:      e.Transaction,
			})
		}

		if resp.Next == "" {
			return events, nil
		}
		cursor = resp.Next
	}

	logger.WarnCtx(ctx, "Stopped paging events at max pages",
		zap.String("wallet", wallet),
		zap.String("event_type", eventType),
		zap.Int("max_pages", s.config.MaxPages),
		zap.Int("events", len(events)))

	return events, nil
}

func (s *Source) mapNFT(nft NFT) domain.RawAsset {
	return domain.RawAsset{
		Chain:           s.config.Chain,
		Standard:        tokenStandard(nft.TokenStandard),
		TokenID:         nft.Identifier,
		ContractAddress: domain.NormalizeAddress(nft.Contract),
		Collection:      nft.Collection,
		Name:            deref(nft.Name),
		Description:     deref(nft.Description),
		ImageURL:        firstNonEmpty(nft.ImageURL, nft.DisplayImageURL),
		AnimationURL:    firstNonEmpty(nft.AnimationURL, nft.DisplayAnimationURL),
		ExternalURL:     deref(nft.ExternalURL),
		Permalink:       deref(nft.OpenseaURL),
		MetadataURL:     deref(nft.MetadataURL),
		Disabled:        nft.IsDisabled,
		NSFW:            nft.IsNSFW,
	}
}

// chainSlug converts a chain to the chain name used in OpenSea paths
func chainSlug(chain domain.Chain) (string, error) {
	switch chain {
	case domain.ChainEthereumMainnet:
		return "ethereum", nil
	case domain.ChainEthereumSepolia:
		return "sepolia", nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedChain, chain)
	}
}

func tokenStandard(standard string) domain.ChainStandard {
	switch standard {
	case "erc721":
		return domain.StandardERC721
	case "erc1155":
		return domain.StandardERC1155
	default:
		return ""
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}
