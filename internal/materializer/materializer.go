package materializer

import (
	"context"
	"fmt"
	"time"

	"github.com/feral-file/ff-collectibles/internal/adapter"
	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/uri"
)

// Materializer turns raw assets and events into collectibles
type Materializer struct {
	httpClient adapter.HTTPClient
	resolver   uri.Resolver
}

// New creates a materializer that resolves media through the given resolver
func New(httpClient adapter.HTTPClient, resolver uri.Resolver) *Materializer {
	return &Materializer{
		httpClient: httpClient,
		resolver:   resolver,
	}
}

// AssetToCollectible materializes an asset currently held by the wallet stamped on it
func (m *Materializer) AssetToCollectible(ctx context.Context, asset domain.RawAsset) (*domain.Collectible, error) {
	c, err := m.build(ctx, asset)
	if err != nil {
		return nil, err
	}
	c.Wallet = asset.Wallet
	c.IsOwned = true
	return c, nil
}

// CreationEventToCollectible materializes a creation event under the wallet that queried it
func (m *Materializer) CreationEventToCollectible(ctx context.Context, event domain.RawEvent) (*domain.Collectible, error) {
	c, err := m.build(ctx, event.Asset)
	if err != nil {
		return nil, err
	}
	c.Wallet = eventWallet(event)
	c.DateCreated = timePtr(event.Timestamp)
	return c, nil
}

// TransferEventToCollectible materializes a transfer event. Owned collectibles are
// attributed to the receiving wallet, others to the wallet that queried the event.
func (m *Materializer) TransferEventToCollectible(ctx context.Context, event domain.RawEvent, owned bool) (*domain.Collectible, error) {
	c, err := m.build(ctx, event.Asset)
	if err != nil {
		return nil, err
	}
	c.Wallet = eventWallet(event)
	if owned && event.ToAddress != "" {
		c.Wallet = domain.NormalizeAddress(event.ToAddress)
	}
	c.IsOwned = owned
	c.DateLastTransferred = timePtr(event.Timestamp)
	return c, nil
}

func (m *Materializer) build(ctx context.Context, asset domain.RawAsset) (*domain.Collectible, error) {
	info, err := m.resolveMedia(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("token %s: %w", asset.Identity(), err)
	}

	name := asset.Name
	if name == "" {
		name = fmt.Sprintf("#%s", asset.TokenID)
		if asset.Collection != "" {
			name = fmt.Sprintf("%s #%s", asset.Collection, asset.TokenID)
		}
	}

	return &domain.Collectible{
		ID:              asset.Identity(),
		TokenID:         asset.TokenID,
		ContractAddress: asset.ContractAddress,
		Chain:           asset.Chain,
		Standard:        asset.Standard,
		Collection:      asset.Collection,
		Name:            name,
		Description:     asset.Description,
		MediaType:       info.mediaType,
		MimeType:        info.mimeType,
		FrameURL:        info.frameURL,
		ImageURL:        info.imageURL,
		GifURL:          info.gifURL,
		VideoURL:        info.videoURL,
		ThreeDURL:       info.threeDURL,
		ExternalURL:     asset.ExternalURL,
		Permalink:       asset.Permalink,
	}, nil
}

func eventWallet(event domain.RawEvent) string {
	if event.Wallet != "" {
		return event.Wallet
	}
	return event.Asset.Wallet
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
