package collectibles

import (
	"context"

	"github.com/feral-file/ff-collectibles/internal/domain"
)

// Source retrieves raw records for a single wallet from an upstream provider
//
//go:generate mockgen -source=source.go -destination=../mocks/source.go -package=mocks -mock_names=Source=MockSource
type Source interface {
	// Name returns the provider name used for logging and rate limiting
	Name() string

	// FetchOwnedAssets returns the assets currently held by the wallet
	FetchOwnedAssets(ctx context.Context, wallet string, limit int) ([]domain.RawAsset, error)

	// FetchEvents returns the creation or transfer events involving the wallet
	FetchEvents(ctx context.Context, wallet string, kind domain.EventKind, limit int) ([]domain.RawEvent, error)
}
