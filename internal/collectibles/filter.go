package collectibles

import (
	"strings"

	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/registry"
)

// Filter decides whether a raw record may enter reconciliation
type Filter interface {
	// Valid reports whether the asset carries enough data to form an identity
	// and is not flagged as unsupported by its source
	Valid(asset domain.RawAsset) bool
}

type filter struct {
	blacklist registry.BlacklistRegistry
}

// NewFilter creates a validity filter. A nil blacklist disables contract blacklisting.
func NewFilter(blacklist registry.BlacklistRegistry) Filter {
	return &filter{blacklist: blacklist}
}

func (f *filter) Valid(asset domain.RawAsset) bool {
	if asset.TokenID == "" || strings.Contains(asset.TokenID, domain.IDENTITY_SEPARATOR) {
		return false
	}

	switch asset.Chain.Blockchain() {
	case domain.BlockchainEthereum:
		if !domain.ValidTokenNumber(asset.TokenID) {
			return false
		}
		if !domain.IsValidAddress(domain.BlockchainEthereum, asset.ContractAddress) {
			return false
		}
	case domain.BlockchainSolana:
		if !domain.IsValidAddress(domain.BlockchainSolana, asset.TokenID) {
			return false
		}
		if asset.ContractAddress != "" && !domain.IsValidAddress(domain.BlockchainSolana, asset.ContractAddress) {
			return false
		}
	default:
		return false
	}

	if asset.Disabled || asset.NSFW || asset.Spam {
		return false
	}

	if f.blacklist != nil && f.blacklist.IsAssetBlacklisted(&asset) {
		return false
	}

	return asset.ImageURL != "" || asset.AnimationURL != ""
}
