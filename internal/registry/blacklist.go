package registry

import (
	"fmt"
	"strings"

	"github.com/feral-file/ff-collectibles/internal/adapter"
	"github.com/feral-file/ff-collectibles/internal/domain"
)

// BlacklistRegistry defines the interface for blacklist operations
//
//go:generate mockgen -source=blacklist.go -destination=../mocks/blacklist_registry.go -package=mocks -mock_names=BlacklistRegistry=MockBlacklistRegistry
type BlacklistRegistry interface {
	// IsBlacklisted checks if a contract address is blacklisted for a given chain
	IsBlacklisted(chainID domain.Chain, contractAddress string) bool

	// IsAssetBlacklisted checks if the contract of a raw asset is blacklisted
	IsAssetBlacklisted(asset *domain.RawAsset) bool
}

// BlacklistData represents the structure of the blacklist.json file
// Key format: "chain_id" -> list of contract addresses (or collection ids on Solana)
type BlacklistData map[string][]string

// BlacklistRegistryLoader loads a blacklist registry from disk
type BlacklistRegistryLoader struct {
	fs   adapter.FileSystem
	json adapter.JSON
}

// NewBlacklistRegistryLoader creates a new loader
func NewBlacklistRegistryLoader(fs adapter.FileSystem, json adapter.JSON) *BlacklistRegistryLoader {
	return &BlacklistRegistryLoader{fs: fs, json: json}
}

// blacklistRegistry is the internal implementation of BlacklistRegistry
type blacklistRegistry struct {
	// Fast lookup map: "chain:contract" -> true
	contracts map[string]bool
}

// Load loads the blacklist registry from a JSON file
func (l *BlacklistRegistryLoader) Load(filePath string) (BlacklistRegistry, error) {
	data, err := l.fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read blacklist file: %w", err)
	}

	var blacklistData BlacklistData
	if err := l.json.Unmarshal(data, &blacklistData); err != nil {
		return nil, fmt.Errorf("failed to parse blacklist JSON: %w", err)
	}

	return NewBlacklistRegistry(blacklistData), nil
}

// NewBlacklistRegistry builds a registry from in-memory data
func NewBlacklistRegistry(data BlacklistData) BlacklistRegistry {
	bl := &blacklistRegistry{
		contracts: make(map[string]bool),
	}

	for chainID, addresses := range data {
		for _, addr := range addresses {
			bl.contracts[blacklistKey(domain.Chain(chainID), addr)] = true
		}
	}

	return bl
}

// IsBlacklisted checks if a contract address is blacklisted for a given chain
func (b *blacklistRegistry) IsBlacklisted(chainID domain.Chain, contractAddress string) bool {
	if b == nil || contractAddress == "" {
		return false
	}
	return b.contracts[blacklistKey(chainID, contractAddress)]
}

// IsAssetBlacklisted checks if the contract of a raw asset is blacklisted
func (b *blacklistRegistry) IsAssetBlacklisted(asset *domain.RawAsset) bool {
	if asset == nil {
		return false
	}
	return b.IsBlacklisted(asset.Chain, asset.ContractAddress)
}

func blacklistKey(chainID domain.Chain, contractAddress string) string {
	// Solana addresses are case sensitive
	if chainID.Blockchain() == domain.BlockchainSolana {
		return fmt.Sprintf("%s:%s", strings.ToLower(string(chainID)), contractAddress)
	}
	return fmt.Sprintf("%s:%s", strings.ToLower(string(chainID)), strings.ToLower(contractAddress))
}
