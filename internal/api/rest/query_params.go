package rest

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-collectibles/internal/domain"
)

// GetCollectiblesQueryParams holds query parameters for GET /collectibles
type GetCollectiblesQueryParams struct {
	// Comma separated list, may be repeated
	Wallets []string `form:"wallets"`
	// Single wallet, may be repeated
	Wallet []string `form:"wallet"`
}

// ParseGetCollectiblesQuery parses query parameters for GET /collectibles
func ParseGetCollectiblesQuery(c *gin.Context) (*GetCollectiblesQueryParams, error) {
	var params GetCollectiblesQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}
	return &params, nil
}

// Addresses returns the requested wallets, split, trimmed and deduplicated in request order
func (p *GetCollectiblesQueryParams) Addresses() []string {
	var raw []string
	for _, item := range p.Wallets {
		raw = append(raw, strings.Split(item, ",")...)
	}
	raw = append(raw, p.Wallet...)

	seen := make(map[string]struct{}, len(raw))
	addresses := make([]string, 0, len(raw))
	for _, address := range domain.NormalizeAddresses(raw) {
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

// Validate checks that every wallet is a well formed address of a supported blockchain
func (p *GetCollectiblesQueryParams) Validate() error {
	var invalid []string
	for _, address := range p.Addresses() {
		if !domain.IsValidAddress(domain.AddressToBlockchain(address), address) {
			invalid = append(invalid, address)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid wallet addresses: %s", strings.Join(invalid, ", "))
	}
	return nil
}
