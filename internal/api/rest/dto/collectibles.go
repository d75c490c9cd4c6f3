package dto

import (
	"errors"

	"github.com/feral-file/ff-collectibles/internal/aggregator"
	"github.com/feral-file/ff-collectibles/internal/domain"
)

// CollectiblesResponse is the body of GET /api/v1/collectibles
type CollectiblesResponse struct {
	// Chains maps a blockchain to its wallets and their collectibles in resolution order
	Chains map[domain.Blockchain]domain.CollectibleState `json:"chains"`

	// Errors holds the failure of every chain missing from Chains
	Errors map[domain.Blockchain]string `json:"errors,omitempty"`

	Partial bool `json:"partial"`
	Count   int  `json:"count"`
}

// NewCollectiblesResponse builds the response from an aggregation result
func NewCollectiblesResponse(snapshot *aggregator.Snapshot, err error) CollectiblesResponse {
	resp := CollectiblesResponse{
		Chains: make(map[domain.Blockchain]domain.CollectibleState),
	}

	if snapshot != nil {
		for chain, state := range snapshot.Chains {
			if state == nil {
				state = domain.CollectibleState{}
			}
			resp.Chains[chain] = state
		}
		resp.Count = snapshot.Count()
	}

	var partial *aggregator.PartialError
	if errors.As(err, &partial) {
		resp.Errors = make(map[domain.Blockchain]string, len(partial.Errors))
		for chain, chainErr := range partial.Errors {
			resp.Errors[chain] = chainErr.Error()
		}
		resp.Partial = errors.Is(err, domain.ErrPartialResult)
	}

	return resp
}
