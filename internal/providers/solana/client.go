package solana

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/feral-file/ff-collectibles/internal/adapter"
	"github.com/feral-file/ff-collectibles/internal/ratelimit"
)

const PROVIDER_NAME = "solana"

// MAX_PAGE_LIMIT is the largest page served by getAssetsByOwner
const MAX_PAGE_LIMIT = 1000

// Client abstracts the DAS JSON-RPC interface
//
//go:generate mockgen -source=client.go -destination=../../mocks/solana_client.go -package=mocks -mock_names=Client=MockSolanaClient
type Client interface {
	// GetAssetsByOwner fetches one page (1-based) of the assets held by the owner
	GetAssetsByOwner(ctx context.Context, owner string, page, limit int) (*AssetList, error)
}

type client struct {
	httpClient     adapter.HTTPClient
	rateLimitProxy ratelimit.Proxy
	json           adapter.JSON
	rpcURL         string
	requestID      atomic.Int64
}

// NewClient creates a DAS JSON-RPC client
func NewClient(httpClient adapter.HTTPClient, rateLimitProxy ratelimit.Proxy, rpcURL string, json adapter.JSON) Client {
	return &client{
		httpClient:     httpClient,
		rateLimitProxy: rateLimitProxy,
		json:           json,
		rpcURL:         rpcURL,
	}
}

// GetAssetsByOwner fetches one page (1-based) of the assets held by the owner
func (c *client) GetAssetsByOwner(ctx context.Context, owner string, page, limit int) (*AssetList, error) {
	params := GetAssetsByOwnerParams{
		OwnerAddress: owner,
		Page:         max(page, 1),
		Limit:        min(max(limit, 1), MAX_PAGE_LIMIT),
	}

	result, err := c.call(ctx, "getAssetsByOwner", params)
	if err != nil {
		return nil, err
	}

	var assets AssetList
	if err := c.json.Unmarshal(result, &assets); err != nil {
		return nil, fmt.Errorf("unmarshal getAssetsByOwner result: %w", err)
	}

	return &assets, nil
}

func (c *client) call(ctx context.Context, method string, params interface{}) ([]byte, error) {
	req := Request{
		JSONRPC: "2.0",
		ID:      fmt.Sprintf("ff-collectibles-%d", c.requestID.Add(1)),
		Method:  method,
		Params:  params,
	}

	body, err := c.json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	respBody, err := ratelimit.Request(ctx, c.rateLimitProxy, PROVIDER_NAME, func(ctx context.Context) ([]byte, error) {
		return c.httpClient.PostBytes(ctx, c.rpcURL, headers, body)
	})
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", method, err)
	}

	var rpcResp Response
	if err := c.json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("%s: %w", method, rpcResp.Error)
	}

	return rpcResp.Result, nil
}
