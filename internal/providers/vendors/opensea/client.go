package opensea

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/feral-file/ff-collectibles/internal/adapter"
	"github.com/feral-file/ff-collectibles/internal/ratelimit"
)

const PROVIDER_NAME = "opensea"

const (
	// MAX_NFT_PAGE_LIMIT is the largest page the account NFTs endpoint serves
	MAX_NFT_PAGE_LIMIT = 200
	// MAX_EVENT_PAGE_LIMIT is the largest page the account events endpoint serves
	MAX_EVENT_PAGE_LIMIT = 50
)

const (
	EventTypeMint     = "mint"
	EventTypeTransfer = "transfer"
)

var ErrNoAPIKey = errors.New("no API key provided")

// NFT represents an NFT as returned by the OpenSea API v2
type NFT struct {
	Identifier          string  `json:"identifier"`
	Collection          string  `json:"collection"`
	Contract            string  `json:"contract"`
	TokenStandard       string  `json:"token_standard"`
	Name                *string `json:"name"`
	Description         *string `json:"description"`
	ImageURL            *string `json:"image_url"`
	DisplayImageURL     *string `json:"display_image_url"`
	DisplayAnimationURL *string `json:"display_animation_url"`
	AnimationURL        *string `json:"animation_url"`
	MetadataURL         *string `json:"metadata_url"`
	OpenseaURL          *string `json:"opensea_url"`
	ExternalURL         *string `json:"external_url"`
	IsDisabled          bool    `json:"is_disabled"`
	IsNSFW              bool    `json:"is_nsfw"`
}

// NFTsResponse represents a page of the account NFTs endpoint
type NFTsResponse struct {
	NFTs   []NFT    `json:"nfts"`
	Next   string   `json:"next"`
	Errors []string `json:"errors,omitempty"`
}

// AssetEvent represents an event of the account events endpoint
type AssetEvent struct {
	EventType      string `json:"event_type"`
	Chain          string `json:"chain"`
	Transaction    string `json:"transaction"`
	FromAddress    string `json:"from_address"`
	ToAddress      string `json:"to_address"`
	Quantity       int    `json:"quantity"`
	NFT            *NFT   `json:"nft"`
	EventTimestamp int64  `json:"event_timestamp"`
}

// EventsResponse represents a page of the account events endpoint
type EventsResponse struct {
	AssetEvents []AssetEvent `json:"asset_events"`
	Next        string       `json:"next"`
	Errors      []string     `json:"errors,omitempty"`
}

// Client defines the interface for OpenSea client operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../../mocks/opensea_client.go -package=mocks -mock_names=Client=MockOpenSeaClient
type Client interface {
	// ListAccountNFTs fetches one page of the NFTs held by an account
	ListAccountNFTs(ctx context.Context, chain, address string, limit int, cursor string) (*NFTsResponse, error)

	// ListAccountEvents fetches one page of the events of an account
	ListAccountEvents(ctx context.Context, chain, address, eventType string, limit int, cursor string) (*EventsResponse, error)
}

// OpenSeaClient implements OpenSea client
type OpenSeaClient struct {
	httpClient     adapter.HTTPClient
	rateLimitProxy ratelimit.Proxy
	apiURL         string
	apiKey         string
	json           adapter.JSON
}

// NewClient creates a new OpenSea client
func NewClient(httpClient adapter.HTTPClient, rateLimitProxy ratelimit.Proxy, apiURL string, apiKey string, json adapter.JSON) Client {
	return &OpenSeaClient{
		httpClient:     httpClient,
		rateLimitProxy: rateLimitProxy,
		apiURL:         apiURL,
		apiKey:         apiKey,
		json:           json,
	}
}

// ListAccountNFTs fetches one page of the NFTs held by an account
func (c *OpenSeaClient) ListAccountNFTs(ctx context.Context, chain, address string, limit int, cursor string) (*NFTsResponse, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(min(max(limit, 1), MAX_NFT_PAGE_LIMIT)))
	if cursor != "" {
		query.Set("next", cursor)
	}

	endpoint := fmt.Sprintf("%s/chain/%s/account/%s/nfts?%s", c.apiURL, chain, address, query.Encode())

	var response NFTsResponse
	if err := c.get(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	if len(response.Errors) > 0 {
		return nil, fmt.Errorf("OpenSea API errors: %v", response.Errors)
	}

	return &response, nil
}

// ListAccountEvents fetches one page of the events of an account
func (c *OpenSeaClient) ListAccountEvents(ctx context.Context, chain, address, eventType string, limit int, cursor string) (*EventsResponse, error) {
	query := url.Values{}
	query.Set("chain", chain)
	query.Set("event_type", eventType)
	query.Set("limit", strconv.Itoa(min(max(limit, 1), MAX_EVENT_PAGE_LIMIT)))
	if cursor != "" {
		query.Set("next", cursor)
	}

	endpoint := fmt.Sprintf("%s/events/accounts/%s?%s", c.apiURL, address, query.Encode())

	var response EventsResponse
	if err := c.get(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	if len(response.Errors) > 0 {
		return nil, fmt.Errorf("OpenSea API errors: %v", response.Errors)
	}

	return &response, nil
}

func (c *OpenSeaClient) get(ctx context.Context, endpoint string, v interface{}) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	// Make the request with API key header
	headers := map[string]string{
		"X-API-KEY": c.apiKey,
	}

	respBody, err := ratelimit.Request(ctx, c.rateLimitProxy, PROVIDER_NAME, func(ctx context.Context) ([]byte, error) {
		return c.httpClient.GetBytes(ctx, endpoint, headers)
	})
	if err != nil {
		return fmt.Errorf("failed to call OpenSea API: %w", err)
	}

	if err := c.json.Unmarshal(respBody, v); err != nil {
		return fmt.Errorf("failed to unmarshal OpenSea response: %w", err)
	}

	return nil
}
