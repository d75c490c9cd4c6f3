package solana

import "encoding/json"

// JSON-RPC request/response types

type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// getAssetsByOwner params
type GetAssetsByOwnerParams struct {
	OwnerAddress   string          `json:"ownerAddress"`
	Page           int             `json:"page"`
	Limit          int             `json:"limit"`
	DisplayOptions *DisplayOptions `json:"displayOptions,omitempty"`
}

type DisplayOptions struct {
	ShowFungible bool `json:"showFungible"`
}

// getAssetsByOwner response
type AssetList struct {
	Total int     `json:"total"`
	Limit int     `json:"limit"`
	Page  int     `json:"page"`
	Items []Asset `json:"items"`
}

// Asset is a digital asset as described by the DAS API
type Asset struct {
	ID          string       `json:"id"`
	Interface   string       `json:"interface"`
	Content     AssetContent `json:"content"`
	Grouping    []Grouping   `json:"grouping"`
	Compression *Compression `json:"compression"`
	Ownership   Ownership    `json:"ownership"`
	Burnt       bool         `json:"burnt"`
}

type AssetContent struct {
	JSONURI  string        `json:"json_uri"`
	Links    AssetLinks    `json:"links"`
	Metadata AssetMetadata `json:"metadata"`
	Files    []AssetFile   `json:"files"`
}

type AssetLinks struct {
	Image        string `json:"image"`
	AnimationURL string `json:"animation_url"`
	ExternalURL  string `json:"external_url"`
}

type AssetMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Symbol      string `json:"symbol"`
}

type AssetFile struct {
	URI  string `json:"uri"`
	Mime string `json:"mime"`
}

type Grouping struct {
	GroupKey   string `json:"group_key"`
	GroupValue string `json:"group_value"`
}

type Compression struct {
	Compressed bool `json:"compressed"`
}

type Ownership struct {
	Owner string `json:"owner"`
}
