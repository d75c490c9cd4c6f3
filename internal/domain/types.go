package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Blockchain represents the blockchain name
type Blockchain string

const (
	BlockchainEthereum Blockchain = "ethereum"
	BlockchainSolana   Blockchain = "solana"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
	ChainSolanaMainnet   Chain = "solana:mainnet"
	ChainSolanaDevnet    Chain = "solana:devnet"
)

// IsValidChain checks if a chain is valid
func IsValidChain(chain Chain) bool {
	return chain == ChainEthereumMainnet ||
		chain == ChainEthereumSepolia ||
		chain == ChainSolanaMainnet ||
		chain == ChainSolanaDevnet
}

// Blockchain returns the blockchain the chain belongs to
func (c Chain) Blockchain() Blockchain {
	switch c {
	case ChainEthereumMainnet, ChainEthereumSepolia:
		return BlockchainEthereum
	case ChainSolanaMainnet, ChainSolanaDevnet:
		return BlockchainSolana
	default:
		return ""
	}
}

// ChainStandard represents blockchain token standards
type ChainStandard string

const (
	StandardERC721     ChainStandard = "erc721"
	StandardERC1155    ChainStandard = "erc1155"
	StandardMetaplex   ChainStandard = "metaplex"
	StandardCompressed ChainStandard = "compressed"
)

// SourceKind identifies one of the three independent collectible sources
type SourceKind string

const (
	SourceOwnedAssets    SourceKind = "owned_assets"
	SourceCreationEvents SourceKind = "creation_events"
	SourceTransferEvents SourceKind = "transfer_events"
)

// MediaType is the display class of a collectible
type MediaType string

const (
	MediaTypeImage  MediaType = "IMAGE"
	MediaTypeGIF    MediaType = "GIF"
	MediaTypeVideo  MediaType = "VIDEO"
	MediaTypeThreeD MediaType = "THREE_D"
)

// Identity is the composite key (token id, contract address) correlating records across sources
type Identity string

// KeyOf derives the identity of a collectible. The contract address may be empty when unknown.
func KeyOf(tokenID, contractAddress string) Identity {
	return Identity(tokenID + IDENTITY_SEPARATOR + contractAddress)
}

// String returns the string representation of the Identity
func (i Identity) String() string {
	return string(i)
}

// Parse splits the identity into token id and contract address
func (i Identity) Parse() (string, string) {
	tokenID, contractAddress, _ := strings.Cut(string(i), IDENTITY_SEPARATOR)
	return tokenID, contractAddress
}

// Valid checks that the identity carries a token id
func (i Identity) Valid() bool {
	tokenID, _ := i.Parse()
	return tokenID != ""
}

// RawAsset is an owned-asset record as returned by a source, normalized across providers
type RawAsset struct {
	Chain           Chain         `json:"chain"`
	Standard        ChainStandard `json:"standard"`
	TokenID         string        `json:"token_id"`
	ContractAddress string        `json:"contract_address"`
	Collection      string        `json:"collection,omitempty"`
	Name            string        `json:"name,omitempty"`
	Description     string        `json:"description,omitempty"`
	ImageURL        string        `json:"image_url,omitempty"`
	AnimationURL    string        `json:"animation_url,omitempty"`
	ExternalURL     string        `json:"external_url,omitempty"`
	Permalink       string        `json:"permalink,omitempty"`
	MetadataURL     string        `json:"metadata_url,omitempty"`

	// Source flags used to reject unsupported or spam assets
	Disabled bool `json:"disabled,omitempty"`
	NSFW     bool `json:"nsfw,omitempty"`
	Spam     bool `json:"spam,omitempty"`

	// Wallet is the wallet used in the query that produced this record
	Wallet string `json:"wallet"`
}

// Identity returns the composite key of the asset
func (a *RawAsset) Identity() Identity {
	return KeyOf(a.TokenID, a.ContractAddress)
}

// EventKind represents the kind of a raw event
type EventKind string

const (
	EventKindCreation EventKind = "creation"
	EventKindTransfer EventKind = "transfer"
)

// RawEvent is a creation or transfer record carrying an embedded asset snapshot
type RawEvent struct {
	Kind        EventKind `json:"kind"`
	Asset       RawAsset  `json:"asset"`
	FromAddress string    `json:"from_address"`
	ToAddress   string    `json:"to_address"`
	Timestamp   time.Time `json:"timestamp"`
	TxHash      string    `json:"tx_hash"`

	// Wallet is the wallet used in the query that produced this record.
	// It is unrelated to FromAddress and ToAddress.
	Wallet string `json:"wallet"`
}

// Identity returns the composite key of the event's asset
func (e *RawEvent) Identity() Identity {
	return e.Asset.Identity()
}

// Collectible is the materialized domain object
type Collectible struct {
	ID              Identity      `json:"id"`
	TokenID         string        `json:"token_id"`
	ContractAddress string        `json:"contract_address"`
	Chain           Chain         `json:"chain"`
	Standard        ChainStandard `json:"standard"`
	Collection      string        `json:"collection,omitempty"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	MediaType       MediaType     `json:"media_type"`
	MimeType        string        `json:"mime_type,omitempty"`
	FrameURL        string        `json:"frame_url,omitempty"`
	ImageURL        string        `json:"image_url,omitempty"`
	GifURL          string        `json:"gif_url,omitempty"`
	VideoURL        string        `json:"video_url,omitempty"`
	ThreeDURL       string        `json:"three_d_url,omitempty"`
	ExternalURL     string        `json:"external_url,omitempty"`
	Permalink       string        `json:"permalink,omitempty"`

	Wallet              string     `json:"wallet"`
	IsOwned             bool       `json:"is_owned"`
	DateCreated         *time.Time `json:"date_created,omitempty"`
	DateLastTransferred *time.Time `json:"date_last_transferred,omitempty"`
}

// SetDateLastTransferred records a transfer date, keeping the most recent one.
// No other field is touched.
func (c *Collectible) SetDateLastTransferred(t time.Time) {
	if c.DateLastTransferred != nil && !t.After(*c.DateLastTransferred) {
		return
	}
	c.DateLastTransferred = &t
}

// CollectibleState maps a wallet to its collectibles in resolution order
type CollectibleState map[string][]*Collectible

// Count returns the total number of collectibles across wallets
func (s CollectibleState) Count() int {
	n := 0
	for _, cs := range s {
		n += len(cs)
	}
	return n
}

// AddressToBlockchain converts an address to the blockchain it belongs to
func AddressToBlockchain(address string) Blockchain {
	if strings.HasPrefix(address, "0x") {
		return BlockchainEthereum
	}
	return BlockchainSolana
}

// NormalizeAddresses normalizes a list of addresses to the format used by the blockchain
func NormalizeAddresses(addresses []string) []string {
	normalized := make([]string, 0, len(addresses))
	for _, address := range addresses {
		normalized = append(normalized, NormalizeAddress(address))
	}
	return normalized
}

// NormalizeAddress normalizes an address to the format used by the blockchain
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if strings.HasPrefix(address, "0x") && common.IsHexAddress(address) {
		return common.HexToAddress(address).String()
	}
	return address
}

// IsNullAddress reports whether the address is the canonical mint/burn address.
// An empty address is unknown, not null.
func IsNullAddress(address string) bool {
	if strings.HasPrefix(address, "0x") {
		return common.IsHexAddress(address) && common.HexToAddress(address) == (common.Address{})
	}
	return address == SOLANA_NULL_ADDRESS
}

// IsValidAddress checks the address format for the given blockchain
func IsValidAddress(blockchain Blockchain, address string) bool {
	switch blockchain {
	case BlockchainEthereum:
		return common.IsHexAddress(address)
	case BlockchainSolana:
		return base58Address.MatchString(address)
	default:
		return false
	}
}

// ValidTokenNumber checks if a token number is a decimal integer
func ValidTokenNumber(tokenNumber string) bool {
	return tokenNumber != "" && tokenNumberPattern.MatchString(tokenNumber)
}

var (
	tokenNumberPattern = regexp.MustCompile(`^[0-9]+$`)
	base58Address      = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)
