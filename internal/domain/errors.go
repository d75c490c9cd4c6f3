package domain

import "errors"

var (
	// ErrMaterialization is returned when a valid record cannot be turned into a collectible
	ErrMaterialization = errors.New("materialization failed")

	// ErrNoMedia is returned when a record carries no displayable media
	ErrNoMedia = errors.New("no displayable media")

	// ErrUnsupportedChain is returned for addresses or records of an unknown chain
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrPartialResult is returned when some chains failed while others succeeded
	ErrPartialResult = errors.New("partial result")

	// ErrAllChainsFailed is returned when every attempted chain failed
	ErrAllChainsFailed = errors.New("all chains failed")
)
