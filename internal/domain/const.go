package domain

const (
	// Identity constants
	IDENTITY_SEPARATOR = ":::"

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"
	SOLANA_NULL_ADDRESS   = "11111111111111111111111111111111"
)
