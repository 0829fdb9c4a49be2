// Package token holds the static catalog of supported test tokens.
package token

import "strings"

// Polygon Amoy testnet token addresses
const (
	USDC   = "0x41e94eb019c0762f9bfcf9fb1e58725bfb0e7582"
	WETH   = "0x360ad4f9a9A8EFe9A8DCB5f461c4Cc1047E1Dcf9"
	WMATIC = "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270"

	// NativeMATIC is the pseudo-address aggregators use for native currency swaps
	NativeMATIC = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"
)

// UnknownSymbol is returned for addresses outside the catalog.
// Callers must treat it as an unsupported token.
const UnknownSymbol = "UNKNOWN"

type tokenInfo struct {
	symbol   string
	decimals int
}

var catalog = map[string]tokenInfo{
	strings.ToLower(USDC):        {symbol: "USDC", decimals: 6},
	strings.ToLower(WETH):        {symbol: "WETH", decimals: 18},
	strings.ToLower(WMATIC):      {symbol: "WMATIC", decimals: 18},
	strings.ToLower(NativeMATIC): {symbol: "MATIC", decimals: 18},
}

// Symbol returns the token symbol for an address, or UnknownSymbol
// if the address is not in the catalog. Lookup is case-insensitive.
func Symbol(address string) string {
	if info, ok := catalog[strings.ToLower(address)]; ok {
		return info.symbol
	}
	return UnknownSymbol
}

// Decimals returns the number of decimals for a token address.
// Unknown addresses default to 18.
func Decimals(address string) int {
	if info, ok := catalog[strings.ToLower(address)]; ok {
		return info.decimals
	}
	return 18
}

// Supported reports whether the address resolves to a catalog token
func Supported(address string) bool {
	_, ok := catalog[strings.ToLower(address)]
	return ok
}
