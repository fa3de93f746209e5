package assistra

import "strings"

// NormalizeEmail canonicalizes an email address for identity lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeAddress canonicalizes a wallet address for identity and challenge
// lookup. Ethereum hex and cosmos bech32 addresses are case-insensitive;
// solana base58 addresses are case-significant and only get trimmed.
func NormalizeAddress(family ChainFamily, address string) string {
	address = strings.TrimSpace(address)
	switch family {
	case ChainEthereum, ChainCosmos:
		return strings.ToLower(address)
	default:
		return address
	}
}

// ShortAddress renders a wallet address in the truncated form used as a
// default display name for wallet-first signups.
func ShortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
