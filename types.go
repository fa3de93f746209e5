package assistra

// ChainFamily identifies a class of wallet signature scheme. Every wallet
// credential and challenge is tagged with exactly one family.
type ChainFamily string

const (
	ChainEthereum ChainFamily = "ethereum"
	ChainSolana   ChainFamily = "solana"
	ChainCosmos   ChainFamily = "cosmos"
)

// ProviderPassword is the AuthIdentity provider tag for email+password
// identities. Wallet identities use their ChainFamily value as the tag.
const ProviderPassword = "password"

// ParseChainFamily maps a request path segment to a known chain family.
func ParseChainFamily(s string) (ChainFamily, bool) {
	switch ChainFamily(s) {
	case ChainEthereum, ChainSolana, ChainCosmos:
		return ChainFamily(s), true
	}
	return "", false
}
