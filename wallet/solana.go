package wallet

import (
	"crypto/ed25519"

	"github.com/cosmos/btcutil/base58"
)

// SolanaVerifier validates Ed25519 signatures over the raw message bytes.
// The address is the base58 encoding of the Ed25519 public key itself, so no
// separate key material is needed.
type SolanaVerifier struct{}

func (SolanaVerifier) Verify(address, message, signature, _ string) error {
	pub := base58.Decode(address)
	if len(pub) != ed25519.PublicKeySize {
		return ErrMalformedInput
	}

	sig := base58.Decode(signature)
	if len(sig) != ed25519.SignatureSize {
		return ErrMalformedInput
	}

	if !ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig) {
		return ErrSignatureInvalid
	}
	return nil
}
