package wallet

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	"github.com/cosmos/cosmos-sdk/types/bech32"
)

// CosmosVerifier validates ADR-36 (signArbitrary) secp256k1 signatures.
// The signature cannot be recovered to a key, so the caller supplies the
// compressed public key; the verifier additionally confirms that key hashes
// to the claimed bech32 address.
type CosmosVerifier struct{}

func (CosmosVerifier) Verify(address, message, signature, pubKey string) error {
	raw, err := base64.StdEncoding.DecodeString(pubKey)
	if err != nil || len(raw) != secp256k1.PubKeySize {
		return ErrMalformedInput
	}
	pk := &secp256k1.PubKey{Key: raw}

	prefix, addrBytes, err := bech32.DecodeAndConvert(address)
	if err != nil || prefix == "" {
		return ErrMalformedInput
	}
	if !bytes.Equal(addrBytes, pk.Address().Bytes()) {
		return ErrAddressMismatch
	}

	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(sig) != 64 {
		return ErrMalformedInput
	}

	if !pk.VerifySignature(CosmosSignDoc(address, message), sig) {
		return ErrSignatureInvalid
	}
	return nil
}

// CosmosSignDoc builds the canonical ADR-36 sign document wrapping an
// arbitrary message. Keys are emitted in sorted order to match what wallets
// produce for signArbitrary.
func CosmosSignDoc(signer, message string) []byte {
	data := base64.StdEncoding.EncodeToString([]byte(message))
	doc := fmt.Sprintf(
		`{"account_number":"0","chain_id":"","fee":{"amount":[],"gas":"0"},"memo":"","msgs":[{"type":"sign/MsgSignData","value":{"data":"%s","signer":"%s"}}],"sequence":"0"}`,
		data, signer,
	)
	return []byte(doc)
}
