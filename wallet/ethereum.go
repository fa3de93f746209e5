package wallet

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// EthereumVerifier validates personal_sign (EIP-191) signatures by recovering
// the signer's public key and comparing the derived address.
type EthereumVerifier struct{}

func (EthereumVerifier) Verify(address, message, signature, _ string) error {
	if !common.IsHexAddress(address) {
		return ErrMalformedInput
	}

	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return ErrMalformedInput
	}

	// Wallets emit V as 27/28; go-ethereum expects 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	digest := crypto.Keccak256([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)))
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return ErrSignatureInvalid
	}

	recovered := crypto.PubkeyToAddress(*pub)
	if !strings.EqualFold(recovered.Hex(), address) {
		return ErrAddressMismatch
	}
	return nil
}
