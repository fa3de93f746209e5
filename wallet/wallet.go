// Package wallet implements pure signature verification for the supported
// chain families. Verifiers hold no state and touch no store; they are
// predicates consumed by the identity flow after the challenge nonce has been
// consumed.
package wallet

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/assistralabs/assistra"
)

var (
	ErrSignatureInvalid = errors.New("signature invalid")
	ErrAddressMismatch  = errors.New("address mismatch")
	ErrMalformedInput   = errors.New("malformed signature input")
)

// Verifier validates a signed challenge message against a claimed address.
// pubKey is only consulted by families that cannot recover the key from the
// signature (cosmos); the others ignore it.
type Verifier interface {
	Verify(address, message, signature, pubKey string) error
}

// Registry returns one verifier per supported chain family.
func Registry() map[assistra.ChainFamily]Verifier {
	return map[assistra.ChainFamily]Verifier{
		assistra.ChainEthereum: EthereumVerifier{},
		assistra.ChainSolana:   SolanaVerifier{},
		assistra.ChainCosmos:   CosmosVerifier{},
	}
}

func familyLabel(family assistra.ChainFamily) string {
	switch family {
	case assistra.ChainEthereum:
		return "Ethereum"
	case assistra.ChainSolana:
		return "Solana"
	case assistra.ChainCosmos:
		return "Cosmos"
	}
	return string(family)
}

// ChallengeMessage renders the human-readable message a wallet is asked to
// sign. The nonce line is what ties the signature back to the issued
// challenge; NonceFromMessage parses it out again on verification.
func ChallengeMessage(family assistra.ChainFamily, domain, address, nonce string, issuedAt time.Time) string {
	return fmt.Sprintf(
		"%s wants you to sign in with your %s account:\n%s\n\nNonce: %s\nIssued At: %s",
		domain, familyLabel(family), address, nonce, issuedAt.UTC().Format(time.RFC3339),
	)
}

// NonceFromMessage extracts the nonce line from a submitted challenge message.
func NonceFromMessage(message string) (string, bool) {
	for _, line := range strings.Split(message, "\n") {
		if nonce, ok := strings.CutPrefix(line, "Nonce: "); ok && nonce != "" {
			return nonce, true
		}
	}
	return "", false
}

// MessageBoundTo reports whether the submitted message was produced by this
// deployment for the claimed address, rejecting signatures captured on other
// domains or for other accounts.
func MessageBoundTo(message, domain, address string) bool {
	return strings.HasPrefix(message, domain+" wants you to sign in") &&
		strings.Contains(message, "\n"+address+"\n")
}
