package domain

import "time"

// ChallengeTTL is the fixed lifetime of a signing challenge.
const ChallengeTTL = 5 * time.Minute

// Challenge is an ephemeral nonce bound to (chain family, address).
// At most one live challenge exists per pair; it is consumed exactly once.
type Challenge struct {
	Family    string    `json:"family"`
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
