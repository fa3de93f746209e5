package domain

import "time"

// User is the identity anchor. It is created on first successful
// authentication of any kind and only ever soft-deactivated.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuthIdentity binds one authentication method to a User.
// (Provider, Subject) is globally unique: an email or wallet address belongs
// to at most one user at any time. Wallet identities carry no stored secret.
type AuthIdentity struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Provider   string    `json:"provider"` // "password" or a chain family tag
	Subject    string    `json:"subject"`  // normalized email or wallet address
	SecretHash string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}
