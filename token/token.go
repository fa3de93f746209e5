// Package token issues and validates the signed session credential carrying
// (user, organization, workspace, permissions). Tokens are immutable value
// objects: switching context issues a new one, nothing is ever mutated or
// stored server side.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("token invalid")
)

// DefaultTTL is the credential lifetime when none is configured.
const DefaultTTL = time.Hour

// Claims is the token payload. Subject carries the user id.
type Claims struct {
	jwt.RegisteredClaims
	OrganizationID string   `json:"org_id"`
	WorkspaceID    string   `json:"ws_id"`
	Permissions    []string `json:"perms"`
}

// Issuer signs and parses session credentials with a shared HMAC secret.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewIssuer(secret []byte, issuer string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: secret, issuer: issuer, ttl: ttl}
}

// TTL returns the configured credential lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a fresh credential for the given context. The expiry is always
// relative to now; re-issuing never extends an old token.
func (i *Issuer) Issue(userID, orgID, workspaceID string, perms []string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(i.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		OrganizationID: orgID,
		WorkspaceID:    workspaceID,
		Permissions:    perms,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies signature and expiry and returns the embedded claims.
// Membership liveness is the caller's concern; an expired or tampered token
// never yields claims.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(i.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	if claims.Subject == "" || claims.OrganizationID == "" || claims.WorkspaceID == "" {
		return nil, ErrInvalid
	}
	return &claims, nil
}
