package domain

import (
	"errors"
	"fmt"
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ErrDuplicate is returned by repositories when a uniqueness constraint
// rejects a write. Callers translate it into the flow-specific error.
var ErrDuplicate = errors.New("duplicate record")

// Authentication flow errors. ErrInvalidCredentials deliberately covers both
// unknown identifier and wrong secret so callers cannot enumerate accounts.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("email already registered")
)

// Challenge errors. All of them are recoverable by requesting a new challenge.
var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeExpired  = errors.New("challenge expired")
	ErrChallengeMismatch = errors.New("challenge mismatch")
)

// Linking errors. Self vs other is distinguished on purpose: the caller
// presents different guidance for each.
var (
	ErrAlreadyLinkedToSelf  = errors.New("identity already linked to this account")
	ErrAlreadyLinkedToOther = errors.New("identity already linked to another account")
)

// Authorization-time errors.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrNoLongerMember = errors.New("no longer a member")
)
