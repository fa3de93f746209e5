package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/assistralabs/assistra"
	"github.com/assistralabs/assistra/internal/domain"
	"github.com/assistralabs/assistra/wallet"
)

var tracer = otel.Tracer("usecase")

// IdentityUsecase resolves credentials (password or wallet signature) to a
// User, creating one on first successful authentication, and links further
// identities to existing users.
type IdentityUsecase struct {
	challenges ChallengeStore
	identities IdentityRepository
	verifiers  map[assistra.ChainFamily]wallet.Verifier
	fqdn       string
}

func NewIdentityUsecase(
	challenges ChallengeStore,
	identities IdentityRepository,
	verifiers map[assistra.ChainFamily]wallet.Verifier,
	fqdn string,
) *IdentityUsecase {
	return &IdentityUsecase{
		challenges: challenges,
		identities: identities,
		verifiers:  verifiers,
		fqdn:       fqdn,
	}
}

// WalletCredential is a signed challenge submitted for verification or
// linking. PubKey is only required for chain families that cannot recover the
// key from the signature.
type WalletCredential struct {
	Family    assistra.ChainFamily
	Address   string
	Message   string
	Signature string
	PubKey    string
}

// IssueChallenge stores a fresh nonce for (family, address), replacing any
// live one, and returns the message the wallet must sign.
func (uc *IdentityUsecase) IssueChallenge(ctx context.Context, family assistra.ChainFamily, address string) (string, error) {
	ctx, span := tracer.Start(ctx, "Identity.IssueChallenge")
	defer span.End()

	if _, ok := uc.verifiers[family]; !ok {
		return "", errors.Errorf("unsupported chain family: %s", family)
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generate nonce")
	}
	nonce := hex.EncodeToString(buf)

	normalized := assistra.NormalizeAddress(family, address)
	if err := uc.challenges.Put(ctx, family, normalized, nonce, domain.ChallengeTTL); err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "store challenge")
	}

	return wallet.ChallengeMessage(family, uc.fqdn, address, nonce, time.Now()), nil
}

// consumeAndVerify burns the nonce embedded in the submitted message, then
// checks the signature. The nonce is consumed before signature verification
// so a failed attempt cannot be replayed.
func (uc *IdentityUsecase) consumeAndVerify(ctx context.Context, cred WalletCredential) error {
	verifier, ok := uc.verifiers[cred.Family]
	if !ok {
		return errors.Errorf("unsupported chain family: %s", cred.Family)
	}

	if !wallet.MessageBoundTo(cred.Message, uc.fqdn, cred.Address) {
		return domain.ErrChallengeMismatch
	}
	nonce, ok := wallet.NonceFromMessage(cred.Message)
	if !ok {
		return domain.ErrChallengeMismatch
	}

	normalized := assistra.NormalizeAddress(cred.Family, cred.Address)
	if err := uc.challenges.Consume(ctx, cred.Family, normalized, nonce); err != nil {
		return err
	}

	if err := verifier.Verify(cred.Address, cred.Message, cred.Signature, cred.PubKey); err != nil {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// VerifyWallet authenticates a signed challenge. An unknown wallet address
// becomes a new User on the spot (signup-on-first-auth).
func (uc *IdentityUsecase) VerifyWallet(ctx context.Context, cred WalletCredential, displayName string) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "Identity.VerifyWallet")
	defer span.End()

	if err := uc.consumeAndVerify(ctx, cred); err != nil {
		span.RecordError(err)
		return domain.User{}, err
	}

	subject := assistra.NormalizeAddress(cred.Family, cred.Address)
	identity, err := uc.identities.GetIdentity(ctx, string(cred.Family), subject)
	if err == nil {
		return uc.activeUser(ctx, identity.UserID)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		span.RecordError(err)
		return domain.User{}, errors.Wrap(err, "lookup identity")
	}

	if displayName == "" {
		displayName = assistra.ShortAddress(cred.Address)
	}
	user := domain.User{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		Active:      true,
	}
	newIdentity := domain.AuthIdentity{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		Provider: string(cred.Family),
		Subject:  subject,
	}

	err = uc.identities.CreateUserWithIdentity(ctx, user, newIdentity)
	if errors.Is(err, domain.ErrDuplicate) {
		// A concurrent first authentication won; adopt its user.
		identity, err := uc.identities.GetIdentity(ctx, string(cred.Family), subject)
		if err != nil {
			return domain.User{}, errors.Wrap(err, "re-read identity after conflict")
		}
		return uc.activeUser(ctx, identity.UserID)
	}
	if err != nil {
		span.RecordError(err)
		return domain.User{}, errors.Wrap(err, "create wallet user")
	}
	return user, nil
}

// SignupEmail registers a password identity. Unlike wallets, password
// accounts are only created through this explicit signup.
func (uc *IdentityUsecase) SignupEmail(ctx context.Context, email, password, displayName string) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "Identity.SignupEmail")
	defer span.End()

	subject := assistra.NormalizeEmail(email)

	_, err := uc.identities.GetIdentity(ctx, assistra.ProviderPassword, subject)
	if err == nil {
		return domain.User{}, domain.ErrAlreadyRegistered
	}
	if !errors.Is(err, domain.ErrNotFound) {
		span.RecordError(err)
		return domain.User{}, errors.Wrap(err, "lookup identity")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, errors.Wrap(err, "hash password")
	}

	user := domain.User{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		Active:      true,
	}
	identity := domain.AuthIdentity{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Provider:   assistra.ProviderPassword,
		Subject:    subject,
		SecretHash: string(hash),
	}

	err = uc.identities.CreateUserWithIdentity(ctx, user, identity)
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.User{}, domain.ErrAlreadyRegistered
	}
	if err != nil {
		span.RecordError(err)
		return domain.User{}, errors.Wrap(err, "create user")
	}
	return user, nil
}

// LoginEmail authenticates a password credential. Unknown email and wrong
// password are indistinguishable to the caller.
func (uc *IdentityUsecase) LoginEmail(ctx context.Context, email, password string) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "Identity.LoginEmail")
	defer span.End()

	subject := assistra.NormalizeEmail(email)

	identity, err := uc.identities.GetIdentity(ctx, assistra.ProviderPassword, subject)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		span.RecordError(err)
		return domain.User{}, errors.Wrap(err, "lookup identity")
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.SecretHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	return uc.activeUser(ctx, identity.UserID)
}

// Link attaches an additional wallet identity to an already-authenticated
// user. Collisions with existing identities are distinguished by owner so the
// caller can present different guidance.
func (uc *IdentityUsecase) Link(ctx context.Context, userID string, cred WalletCredential) error {
	ctx, span := tracer.Start(ctx, "Identity.Link")
	defer span.End()

	if err := uc.consumeAndVerify(ctx, cred); err != nil {
		span.RecordError(err)
		return err
	}

	subject := assistra.NormalizeAddress(cred.Family, cred.Address)
	existing, err := uc.identities.GetIdentity(ctx, string(cred.Family), subject)
	if err == nil {
		if existing.UserID == userID {
			return domain.ErrAlreadyLinkedToSelf
		}
		return domain.ErrAlreadyLinkedToOther
	}
	if !errors.Is(err, domain.ErrNotFound) {
		span.RecordError(err)
		return errors.Wrap(err, "lookup identity")
	}

	err = uc.identities.CreateIdentity(ctx, domain.AuthIdentity{
		ID:       uuid.NewString(),
		UserID:   userID,
		Provider: string(cred.Family),
		Subject:  subject,
	})
	if errors.Is(err, domain.ErrDuplicate) {
		existing, lookupErr := uc.identities.GetIdentity(ctx, string(cred.Family), subject)
		if lookupErr == nil && existing.UserID == userID {
			return domain.ErrAlreadyLinkedToSelf
		}
		return domain.ErrAlreadyLinkedToOther
	}
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "create identity")
	}
	return nil
}

func (uc *IdentityUsecase) activeUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := uc.identities.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, errors.Wrap(err, "load user")
	}
	if !user.Active {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}
