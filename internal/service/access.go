package service

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/assistralabs/assistra/internal/domain"
	"github.com/assistralabs/assistra/internal/usecase"
	"github.com/assistralabs/assistra/token"
)

var tracer = otel.Tracer("access")

// AccessService guards every protected call: it decodes the bearer
// credential and re-confirms, rather than trusts, that the embedded user is
// still a live member of the embedded organization and workspace.
type AccessService struct {
	tokens     *token.Issuer
	identities usecase.IdentityRepository
	tenants    usecase.TenantRepository
}

func NewAccessService(
	tokens *token.Issuer,
	identities usecase.IdentityRepository,
	tenants usecase.TenantRepository,
) *AccessService {
	return &AccessService{
		tokens:     tokens,
		identities: identities,
		tenants:    tenants,
	}
}

// Verify validates the credential and returns the live session context.
// A membership revoked after issuance fails here with ErrNoLongerMember even
// if the token has not expired yet.
func (s *AccessService) Verify(ctx context.Context, raw string) (domain.SessionContext, error) {
	ctx, span := tracer.Start(ctx, "Access.Verify")
	defer span.End()

	claims, err := s.tokens.Parse(raw)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, token.ErrExpired) {
			return domain.SessionContext{}, domain.ErrTokenExpired
		}
		return domain.SessionContext{}, domain.ErrTokenInvalid
	}

	user, err := s.identities.GetUser(ctx, claims.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.SessionContext{}, domain.ErrNoLongerMember
	}
	if err != nil {
		span.RecordError(err)
		return domain.SessionContext{}, errors.Wrap(err, "load user")
	}
	if !user.Active {
		return domain.SessionContext{}, domain.ErrNoLongerMember
	}

	if _, err := s.tenants.OrganizationRole(ctx, claims.OrganizationID, user.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SessionContext{}, domain.ErrNoLongerMember
		}
		span.RecordError(err)
		return domain.SessionContext{}, errors.Wrap(err, "organization membership")
	}

	ws, err := s.tenants.GetWorkspace(ctx, claims.WorkspaceID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.SessionContext{}, domain.ErrNoLongerMember
	}
	if err != nil {
		span.RecordError(err)
		return domain.SessionContext{}, errors.Wrap(err, "load workspace")
	}
	if ws.OrganizationID != claims.OrganizationID {
		return domain.SessionContext{}, domain.ErrTokenInvalid
	}

	if _, err := s.tenants.WorkspaceRole(ctx, claims.WorkspaceID, user.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SessionContext{}, domain.ErrNoLongerMember
		}
		span.RecordError(err)
		return domain.SessionContext{}, errors.Wrap(err, "workspace membership")
	}

	return domain.SessionContext{
		UserID:         user.ID,
		OrganizationID: claims.OrganizationID,
		WorkspaceID:    claims.WorkspaceID,
		Permissions:    claims.Permissions,
		ExpiresAt:      claims.ExpiresAt.Time,
	}, nil
}
