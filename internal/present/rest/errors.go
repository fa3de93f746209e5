package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/assistralabs/assistra/internal/domain"
)

// writeError maps the domain error taxonomy to HTTP responses. Anything
// outside the taxonomy is a server-side failure: it is logged and surfaced
// as a generic error so internals never leak to the caller.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_credentials"})
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already_registered"})
	case errors.Is(err, domain.ErrChallengeNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "challenge_not_found"})
	case errors.Is(err, domain.ErrChallengeExpired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "challenge_expired"})
	case errors.Is(err, domain.ErrChallengeMismatch):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "challenge_mismatch"})
	case errors.Is(err, domain.ErrAlreadyLinkedToSelf):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already_linked_to_self"})
	case errors.Is(err, domain.ErrAlreadyLinkedToOther):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already_linked_to_other"})
	case errors.Is(err, domain.ErrTokenExpired):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token_expired"})
	case errors.Is(err, domain.ErrTokenInvalid):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token_invalid"})
	case errors.Is(err, domain.ErrNoLongerMember):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no_longer_member"})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
