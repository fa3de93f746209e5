package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/assistralabs/assistra/internal/domain"
	"github.com/assistralabs/assistra/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	access *service.AccessService
}

func NewAuthMiddleware(access *service.AccessService) *AuthMiddleware {
	return &AuthMiddleware{access: access}
}

// RequireSession rejects requests without a valid, live session credential.
// The verified session context is stored on the request context for
// handlers.
func (m *AuthMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.RequireSession")
		defer span.End()

		raw, err := bearerToken(c)
		if err != nil {
			span.RecordError(err)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token_invalid"})
		}

		session, err := m.access.Verify(ctx, raw)
		if err != nil {
			span.RecordError(errors.Wrap(err, "AuthMiddleware.RequireSession: access verification failed"))
			switch {
			case errors.Is(err, domain.ErrTokenExpired):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token_expired"})
			case errors.Is(err, domain.ErrNoLongerMember):
				return c.JSON(http.StatusForbidden, echo.Map{"error": "no_longer_member"})
			case errors.Is(err, domain.ErrTokenInvalid):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token_invalid"})
			default:
				c.Logger().Error(err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
		}

		span.SetAttributes(attribute.String("RequesterId", session.UserID))
		ctx = context.WithValue(ctx, domain.SessionCtxKey, session)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// SessionFrom extracts the verified session context placed by
// RequireSession.
func SessionFrom(ctx context.Context) (domain.SessionContext, bool) {
	session, ok := ctx.Value(domain.SessionCtxKey).(domain.SessionContext)
	return session, ok
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}

	split := strings.Split(authHeader, " ")
	if len(split) != 2 {
		return "", errors.New("invalid authorization header")
	}

	authType, tok := split[0], split[1]
	if authType != "Bearer" {
		return "", errors.New("only Bearer is acceptable")
	}
	return tok, nil
}
