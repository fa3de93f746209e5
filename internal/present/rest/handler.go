package rest

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/assistralabs/assistra"
	"github.com/assistralabs/assistra/internal/domain"
	"github.com/assistralabs/assistra/internal/infra/ratelimit"
	"github.com/assistralabs/assistra/internal/present/rest/middleware"
	"github.com/assistralabs/assistra/internal/usecase"
	"github.com/assistralabs/assistra/token"
)

type Handler struct {
	identity *usecase.IdentityUsecase
	tenant   *usecase.TenantUsecase
	tokens   *token.Issuer
	auth     *middleware.AuthMiddleware
	limiter  *ratelimit.Limiter
}

func NewHandler(
	identity *usecase.IdentityUsecase,
	tenant *usecase.TenantUsecase,
	tokens *token.Issuer,
	auth *middleware.AuthMiddleware,
	limiter *ratelimit.Limiter,
) *Handler {
	return &Handler{
		identity: identity,
		tenant:   tenant,
		tokens:   tokens,
		auth:     auth,
		limiter:  limiter,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/:chain/challenge", h.handleChallenge)
	e.POST("/auth/:chain/verify", h.handleWalletVerify)
	e.POST("/auth/email/signup", h.handleSignup)
	e.POST("/auth/email/login", h.handleLogin)
	e.POST("/auth/:chain/link", h.handleLink, h.auth.RequireSession)
	e.POST("/auth/context/switch", h.handleSwitch, h.auth.RequireSession)
	e.GET("/auth/me", h.handleMe, h.auth.RequireSession)
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

type challengeRequest struct {
	Address string `json:"address"`
}

func (h *Handler) handleChallenge(c echo.Context) error {
	ctx := c.Request().Context()

	family, ok := assistra.ParseChainFamily(c.Param("chain"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported chain"})
	}

	var request challengeRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if request.Address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "address is required"})
	}

	if !h.limiter.Allow("challenge:" + request.Address) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
	}

	message, err := h.identity.IssueChallenge(ctx, family, request.Address)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

type walletVerifyRequest struct {
	Address       string `json:"address"`
	SignedMessage string `json:"signedMessage"`
	Signature     string `json:"signature"`
	PubKey        string `json:"pubKey,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
}

func (r walletVerifyRequest) credential(family assistra.ChainFamily) usecase.WalletCredential {
	return usecase.WalletCredential{
		Family:    family,
		Address:   r.Address,
		Message:   r.SignedMessage,
		Signature: r.Signature,
		PubKey:    r.PubKey,
	}
}

func (h *Handler) handleWalletVerify(c echo.Context) error {
	ctx := c.Request().Context()

	family, ok := assistra.ParseChainFamily(c.Param("chain"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported chain"})
	}

	var request walletVerifyRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	user, err := h.identity.VerifyWallet(ctx, request.credential(family), request.DisplayName)
	if err != nil {
		return writeError(c, err)
	}

	response, err := h.establishSession(ctx, user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (h *Handler) handleSignup(c echo.Context) error {
	ctx := c.Request().Context()

	var request signupRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if request.Email == "" || request.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	user, err := h.identity.SignupEmail(ctx, request.Email, request.Password, request.DisplayName)
	if err != nil {
		return writeError(c, err)
	}

	response, err := h.establishSession(ctx, user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, response)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var request loginRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if !h.limiter.Allow("login:" + assistra.NormalizeEmail(request.Email)) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
	}

	user, err := h.identity.LoginEmail(ctx, request.Email, request.Password)
	if err != nil {
		return writeError(c, err)
	}

	response, err := h.establishSession(ctx, user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

func (h *Handler) handleLink(c echo.Context) error {
	ctx := c.Request().Context()

	session, ok := middleware.SessionFrom(ctx)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token_invalid"})
	}

	family, ok := assistra.ParseChainFamily(c.Param("chain"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported chain"})
	}

	var request walletVerifyRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if err := h.identity.Link(ctx, session.UserID, request.credential(family)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "linked"})
}

type switchRequest struct {
	OrganizationID string `json:"organizationId"`
	WorkspaceID    string `json:"workspaceId"`
}

func (h *Handler) handleSwitch(c echo.Context) error {
	ctx := c.Request().Context()

	session, ok := middleware.SessionFrom(ctx)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token_invalid"})
	}

	var request switchRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	perms, err := h.tenant.Switch(ctx, session.UserID, request.OrganizationID, request.WorkspaceID)
	if err != nil {
		return writeError(c, err)
	}

	signed, _, err := h.tokens.Issue(session.UserID, request.OrganizationID, request.WorkspaceID, perms)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResponse{
		Token:     signed,
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
	})
}

func (h *Handler) handleMe(c echo.Context) error {
	session, ok := middleware.SessionFrom(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token_invalid"})
	}
	return c.JSON(http.StatusOK, session)
}

// establishSession resolves the user's tenant (provisioning one on first
// authentication) and issues the signed context credential.
func (h *Handler) establishSession(ctx context.Context, user domain.User) (tokenResponse, error) {
	org, ws, err := h.tenant.EnsureTenant(ctx, user)
	if err != nil {
		return tokenResponse{}, err
	}

	perms, err := h.tenant.Permissions(ctx, user.ID, org.ID, ws.ID)
	if err != nil {
		return tokenResponse{}, err
	}

	signed, _, err := h.tokens.Issue(user.ID, org.ID, ws.ID, perms)
	if err != nil {
		return tokenResponse{}, err
	}
	return tokenResponse{
		Token:     signed,
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
	}, nil
}
