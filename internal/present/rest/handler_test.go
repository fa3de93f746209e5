package rest

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cosmos/btcutil/base58"
	"github.com/labstack/echo/v4"

	"github.com/assistralabs/assistra/internal/domain"
	"github.com/assistralabs/assistra/internal/infra/repository"
	"github.com/assistralabs/assistra/internal/present/rest/middleware"
	"github.com/assistralabs/assistra/internal/service"
	"github.com/assistralabs/assistra/internal/usecase"
	"github.com/assistralabs/assistra/token"
	"github.com/assistralabs/assistra/wallet"
)

// memRepo is an in-memory stand-in for the gorm repositories, backing both
// the identity and tenant ports.
type memRepo struct {
	mu         sync.Mutex
	users      map[string]domain.User
	identities map[string]domain.AuthIdentity
	orgs       map[string]domain.Organization
	orgOrder   []string
	orgRoles   map[string]string
	workspaces map[string]domain.Workspace
	wsRoles    map[string]string
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:      map[string]domain.User{},
		identities: map[string]domain.AuthIdentity{},
		orgs:       map[string]domain.Organization{},
		orgRoles:   map[string]string{},
		workspaces: map[string]domain.Workspace{},
		wsRoles:    map[string]string{},
	}
}

func (r *memRepo) GetUser(ctx context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return user, nil
}

func (r *memRepo) GetIdentity(ctx context.Context, provider, subject string) (domain.AuthIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.identities[provider+"/"+subject]
	if !ok {
		return domain.AuthIdentity{}, domain.NotFoundError{Resource: "identity"}
	}
	return identity, nil
}

func (r *memRepo) CreateUserWithIdentity(ctx context.Context, user domain.User, identity domain.AuthIdentity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := identity.Provider + "/" + identity.Subject
	if _, ok := r.identities[key]; ok {
		return domain.ErrDuplicate
	}
	r.users[user.ID] = user
	r.identities[key] = identity
	return nil
}

func (r *memRepo) CreateIdentity(ctx context.Context, identity domain.AuthIdentity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := identity.Provider + "/" + identity.Subject
	if _, ok := r.identities[key]; ok {
		return domain.ErrDuplicate
	}
	r.identities[key] = identity
	return nil
}

func (r *memRepo) ListOrganizations(ctx context.Context, userID string) ([]domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orgs []domain.Organization
	for _, id := range r.orgOrder {
		if _, ok := r.orgRoles[id+"/"+userID]; ok {
			orgs = append(orgs, r.orgs[id])
		}
	}
	return orgs, nil
}

func (r *memRepo) DefaultWorkspace(ctx context.Context, orgID string) (domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ws := range r.workspaces {
		if ws.OrganizationID == orgID && ws.IsDefault {
			return ws, nil
		}
	}
	return domain.Workspace{}, domain.NotFoundError{Resource: "workspace"}
}

func (r *memRepo) GetWorkspace(ctx context.Context, workspaceID string) (domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[workspaceID]
	if !ok {
		return domain.Workspace{}, domain.NotFoundError{Resource: "workspace"}
	}
	return ws, nil
}

func (r *memRepo) CreatePersonalTenant(ctx context.Context, org domain.Organization, member domain.OrganizationMember, ws domain.Workspace, wsMember domain.WorkspaceMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orgs {
		if existing.Personal && existing.CreatedBy == org.CreatedBy {
			return domain.ErrDuplicate
		}
	}
	r.orgs[org.ID] = org
	r.orgOrder = append(r.orgOrder, org.ID)
	r.orgRoles[org.ID+"/"+member.UserID] = member.Role
	r.workspaces[ws.ID] = ws
	r.wsRoles[ws.ID+"/"+wsMember.UserID] = wsMember.Role
	return nil
}

func (r *memRepo) OrganizationRole(ctx context.Context, orgID, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.orgRoles[orgID+"/"+userID]
	if !ok {
		return "", domain.NotFoundError{Resource: "organization member"}
	}
	return role, nil
}

func (r *memRepo) WorkspaceRole(ctx context.Context, workspaceID, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.wsRoles[workspaceID+"/"+userID]
	if !ok {
		return "", domain.NotFoundError{Resource: "workspace member"}
	}
	return role, nil
}

func newTestServer(t *testing.T) (*echo.Echo, *memRepo) {
	t.Helper()

	repo := newMemRepo()
	challenges := repository.NewMemoryChallengeStore()
	identity := usecase.NewIdentityUsecase(challenges, repo, wallet.Registry(), "assistra.example.com")
	tenant := usecase.NewTenantUsecase(repo, 30)
	issuer := token.NewIssuer([]byte("test-secret"), "assistra.example.com", time.Hour)
	access := service.NewAccessService(issuer, repo, repo)
	auth := middleware.NewAuthMiddleware(access)

	e := echo.New()
	NewHandler(identity, tenant, issuer, auth, nil).RegisterRoutes(e)
	return e, repo
}

func doJSON(e *echo.Echo, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return body
}

type solanaWallet struct {
	address string
	priv    ed25519.PrivateKey
}

func newSolanaWallet(t *testing.T) solanaWallet {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return solanaWallet{address: base58.Encode(pub), priv: priv}
}

func (w solanaWallet) challengeAndSign(t *testing.T, e *echo.Echo) (message, signature string) {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/auth/solana/challenge", `{"address":"`+w.address+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("challenge failed: %d %s", rec.Code, rec.Body.String())
	}
	message = decodeBody(t, rec)["message"].(string)
	signature = base58.Encode(ed25519.Sign(w.priv, []byte(message)))
	return message, signature
}

func (w solanaWallet) verifyBody(message, signature string) string {
	b, _ := json.Marshal(map[string]string{
		"address":       w.address,
		"signedMessage": message,
		"signature":     signature,
	})
	return string(b)
}

func TestWalletAuthFlow(t *testing.T) {
	e, repo := newTestServer(t)
	w := newSolanaWallet(t)

	message, signature := w.challengeAndSign(t, e)

	rec := doJSON(e, http.MethodPost, "/auth/solana/verify", w.verifyBody(message, signature), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("verify failed: %d %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	bearer, _ := body["token"].(string)
	if bearer == "" {
		t.Fatalf("expected a context token, got %s", rec.Body.String())
	}
	if body["expiresIn"].(float64) != 3600 {
		t.Fatalf("expected 3600s expiry, got %v", body["expiresIn"])
	}

	// a personal tenant was provisioned on first authentication
	if len(repo.orgs) != 1 || len(repo.workspaces) != 1 {
		t.Fatalf("expected 1 org and 1 workspace, got %d/%d", len(repo.orgs), len(repo.workspaces))
	}
	for _, org := range repo.orgs {
		if !org.Personal || org.Tier != domain.TierFree {
			t.Fatalf("unexpected org: %+v", org)
		}
	}

	// the token grants access to protected routes
	rec = doJSON(e, http.MethodGet, "/auth/me", "", bearer)
	if rec.Code != http.StatusOK {
		t.Fatalf("me failed: %d %s", rec.Code, rec.Body.String())
	}

	// the challenge is single-use
	rec = doJSON(e, http.MethodPost, "/auth/solana/verify", w.verifyBody(message, signature), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("replay should be rejected: %d %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["error"] != "challenge_not_found" {
		t.Fatalf("expected challenge_not_found, got %s", rec.Body.String())
	}

	// a second login maps to the same user and tenant
	message, signature = w.challengeAndSign(t, e)
	rec = doJSON(e, http.MethodPost, "/auth/solana/verify", w.verifyBody(message, signature), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("second login failed: %d %s", rec.Code, rec.Body.String())
	}
	if len(repo.users) != 1 || len(repo.orgs) != 1 {
		t.Fatalf("second login must not create records, got %d users %d orgs", len(repo.users), len(repo.orgs))
	}
}

func TestWalletVerifyForgedSignature(t *testing.T) {
	e, _ := newTestServer(t)
	w := newSolanaWallet(t)
	forger := newSolanaWallet(t)

	message, _ := w.challengeAndSign(t, e)
	forged := base58.Encode(ed25519.Sign(forger.priv, []byte(message)))

	rec := doJSON(e, http.MethodPost, "/auth/solana/verify", w.verifyBody(message, forged), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged signature should be 401: %d %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["error"] != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials, got %s", rec.Body.String())
	}
}

func TestEmailSignupAndLogin(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/auth/email/signup",
		`{"email":"alice@example.com","password":"hunter22","displayName":"Alice"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["token"] == "" {
		t.Fatalf("signup should establish a session")
	}

	rec = doJSON(e, http.MethodPost, "/auth/email/signup",
		`{"email":"ALICE@example.com","password":"other","displayName":"Alice"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup should be 409: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/auth/email/login",
		`{"email":"alice@example.com","password":"hunter22"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/auth/email/login",
		`{"email":"alice@example.com","password":"wrong"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password should be 401: %d %s", rec.Code, rec.Body.String())
	}
}

func TestLinkWallet(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/auth/email/signup",
		`{"email":"alice@example.com","password":"hunter22","displayName":"Alice"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", rec.Code, rec.Body.String())
	}
	bearer := decodeBody(t, rec)["token"].(string)

	w := newSolanaWallet(t)
	message, signature := w.challengeAndSign(t, e)

	rec = doJSON(e, http.MethodPost, "/auth/solana/link", w.verifyBody(message, signature), bearer)
	if rec.Code != http.StatusOK {
		t.Fatalf("link failed: %d %s", rec.Code, rec.Body.String())
	}

	// linking the same wallet again conflicts with self
	message, signature = w.challengeAndSign(t, e)
	rec = doJSON(e, http.MethodPost, "/auth/solana/link", w.verifyBody(message, signature), bearer)
	if rec.Code != http.StatusConflict || decodeBody(t, rec)["error"] != "already_linked_to_self" {
		t.Fatalf("expected already_linked_to_self: %d %s", rec.Code, rec.Body.String())
	}

	// another account linking the same wallet conflicts with other
	rec = doJSON(e, http.MethodPost, "/auth/email/signup",
		`{"email":"bob@example.com","password":"hunter22","displayName":"Bob"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("second signup failed: %d %s", rec.Code, rec.Body.String())
	}
	otherBearer := decodeBody(t, rec)["token"].(string)

	message, signature = w.challengeAndSign(t, e)
	rec = doJSON(e, http.MethodPost, "/auth/solana/link", w.verifyBody(message, signature), otherBearer)
	if rec.Code != http.StatusConflict || decodeBody(t, rec)["error"] != "already_linked_to_other" {
		t.Fatalf("expected already_linked_to_other: %d %s", rec.Code, rec.Body.String())
	}

	// link requires authentication
	message, signature = w.challengeAndSign(t, e)
	rec = doJSON(e, http.MethodPost, "/auth/solana/link", w.verifyBody(message, signature), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated link should be 401: %d", rec.Code)
	}
}

func TestSwitchContext(t *testing.T) {
	e, repo := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/auth/email/signup",
		`{"email":"alice@example.com","password":"hunter22","displayName":"Alice"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", rec.Code, rec.Body.String())
	}
	bearer := decodeBody(t, rec)["token"].(string)

	var orgID, userID string
	for id := range repo.orgs {
		orgID = id
	}
	for id := range repo.users {
		userID = id
	}

	// add a second workspace in the same organization
	repo.workspaces["ws-2"] = domain.Workspace{ID: "ws-2", OrganizationID: orgID, Name: "Research"}
	repo.wsRoles["ws-2/"+userID] = domain.WorkspaceRoleViewer

	rec = doJSON(e, http.MethodPost, "/auth/context/switch",
		`{"organizationId":"`+orgID+`","workspaceId":"ws-2"}`, bearer)
	if rec.Code != http.StatusOK {
		t.Fatalf("switch failed: %d %s", rec.Code, rec.Body.String())
	}
	fresh := decodeBody(t, rec)["token"].(string)
	if fresh == "" {
		t.Fatalf("switch should issue a fresh token")
	}

	// the old token still works until it expires
	rec = doJSON(e, http.MethodGet, "/auth/me", "", bearer)
	if rec.Code != http.StatusOK {
		t.Fatalf("old token should stay valid: %d %s", rec.Code, rec.Body.String())
	}

	// switching into a foreign workspace is refused
	rec = doJSON(e, http.MethodPost, "/auth/context/switch",
		`{"organizationId":"`+orgID+`","workspaceId":"nope"}`, bearer)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign workspace switch should be 403: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRevokedMembershipBlocksAccess(t *testing.T) {
	e, repo := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/auth/email/signup",
		`{"email":"alice@example.com","password":"hunter22","displayName":"Alice"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", rec.Code, rec.Body.String())
	}
	bearer := decodeBody(t, rec)["token"].(string)

	repo.mu.Lock()
	for key := range repo.orgRoles {
		delete(repo.orgRoles, key)
	}
	repo.mu.Unlock()

	rec = doJSON(e, http.MethodGet, "/auth/me", "", bearer)
	if rec.Code != http.StatusForbidden || decodeBody(t, rec)["error"] != "no_longer_member" {
		t.Fatalf("revoked membership should be 403 no_longer_member: %d %s", rec.Code, rec.Body.String())
	}
}
