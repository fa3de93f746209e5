package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/assistralabs/assistra"
	"github.com/assistralabs/assistra/internal/domain"
)

type mockChallengeStore struct {
	mu     sync.Mutex
	nonces map[string]string
}

func newMockChallengeStore() *mockChallengeStore {
	return &mockChallengeStore{nonces: map[string]string{}}
}

func challengeMockKey(family assistra.ChainFamily, address string) string {
	return string(family) + "/" + address
}

func (s *mockChallengeStore) Put(ctx context.Context, family assistra.ChainFamily, address, nonce string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[challengeMockKey(family, address)] = nonce
	return nil
}

func (s *mockChallengeStore) Consume(ctx context.Context, family assistra.ChainFamily, address, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := challengeMockKey(family, address)
	stored, ok := s.nonces[key]
	if !ok {
		return domain.ErrChallengeNotFound
	}
	if stored != nonce {
		return domain.ErrChallengeMismatch
	}
	delete(s.nonces, key)
	return nil
}

type mockIdentityRepo struct {
	mu         sync.Mutex
	users      map[string]domain.User
	identities map[string]domain.AuthIdentity

	// forced once on the next create call, then cleared
	createErr error
}

func newMockIdentityRepo() *mockIdentityRepo {
	return &mockIdentityRepo{
		users:      map[string]domain.User{},
		identities: map[string]domain.AuthIdentity{},
	}
}

func identityMockKey(provider, subject string) string {
	return provider + "/" + subject
}

func (r *mockIdentityRepo) seed(user domain.User, identity domain.AuthIdentity) {
	r.users[user.ID] = user
	r.identities[identityMockKey(identity.Provider, identity.Subject)] = identity
}

func (r *mockIdentityRepo) GetUser(ctx context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return user, nil
}

func (r *mockIdentityRepo) GetIdentity(ctx context.Context, provider, subject string) (domain.AuthIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.identities[identityMockKey(provider, subject)]
	if !ok {
		return domain.AuthIdentity{}, domain.NotFoundError{Resource: "identity"}
	}
	return identity, nil
}

func (r *mockIdentityRepo) CreateUserWithIdentity(ctx context.Context, user domain.User, identity domain.AuthIdentity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	key := identityMockKey(identity.Provider, identity.Subject)
	if _, ok := r.identities[key]; ok {
		return domain.ErrDuplicate
	}
	r.users[user.ID] = user
	r.identities[key] = identity
	return nil
}

func (r *mockIdentityRepo) CreateIdentity(ctx context.Context, identity domain.AuthIdentity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	key := identityMockKey(identity.Provider, identity.Subject)
	if _, ok := r.identities[key]; ok {
		return domain.ErrDuplicate
	}
	r.identities[key] = identity
	return nil
}

type mockTenantRepo struct {
	mu          sync.Mutex
	orgs        map[string]domain.Organization
	orgOrder    []string
	orgMembers  map[string]map[string]string // orgID -> userID -> role
	workspaces  map[string]domain.Workspace
	wsMembers   map[string]map[string]string // wsID -> userID -> role
	createCalls int

	createErr error
}

func newMockTenantRepo() *mockTenantRepo {
	return &mockTenantRepo{
		orgs:       map[string]domain.Organization{},
		orgMembers: map[string]map[string]string{},
		workspaces: map[string]domain.Workspace{},
		wsMembers:  map[string]map[string]string{},
	}
}

func (r *mockTenantRepo) ListOrganizations(ctx context.Context, userID string) ([]domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orgs []domain.Organization
	for _, id := range r.orgOrder {
		if _, ok := r.orgMembers[id][userID]; ok {
			orgs = append(orgs, r.orgs[id])
		}
	}
	return orgs, nil
}

func (r *mockTenantRepo) DefaultWorkspace(ctx context.Context, orgID string) (domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ws := range r.workspaces {
		if ws.OrganizationID == orgID && ws.IsDefault {
			return ws, nil
		}
	}
	for _, ws := range r.workspaces {
		if ws.OrganizationID == orgID {
			return ws, nil
		}
	}
	return domain.Workspace{}, domain.NotFoundError{Resource: "workspace"}
}

func (r *mockTenantRepo) GetWorkspace(ctx context.Context, workspaceID string) (domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[workspaceID]
	if !ok {
		return domain.Workspace{}, domain.NotFoundError{Resource: "workspace"}
	}
	return ws, nil
}

func (r *mockTenantRepo) CreatePersonalTenant(ctx context.Context, org domain.Organization, member domain.OrganizationMember, ws domain.Workspace, wsMember domain.WorkspaceMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	r.orgs[org.ID] = org
	r.orgOrder = append(r.orgOrder, org.ID)
	r.orgMembers[org.ID] = map[string]string{member.UserID: member.Role}
	r.workspaces[ws.ID] = ws
	r.wsMembers[ws.ID] = map[string]string{wsMember.UserID: wsMember.Role}
	return nil
}

func (r *mockTenantRepo) OrganizationRole(ctx context.Context, orgID, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.orgMembers[orgID][userID]
	if !ok {
		return "", domain.NotFoundError{Resource: "organization member"}
	}
	return role, nil
}

func (r *mockTenantRepo) WorkspaceRole(ctx context.Context, workspaceID, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.wsMembers[workspaceID][userID]
	if !ok {
		return "", domain.NotFoundError{Resource: "workspace member"}
	}
	return role, nil
}
