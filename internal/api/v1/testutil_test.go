package v1_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/campusbot/internal/docs"
	"github.com/gosuda/campusbot/internal/domain"
	"github.com/gosuda/campusbot/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject tenant/user/role into context for DoCtx
// ---------------------------------------------------------------------------

func adminCtx(tenantID string) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyTenantID, tenantID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, domain.RoleAdmin)
	return ctx
}

func studentCtx(tenantID string) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyTenantID, tenantID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, uuid.New())
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, domain.RoleStudent)
	return ctx
}

func superAdminCtx() context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserRole, domain.RoleSuperAdmin)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	tenants   domain.TenantRepository
	users     domain.UserRepository
	qa        domain.QARepository
	knowledge domain.KnowledgeRepository
	misses    domain.MissLogRepository
	audit     domain.AuditRepository
}

func (m *mockDataStore) Tenants() domain.TenantRepository      { return m.tenants }
func (m *mockDataStore) Users() domain.UserRepository          { return m.users }
func (m *mockDataStore) QA() domain.QARepository               { return m.qa }
func (m *mockDataStore) Knowledge() domain.KnowledgeRepository { return m.knowledge }
func (m *mockDataStore) MissLog() domain.MissLogRepository     { return m.misses }
func (m *mockDataStore) Audit() domain.AuditRepository         { return m.audit }

// ---------------------------------------------------------------------------
// Mock TenantRepository
// ---------------------------------------------------------------------------

type mockTenantRepo struct {
	createFunc  func(ctx context.Context, t *domain.Tenant) error
	getByIDFunc func(ctx context.Context, id string) (*domain.Tenant, error)
	updateFunc  func(ctx context.Context, t *domain.Tenant) error
	upsertFunc  func(ctx context.Context, t *domain.Tenant) error
	listFunc    func(ctx context.Context) ([]*domain.Tenant, error)
}

func (m *mockTenantRepo) Create(ctx context.Context, t *domain.Tenant) error {
	return m.createFunc(ctx, t)
}

func (m *mockTenantRepo) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTenantRepo) Update(ctx context.Context, t *domain.Tenant) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTenantRepo) Upsert(ctx context.Context, t *domain.Tenant) error {
	return m.upsertFunc(ctx, t)
}

func (m *mockTenantRepo) List(ctx context.Context) ([]*domain.Tenant, error) {
	return m.listFunc(ctx)
}

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc           func(ctx context.Context, u *domain.User) error
	getByIDFunc          func(ctx context.Context, tenantID string, id uuid.UUID) (*domain.User, error)
	getByEmailFunc       func(ctx context.Context, tenantID, email string) (*domain.User, error)
	updateFunc           func(ctx context.Context, u *domain.User) error
	listFunc             func(ctx context.Context, tenantID string, state *domain.ApprovalState) ([]*domain.User, error)
	setApprovalStateFunc func(ctx context.Context, tenantID string, id uuid.UUID, state domain.ApprovalState) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, tenantID, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, tenantID, email)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.updateFunc(ctx, u)
}

func (m *mockUserRepo) List(ctx context.Context, tenantID string, state *domain.ApprovalState) ([]*domain.User, error) {
	return m.listFunc(ctx, tenantID, state)
}

func (m *mockUserRepo) SetApprovalState(ctx context.Context, tenantID string, id uuid.UUID, state domain.ApprovalState) error {
	return m.setApprovalStateFunc(ctx, tenantID, id, state)
}

// ---------------------------------------------------------------------------
// Mock QARepository
// ---------------------------------------------------------------------------

type mockQARepo struct {
	listEntriesFunc func(ctx context.Context, tenantID string, source *domain.SourceType) ([]*domain.QAEntry, error)
	upsertEntryFunc func(ctx context.Context, e *domain.QAEntry) error
	deleteFunc      func(ctx context.Context, tenantID string, id uuid.UUID) error
}

func (m *mockQARepo) ListEntries(ctx context.Context, tenantID string, source *domain.SourceType) ([]*domain.QAEntry, error) {
	return m.listEntriesFunc(ctx, tenantID, source)
}

func (m *mockQARepo) UpsertEntry(ctx context.Context, e *domain.QAEntry) error {
	return m.upsertEntryFunc(ctx, e)
}

func (m *mockQARepo) Delete(ctx context.Context, tenantID string, id uuid.UUID) error {
	return m.deleteFunc(ctx, tenantID, id)
}

// ---------------------------------------------------------------------------
// Mock KnowledgeRepository, MissLogRepository
// ---------------------------------------------------------------------------

type mockKnowledgeRepo struct {
	getFunc func(ctx context.Context, tenantID string) (*domain.StructuredKnowledge, error)
	putFunc func(ctx context.Context, k *domain.StructuredKnowledge) error
}

func (m *mockKnowledgeRepo) Get(ctx context.Context, tenantID string) (*domain.StructuredKnowledge, error) {
	return m.getFunc(ctx, tenantID)
}

func (m *mockKnowledgeRepo) Put(ctx context.Context, k *domain.StructuredKnowledge) error {
	return m.putFunc(ctx, k)
}

type mockMissLogRepo struct {
	appendFunc func(ctx context.Context, e *domain.MissLogEntry) error
	listFunc   func(ctx context.Context, tenantID string, limit int) ([]*domain.MissLogEntry, error)
}

func (m *mockMissLogRepo) Append(ctx context.Context, e *domain.MissLogEntry) error {
	return m.appendFunc(ctx, e)
}

func (m *mockMissLogRepo) List(ctx context.Context, tenantID string, limit int) ([]*domain.MissLogEntry, error) {
	return m.listFunc(ctx, tenantID, limit)
}

// ---------------------------------------------------------------------------
// Mock AuditRepository
// ---------------------------------------------------------------------------

// auditRecorder is an in-memory AuditRepository that keeps every entry.
type auditRecorder struct {
	mu        sync.Mutex
	entries   []*domain.AuditEntry
	recordErr error
	listFunc  func(ctx context.Context, tenantID string, limit, offset int) ([]*domain.AuditEntry, error)
}

func (a *auditRecorder) Record(_ context.Context, entry *domain.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.recordErr != nil {
		return a.recordErr
	}
	a.entries = append(a.entries, entry)
	return nil
}

func (a *auditRecorder) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*domain.AuditEntry, error) {
	return a.listFunc(ctx, tenantID, limit, offset)
}

func (a *auditRecorder) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerStudentFunc    func(ctx context.Context, tenantID, email, password, name string) (*domain.User, error)
	loginFunc              func(ctx context.Context, tenantID, email, password string) (string, string, error)
	adminLoginFunc         func(ctx context.Context, tenantID, credential string) (string, string, error)
	superAdminLoginFunc    func(email, password string) (string, string, error)
	refreshTokenFunc       func(ctx context.Context, refreshToken string) (string, error)
	approveUserFunc        func(ctx context.Context, tenantID string, userID uuid.UUID) (*domain.User, error)
	setAdminCredentialFunc func(ctx context.Context, tenantID, credential string) error
}

func (m *mockAuthService) RegisterStudent(ctx context.Context, tenantID, email, password, name string) (*domain.User, error) {
	return m.registerStudentFunc(ctx, tenantID, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, tenantID, email, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, tenantID, email, password)
}

func (m *mockAuthService) AdminLogin(ctx context.Context, tenantID, credential string) (accessToken, refreshToken string, err error) {
	return m.adminLoginFunc(ctx, tenantID, credential)
}

func (m *mockAuthService) SuperAdminLogin(email, password string) (accessToken, refreshToken string, err error) {
	return m.superAdminLoginFunc(email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

func (m *mockAuthService) ApproveUser(ctx context.Context, tenantID string, userID uuid.UUID) (*domain.User, error) {
	return m.approveUserFunc(ctx, tenantID, userID)
}

func (m *mockAuthService) SetAdminCredential(ctx context.Context, tenantID, credential string) error {
	return m.setAdminCredentialFunc(ctx, tenantID, credential)
}

// ---------------------------------------------------------------------------
// Mock Resolver, Notifier, DocumentIngester
// ---------------------------------------------------------------------------

type mockResolver struct {
	resolveFunc func(ctx context.Context, rawQuery, tenantID string) string
}

func (m *mockResolver) Resolve(ctx context.Context, rawQuery, tenantID string) string {
	return m.resolveFunc(ctx, rawQuery, tenantID)
}

type mockNotifier struct {
	mu         sync.Mutex
	registered []*domain.User
	approved   []*domain.User
	err        error
}

func (m *mockNotifier) StudentRegistered(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered = append(m.registered, user)
	return m.err
}

func (m *mockNotifier) StudentApproved(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approved = append(m.approved, user)
	return m.err
}

type mockIngester struct {
	ingestFunc func(ctx context.Context, tenantID, title, text string) (*docs.Result, error)
}

func (m *mockIngester) Ingest(ctx context.Context, tenantID, title, text string) (*docs.Result, error) {
	return m.ingestFunc(ctx, tenantID, title, text)
}
