package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/campusbot/internal/docs"
	"github.com/gosuda/campusbot/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Tenants() domain.TenantRepository
	Users() domain.UserRepository
	QA() domain.QARepository
	Knowledge() domain.KnowledgeRepository
	MissLog() domain.MissLogRepository
	Audit() domain.AuditRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	RegisterStudent(ctx context.Context, tenantID, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, tenantID, email, password string) (accessToken, refreshToken string, err error)
	AdminLogin(ctx context.Context, tenantID, credential string) (accessToken, refreshToken string, err error)
	SuperAdminLogin(email, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	ApproveUser(ctx context.Context, tenantID string, userID uuid.UUID) (*domain.User, error)
	SetAdminCredential(ctx context.Context, tenantID, credential string) error
}

// Resolver answers a chat message for a tenant. *resolver.Resolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, rawQuery, tenantID string) string
}

// Notifier fans out account events. *notify.Notifier satisfies it.
type Notifier interface {
	StudentRegistered(ctx context.Context, user *domain.User) error
	StudentApproved(ctx context.Context, user *domain.User) error
}

// DocumentIngester stores document fragments. *docs.Ingester satisfies it.
type DocumentIngester interface {
	Ingest(ctx context.Context, tenantID, title, text string) (*docs.Result, error)
}
