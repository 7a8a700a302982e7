package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/campusbot/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserAlreadyExists  = errors.New("auth: user already exists")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrApprovalPending    = errors.New("auth: account is awaiting admin approval")
	ErrTenantUnavailable  = errors.New("auth: tenant not found or suspended")
	ErrWeakSecret         = errors.New("auth: password or credential is too short")
)

// MinSecretLength is the shortest accepted password or admin credential.
const MinSecretLength = 8

// SuperAdmin identifies the operator who manages tenants. An empty Email
// disables superadmin login.
type SuperAdmin struct {
	Email        string
	PasswordHash string
}

// Service provides authentication and authorization operations.
type Service struct {
	tenants    domain.TenantRepository
	users      domain.UserRepository
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
	superAdmin SuperAdmin
}

// NewService creates a new auth service.
func NewService(tenants domain.TenantRepository, users domain.UserRepository, jwtSecret string, accessTTL, refreshTTL time.Duration, superAdmin SuperAdmin) *Service {
	return &Service{
		tenants:    tenants,
		users:      users,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		superAdmin: superAdmin,
	}
}

// RegisterStudent creates a student account awaiting admin approval.
// The password is hashed with argon2id before storage.
func (s *Service) RegisterStudent(ctx context.Context, tenantID, email, password, name string) (*domain.User, error) {
	if _, err := s.activeTenant(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("auth.RegisterStudent: %w", err)
	}
	if len(password) < MinSecretLength {
		return nil, fmt.Errorf("auth.RegisterStudent: %w", ErrWeakSecret)
	}

	email = normalizeEmail(email)
	existing, err := s.users.GetByEmail(ctx, tenantID, email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("auth.RegisterStudent: %w", ErrUserAlreadyExists)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("auth.RegisterStudent: %w", err)
	}

	hash, err := HashSecret(password)
	if err != nil {
		return nil, fmt.Errorf("auth.RegisterStudent: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:            uuid.New(),
		TenantID:      tenantID,
		Email:         email,
		PasswordHash:  hash,
		Name:          strings.TrimSpace(name),
		Role:          domain.RoleStudent,
		ApprovalState: domain.ApprovalPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("auth.RegisterStudent: %w", ErrUserAlreadyExists)
		}
		return nil, fmt.Errorf("auth.RegisterStudent: %w", err)
	}

	return user, nil
}

// Login validates email/password and returns access + refresh JWT tokens.
// Pending accounts are rejected with ErrApprovalPending after the password
// check, so the state of an account is never revealed to a wrong password.
func (s *Service) Login(ctx context.Context, tenantID, email, password string) (accessToken, refreshToken string, err error) {
	if _, err := s.activeTenant(ctx, tenantID); err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}

	user, err := s.users.GetByEmail(ctx, tenantID, normalizeEmail(email))
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if !VerifySecret(password, user.PasswordHash) {
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if !user.Approved() {
		return "", "", fmt.Errorf("auth.Login: %w", ErrApprovalPending)
	}

	return s.issuePair("auth.Login", user.TenantID, user.ID.String(), user.Role)
}

// AdminLogin verifies the tenant's shared admin credential and returns
// tokens scoped to that tenant.
func (s *Service) AdminLogin(ctx context.Context, tenantID, credential string) (accessToken, refreshToken string, err error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", "", fmt.Errorf("auth.AdminLogin: %w", ErrInvalidCredentials)
		}
		return "", "", fmt.Errorf("auth.AdminLogin: %w", err)
	}

	if tenant.AdminCredentialHash == "" || !VerifySecret(credential, tenant.AdminCredentialHash) {
		return "", "", fmt.Errorf("auth.AdminLogin: %w", ErrInvalidCredentials)
	}

	if err := tenant.CheckActive(); err != nil {
		return "", "", fmt.Errorf("auth.AdminLogin: %w: %w", ErrTenantUnavailable, err)
	}

	return s.issuePair("auth.AdminLogin", tenant.ID, "", domain.RoleAdmin)
}

// SuperAdminLogin checks the configured operator account.
func (s *Service) SuperAdminLogin(email, password string) (accessToken, refreshToken string, err error) {
	if s.superAdmin.Email == "" || normalizeEmail(email) != normalizeEmail(s.superAdmin.Email) {
		return "", "", fmt.Errorf("auth.SuperAdminLogin: %w", ErrInvalidCredentials)
	}
	if !VerifySecret(password, s.superAdmin.PasswordHash) {
		return "", "", fmt.Errorf("auth.SuperAdminLogin: %w", ErrInvalidCredentials)
	}

	return s.issuePair("auth.SuperAdminLogin", "", "", domain.RoleSuperAdmin)
}

// RefreshToken validates a refresh token and issues a new access token.
// The principal is re-checked: students must still exist and be approved,
// admin tokens need an active tenant.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	if claims.TokenType != tokenTypeRefresh {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrInvalidToken)
	}

	switch domain.Role(claims.Role) {
	case domain.RoleSuperAdmin:
		if s.superAdmin.Email == "" {
			return "", fmt.Errorf("auth.RefreshToken: %w", ErrInvalidToken)
		}
		return s.issueAccess("auth.RefreshToken", "", "", domain.RoleSuperAdmin)

	case domain.RoleAdmin:
		if _, err := s.activeTenant(ctx, claims.TenantID); err != nil {
			return "", fmt.Errorf("auth.RefreshToken: %w", err)
		}
		return s.issueAccess("auth.RefreshToken", claims.TenantID, "", domain.RoleAdmin)

	case domain.RoleStudent:
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return "", fmt.Errorf("auth.RefreshToken: invalid user id: %w", ErrInvalidToken)
		}

		user, err := s.users.GetByID(ctx, claims.TenantID, userID)
		if err != nil {
			return "", fmt.Errorf("auth.RefreshToken: %w", ErrUserNotFound)
		}
		if !user.Approved() {
			return "", fmt.Errorf("auth.RefreshToken: %w", ErrApprovalPending)
		}
		return s.issueAccess("auth.RefreshToken", user.TenantID, user.ID.String(), user.Role)

	default:
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrInvalidToken)
	}
}

// ApproveUser marks a pending student as approved. Users of other tenants
// are reported as ErrUserNotFound.
func (s *Service) ApproveUser(ctx context.Context, tenantID string, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("auth.ApproveUser: %w", ErrUserNotFound)
		}
		return nil, fmt.Errorf("auth.ApproveUser: %w", err)
	}

	if user.Approved() {
		return user, nil
	}

	if err := s.users.SetApprovalState(ctx, tenantID, userID, domain.ApprovalApproved); err != nil {
		return nil, fmt.Errorf("auth.ApproveUser: %w", err)
	}

	user.ApprovalState = domain.ApprovalApproved
	user.UpdatedAt = time.Now()
	return user, nil
}

// SetAdminCredential replaces the tenant's shared admin credential.
func (s *Service) SetAdminCredential(ctx context.Context, tenantID, credential string) error {
	if len(credential) < MinSecretLength {
		return fmt.Errorf("auth.SetAdminCredential: %w", ErrWeakSecret)
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("auth.SetAdminCredential: %w", err)
	}

	hash, err := HashSecret(credential)
	if err != nil {
		return fmt.Errorf("auth.SetAdminCredential: %w", err)
	}

	tenant.AdminCredentialHash = hash
	tenant.UpdatedAt = time.Now()
	if err := s.tenants.Update(ctx, tenant); err != nil {
		return fmt.Errorf("auth.SetAdminCredential: %w", err)
	}

	return nil
}

// GetUser returns a user by ID (for middleware use).
func (s *Service) GetUser(ctx context.Context, tenantID string, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("auth.GetUser: %w", err)
	}

	return user, nil
}

func (s *Service) activeTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrTenantUnavailable
		}
		return nil, err
	}
	if err := tenant.CheckActive(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTenantUnavailable, err)
	}
	return tenant, nil
}

func (s *Service) issuePair(op, tenantID, userID string, role domain.Role) (accessToken, refreshToken string, err error) {
	accessToken, err = IssueAccessToken(s.jwtSecret, tenantID, userID, role, s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err = IssueRefreshToken(s.jwtSecret, tenantID, userID, role, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	return accessToken, refreshToken, nil
}

func (s *Service) issueAccess(op, tenantID, userID string, role domain.Role) (string, error) {
	token, err := IssueAccessToken(s.jwtSecret, tenantID, userID, role, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
