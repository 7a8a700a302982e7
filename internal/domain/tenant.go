package domain

import (
	"context"
	"regexp"
	"time"
)

type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// SettingSlackChannel is the tenant setting naming the Slack channel that
// receives forwarded-question alerts.
const SettingSlackChannel = "slack_channel"

var tenantIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`) //nolint:gochecknoglobals // compiled regexp

// ValidTenantID reports whether id is an acceptable tenant slug.
func ValidTenantID(id string) bool {
	return tenantIDPattern.MatchString(id)
}

// Tenant is one college. ID is the public, stable slug used in URLs and tokens.
type Tenant struct {
	ID                  string
	DisplayName         string
	AdminCredentialHash string // argon2id
	ContactEmail        string // optional
	Status              TenantStatus
	Settings            map[string]any
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Active reports whether the tenant accepts logins and registrations.
func (t *Tenant) Active() bool {
	return t.Status == TenantStatusActive
}

// CheckActive returns ErrTenantSuspended unless the tenant is active.
func (t *Tenant) CheckActive() error {
	if !t.Active() {
		return ErrTenantSuspended
	}
	return nil
}

// Setting returns a string setting and whether it was present and non-empty.
func (t *Tenant) Setting(key string) (string, bool) {
	v, ok := t.Settings[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

type TenantRepository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	Upsert(ctx context.Context, t *Tenant) error
	List(ctx context.Context) ([]*Tenant, error)
}
