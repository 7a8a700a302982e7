package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/campusbot/internal/domain"
)

type contextKey string

const (
	ContextKeyTenantID contextKey = "tenant_id"
	ContextKeyUserID   contextKey = "user_id"
	ContextKeyUserRole contextKey = "role"
)

// TenantIDFromContext returns the tenant the caller's token is scoped to.
// Superadmin tokens carry none.
func TenantIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyTenantID).(string)
	return v, ok && v != ""
}

// UserIDFromContext returns the student user ID. Admin tokens carry none.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return v, ok
}

func RoleFromContext(ctx context.Context) (domain.Role, bool) {
	v, ok := ctx.Value(ContextKeyUserRole).(domain.Role)
	return v, ok
}

// ActorFromContext describes the caller for audit records.
func ActorFromContext(ctx context.Context) (actorType, actorID string) {
	role, _ := RoleFromContext(ctx)
	if uid, ok := UserIDFromContext(ctx); ok {
		return string(role), uid.String()
	}
	tid, _ := TenantIDFromContext(ctx)
	return string(role), tid
}
