package v1

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/campusbot/internal/domain"
	"github.com/gosuda/campusbot/internal/server/middleware"
)

// adminTenant returns the tenant an admin token is scoped to. Every tenant
// admin operation reads its tenant from here, never from the request.
func adminTenant(ctx context.Context) (string, error) {
	role, ok := middleware.RoleFromContext(ctx)
	if !ok || role != domain.RoleAdmin {
		return "", huma.Error403Forbidden("admin role required")
	}
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		return "", huma.Error403Forbidden("valid tenant required")
	}
	return tenantID, nil
}

func requireSuperAdmin(ctx context.Context) error {
	role, ok := middleware.RoleFromContext(ctx)
	if !ok || role != domain.RoleSuperAdmin {
		return huma.Error403Forbidden("superadmin role required")
	}
	return nil
}

// recordAudit appends an audit entry. Failures are logged, not surfaced.
func recordAudit(ctx context.Context, store DataStore, tenantID, action string, details map[string]any) {
	actorType, actorID := middleware.ActorFromContext(ctx)
	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		TenantID:  tenantID,
		ActorType: actorType,
		ActorID:   actorID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}
	if err := store.Audit().Record(ctx, entry); err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Str("action", action).Msg("api: record audit entry")
	}
}
