package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gosuda/campusbot/internal/auth"
	"github.com/gosuda/campusbot/internal/domain"
)

// Auth authenticates the bearer access token and stores tenant, user, and
// role in the request context.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := extractBearer(r); tok != "" {
				ctx, ok := authenticateJWT(r.Context(), tok, jwtSecret)
				if ok {
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
		})
	}
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return header[7:]
	}
	// Browsers cannot set headers on WebSocket upgrades.
	if r.Header.Get("Upgrade") != "" {
		return r.URL.Query().Get("token")
	}
	return ""
}

func authenticateJWT(ctx context.Context, tokenStr, secret string) (context.Context, bool) {
	claims, err := auth.ValidateAccessToken(secret, tokenStr)
	if err != nil {
		return ctx, false
	}

	role := domain.Role(claims.Role)
	switch role {
	case domain.RoleStudent:
		if claims.TenantID == "" || claims.UserID == "" {
			return ctx, false
		}
	case domain.RoleAdmin:
		if claims.TenantID == "" {
			return ctx, false
		}
	case domain.RoleSuperAdmin:
		if claims.TenantID != "" {
			return ctx, false
		}
	default:
		return ctx, false
	}

	if claims.UserID != "" {
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return ctx, false
		}
		ctx = context.WithValue(ctx, ContextKeyUserID, userID)
	}
	if claims.TenantID != "" {
		ctx = context.WithValue(ctx, ContextKeyTenantID, claims.TenantID)
	}
	ctx = context.WithValue(ctx, ContextKeyUserRole, role)
	return ctx, true
}
