package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/campusbot/internal/auth"
	"github.com/gosuda/campusbot/internal/domain"
)

// UserBody is the public view of a user; the password hash is never exposed.
type UserBody struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	ApprovalState string    `json:"approval_state"`
	CreatedAt     time.Time `json:"created_at"`
}

func userBody(u *domain.User) UserBody {
	return UserBody{
		ID:            u.ID.String(),
		TenantID:      u.TenantID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		ApprovalState: string(u.ApprovalState),
		CreatedAt:     u.CreatedAt,
	}
}

type RegisterInput struct {
	Body struct {
		TenantID string `json:"tenant_id" minLength:"2" maxLength:"63" doc:"Tenant ID"`
		Email    string `json:"email" format:"email" maxLength:"255" doc:"Student email"`
		Password string `json:"password" minLength:"8" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
		Name     string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
	}
}

type RegisterOutput struct {
	Body struct {
		User    UserBody `json:"user"`
		Message string   `json:"message"`
	}
}

type LoginInput struct {
	Body struct {
		TenantID string `json:"tenant_id" minLength:"2" maxLength:"63" doc:"Tenant ID"`
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"Student email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type AdminLoginInput struct {
	Body struct {
		TenantID   string `json:"tenant_id" minLength:"2" maxLength:"63" doc:"Tenant ID"`
		Credential string `json:"credential" minLength:"1" maxLength:"128" doc:"Tenant admin credential"`
	}
}

type SuperAdminLoginInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"Operator email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type TokenPairOutput struct {
	Body struct {
		AccessToken  string `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
	}
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type RefreshOutput struct {
	Body struct {
		AccessToken string `json:"access_token"` //nolint:gosec // G117: auth response DTO
	}
}

func tokenPair(access, refresh string) *TokenPairOutput {
	out := &TokenPairOutput{}
	out.Body.AccessToken = access
	out.Body.RefreshToken = refresh
	return out
}

// loginError maps auth failures to HTTP problems.
func loginError(err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return huma.Error401Unauthorized("invalid credentials")
	case errors.Is(err, auth.ErrApprovalPending):
		return huma.Error403Forbidden("account is awaiting admin approval")
	case errors.Is(err, auth.ErrTenantUnavailable):
		return huma.Error404NotFound("tenant not found")
	default:
		return huma.Error500InternalServerError("login failed", err)
	}
}

func RegisterAuthRoutes(api huma.API, authSvc AuthService, notifier Notifier) {
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Register a student account",
		Description:   "The account stays pending until a tenant admin approves it.",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
		user, err := authSvc.RegisterStudent(ctx, input.Body.TenantID, input.Body.Email, input.Body.Password, input.Body.Name)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTenantUnavailable):
				return nil, huma.Error404NotFound("tenant not found")
			case errors.Is(err, auth.ErrUserAlreadyExists):
				return nil, huma.Error409Conflict("user already exists")
			case errors.Is(err, auth.ErrWeakSecret):
				return nil, huma.Error422UnprocessableEntity("password is too short")
			}
			return nil, huma.Error500InternalServerError("failed to register user", err)
		}

		if notifier != nil {
			if notifyErr := notifier.StudentRegistered(ctx, user); notifyErr != nil {
				log.Warn().Err(notifyErr).Str("tenant_id", user.TenantID).Msg("api: notify registration")
			}
		}

		out := &RegisterOutput{}
		out.Body.User = userBody(user)
		out.Body.Message = "Registration received. You can sign in once an admin approves your account."
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Student login with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*TokenPairOutput, error) {
		access, refresh, err := authSvc.Login(ctx, input.Body.TenantID, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, loginError(err)
		}
		return tokenPair(access, refresh), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-login",
		Method:      http.MethodPost,
		Path:        "/auth/admin/login",
		Summary:     "Tenant admin login with the shared admin credential",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *AdminLoginInput) (*TokenPairOutput, error) {
		access, refresh, err := authSvc.AdminLogin(ctx, input.Body.TenantID, input.Body.Credential)
		if err != nil {
			return nil, loginError(err)
		}
		return tokenPair(access, refresh), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "superadmin-login",
		Method:      http.MethodPost,
		Path:        "/auth/superadmin/login",
		Summary:     "Operator login",
		Tags:        []string{"Auth"},
	}, func(_ context.Context, input *SuperAdminLoginInput) (*TokenPairOutput, error) {
		access, refresh, err := authSvc.SuperAdminLogin(input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, loginError(err)
		}
		return tokenPair(access, refresh), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Refresh access token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
		accessToken, err := authSvc.RefreshToken(ctx, input.Body.RefreshToken)
		if err != nil {
			return nil, huma.Error401Unauthorized("invalid or expired refresh token")
		}

		out := &RefreshOutput{}
		out.Body.AccessToken = accessToken
		return out, nil
	})
}
