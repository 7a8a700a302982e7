package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/campusbot/internal/auth"
	"github.com/gosuda/campusbot/internal/domain"
)

type ListUsersInput struct {
	State string `query:"state" enum:"pending,approved" doc:"Filter by approval state"`
}

type ListUsersOutput struct {
	Body []UserBody
}

type ApproveUserInput struct {
	ID string `path:"id" format:"uuid" doc:"User ID"`
}

type ApproveUserOutput struct {
	Body UserBody
}

func RegisterUserRoutes(api huma.API, store DataStore, authSvc AuthService, notifier Notifier) {
	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List the tenant's students",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
		tenantID, err := adminTenant(ctx)
		if err != nil {
			return nil, err
		}

		var state *domain.ApprovalState
		if input.State != "" {
			s := domain.ApprovalState(input.State)
			state = &s
		}

		users, err := store.Users().List(ctx, tenantID, state)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list users", err)
		}

		out := &ListUsersOutput{Body: make([]UserBody, 0, len(users))}
		for _, u := range users {
			out.Body = append(out.Body, userBody(u))
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "approve-user",
		Method:      http.MethodPost,
		Path:        "/users/{id}/approve",
		Summary:     "Approve a pending student",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *ApproveUserInput) (*ApproveUserOutput, error) {
		tenantID, err := adminTenant(ctx)
		if err != nil {
			return nil, err
		}

		userID, err := uuid.Parse(input.ID)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid user id")
		}

		user, err := authSvc.ApproveUser(ctx, tenantID, userID)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, huma.Error500InternalServerError("failed to approve user", err)
		}

		recordAudit(ctx, store, tenantID, "user.approve", map[string]any{"user_id": user.ID.String(), "email": user.Email})

		if notifier != nil {
			if notifyErr := notifier.StudentApproved(ctx, user); notifyErr != nil {
				log.Warn().Err(notifyErr).Str("tenant_id", tenantID).Msg("api: notify approval")
			}
		}

		return &ApproveUserOutput{Body: userBody(user)}, nil
	})
}
