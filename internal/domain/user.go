package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
	// RoleSuperAdmin is only ever carried by tokens; no User row has it.
	RoleSuperAdmin Role = "superadmin"
)

type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
)

// Valid reports whether s is a known approval state.
func (s ApprovalState) Valid() bool {
	return s == ApprovalPending || s == ApprovalApproved
}

type User struct {
	ID            uuid.UUID
	TenantID      string
	Email         string // unique per tenant
	PasswordHash  string // argon2id
	Name          string
	Role          Role
	ApprovalState ApprovalState
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Approved reports whether the user may be issued session tokens.
func (u *User) Approved() bool {
	return u.ApprovalState == ApprovalApproved
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context, tenantID string, state *ApprovalState) ([]*User, error)
	SetApprovalState(ctx context.Context, tenantID string, id uuid.UUID, state ApprovalState) error
}
