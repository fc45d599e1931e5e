package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MembershipActive   = "active"
	MembershipInactive = "inactive"

	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// OrganizationMembership links a user to an organization. The row's
// existence, not the invite record, is the source of truth for access.
// UNIQUE (organization_id, user_id) backs idempotent invitation acceptance.
type OrganizationMembership struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	Role           string     `json:"role" db:"role"`
	Status         string     `json:"status" db:"status"`
	InvitedBy      *uuid.UUID `json:"invited_by,omitempty" db:"invited_by"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}
