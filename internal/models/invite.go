package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteRevoked  = "revoked"
	InviteExpired  = "expired"
)

// OrganizationInvite is the audit record of an invitation. Acceptance is
// recorded best-effort: a stale pending invite with an existing membership
// row still means the user is a member.
type OrganizationInvite struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	Email          string     `json:"email" db:"email"`
	Role           string     `json:"role" db:"role"`
	InvitedBy      uuid.UUID  `json:"invited_by" db:"invited_by"`
	Token          string     `json:"-" db:"token"` // Never serialize in JSON
	Status         string     `json:"status" db:"status"`
	ExpiresAt      time.Time  `json:"expires_at" db:"expires_at"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}
