package models

import (
	"time"

	"github.com/google/uuid"
)

// UserMetadata is the mutable metadata bag the identity provider attaches to
// a user. Invitation fields are written at invite-creation time and read once
// during onboarding; the onboarding flow itself never writes them.
type UserMetadata struct {
	InviteID         *string `json:"invite_id,omitempty"`
	OrganizationID   *string `json:"organization_id,omitempty"`
	OrganizationName *string `json:"organization_name,omitempty"`
	InvitedBy        *string `json:"invited_by,omitempty"`
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
}

// AuthUser is the identity-provider record for an authenticated user.
type AuthUser struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	Email        string       `json:"email" db:"email"`
	PasswordHash string       `json:"-" db:"password_hash"` // Never serialize in JSON
	Metadata     UserMetadata `json:"metadata" db:"metadata"`
	Status       string       `json:"status" db:"status"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// Invited reports whether the metadata carries a complete invitation
// candidate. A partial pair (one field without the other) is treated as not
// invited and falls through to organization setup.
func (m UserMetadata) Invited() bool {
	return m.InviteID != nil && *m.InviteID != "" &&
		m.OrganizationID != nil && *m.OrganizationID != ""
}
