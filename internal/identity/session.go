package identity

import (
	"github.com/google/uuid"

	"congregate/internal/models"
)

// Session is an explicit authenticated-session handle. It is created on
// successful authentication and passed to services as a parameter; nothing
// reads the current user from ambient state.
type Session struct {
	UserID   uuid.UUID
	Email    string
	Metadata models.UserMetadata
}

// NewSession builds a session from an authenticated identity record.
func NewSession(user *models.AuthUser) Session {
	return Session{
		UserID:   user.ID,
		Email:    user.Email,
		Metadata: user.Metadata,
	}
}
