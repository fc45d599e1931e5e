package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the application-side user record, keyed by the identity
// provider's user ID. Its existence marks the profile step of onboarding as
// done.
type Profile struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
