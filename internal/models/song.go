package models

import (
	"time"

	"github.com/google/uuid"
)

// Song is an entry in an organization's song library. AttachmentKey points
// at a chord chart or arrangement stored in object storage.
type Song struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Title          string    `json:"title" db:"title"`
	Author         *string   `json:"author,omitempty" db:"author"`
	CCLINumber     *string   `json:"ccli_number,omitempty" db:"ccli_number"`
	DefaultKey     *string   `json:"default_key,omitempty" db:"default_key"`
	Tempo          *int      `json:"tempo,omitempty" db:"tempo"`
	AttachmentKey  *string   `json:"attachment_key,omitempty" db:"attachment_key"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
