package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanDraft     = "draft"
	PlanPublished = "published"
	PlanArchived  = "archived"
)

// ServicePlan is the order of service for a single gathering.
type ServicePlan struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Title          string    `json:"title" db:"title"`
	ServiceDate    time.Time `json:"service_date" db:"service_date"`
	Notes          *string   `json:"notes,omitempty" db:"notes"`
	Status         string    `json:"status" db:"status"`
	CreatedBy      uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// PlanItem is one positioned entry in a plan. Song items reference the
// organization's song library; readings and elements carry free-form titles.
type PlanItem struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	PlanID   uuid.UUID  `json:"plan_id" db:"plan_id"`
	Position int        `json:"position" db:"position"`
	Kind     string     `json:"kind" db:"kind"`
	SongID   *uuid.UUID `json:"song_id,omitempty" db:"song_id"`
	Title    string     `json:"title" db:"title"`
	Notes    *string    `json:"notes,omitempty" db:"notes"`
}
