package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"congregate/internal/caching"
	"congregate/internal/models"
	"congregate/internal/repositories"
)

const planCacheTTL = 5 * time.Minute

type PlanService interface {
	Create(ctx context.Context, req *CreatePlanRequest) (*models.ServicePlan, error)
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.ServicePlan, error)
	Update(ctx context.Context, req *UpdatePlanRequest) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	ListByOrganization(ctx context.Context, orgID uuid.UUID, from, to time.Time, limit, offset int) ([]*models.ServicePlan, error)
	SetItems(ctx context.Context, orgID, planID uuid.UUID, items []*models.PlanItem) error
	GetItems(ctx context.Context, orgID, planID uuid.UUID) ([]*models.PlanItem, error)
}

type planService struct {
	planRepo repositories.ServicePlanRepository
	songRepo repositories.SongRepository
	cacheSvc caching.CacheService
}

func NewPlanService(planRepo repositories.ServicePlanRepository, songRepo repositories.SongRepository, cacheSvc caching.CacheService) PlanService {
	return &planService{planRepo: planRepo, songRepo: songRepo, cacheSvc: cacheSvc}
}

type CreatePlanRequest struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Title          string    `json:"title" validate:"required"`
	ServiceDate    time.Time `json:"service_date" validate:"required"`
	Notes          *string   `json:"notes"`
	CreatedBy      uuid.UUID `json:"-"`
}

type UpdatePlanRequest struct {
	OrganizationID uuid.UUID
	ID             uuid.UUID
	Title          string    `json:"title" validate:"required"`
	ServiceDate    time.Time `json:"service_date" validate:"required"`
	Notes          *string   `json:"notes"`
	Status         string    `json:"status" validate:"required"`
}

func validPlanStatus(status string) bool {
	switch status {
	case models.PlanDraft, models.PlanPublished, models.PlanArchived:
		return true
	}
	return false
}

func (s *planService) Create(ctx context.Context, req *CreatePlanRequest) (*models.ServicePlan, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errors.New("title is required")
	}
	if req.ServiceDate.IsZero() {
		return nil, errors.New("service date is required")
	}
	if req.ServiceDate.Before(time.Now().AddDate(-1, 0, 0)) {
		return nil, errors.New("service date cannot be more than a year in the past")
	}

	plan := &models.ServicePlan{
		ID:             uuid.New(),
		OrganizationID: req.OrganizationID,
		Title:          strings.TrimSpace(req.Title),
		ServiceDate:    req.ServiceDate,
		Notes:          req.Notes,
		Status:         models.PlanDraft,
		CreatedBy:      req.CreatedBy,
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.ServicePlan, error) {
	if cached, err := s.cacheSvc.GetPlan(ctx, orgID, id); err == nil && cached != nil {
		return cached, nil
	}

	plan, err := s.planRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if err := s.cacheSvc.SetPlan(ctx, orgID, plan, planCacheTTL); err != nil {
		log.Printf("Failed to cache plan %s: %v", plan.ID.String(), err)
	}
	return plan, nil
}

func (s *planService) Update(ctx context.Context, req *UpdatePlanRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title is required")
	}
	if !validPlanStatus(req.Status) {
		return errors.New("status must be one of: draft, published, archived")
	}

	existing, err := s.planRepo.GetByID(ctx, req.OrganizationID, req.ID)
	if err != nil {
		return err
	}

	existing.Title = strings.TrimSpace(req.Title)
	existing.ServiceDate = req.ServiceDate
	existing.Notes = req.Notes
	existing.Status = req.Status

	if err := s.planRepo.Update(ctx, existing); err != nil {
		return err
	}

	if err := s.cacheSvc.DeletePlan(ctx, req.OrganizationID, req.ID); err != nil {
		log.Printf("Failed to invalidate plan cache %s: %v", req.ID.String(), err)
	}
	return nil
}

func (s *planService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if err := s.planRepo.Delete(ctx, orgID, id); err != nil {
		return err
	}
	if err := s.cacheSvc.DeletePlan(ctx, orgID, id); err != nil {
		log.Printf("Failed to invalidate plan cache %s: %v", id.String(), err)
	}
	return nil
}

func (s *planService) ListByOrganization(ctx context.Context, orgID uuid.UUID, from, to time.Time, limit, offset int) ([]*models.ServicePlan, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if from.IsZero() {
		from = time.Now().AddDate(0, -1, 0)
	}
	if to.IsZero() {
		to = time.Now().AddDate(0, 3, 0)
	}
	if to.Before(from) {
		return nil, errors.New("end date cannot be before start date")
	}
	return s.planRepo.ListByOrganization(ctx, orgID, from, to, limit, offset)
}

func (s *planService) SetItems(ctx context.Context, orgID, planID uuid.UUID, items []*models.PlanItem) error {
	// The plan must exist and belong to the organization.
	if _, err := s.planRepo.GetByID(ctx, orgID, planID); err != nil {
		return err
	}

	for i, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.PlanID = planID
		item.Position = i
		switch item.Kind {
		case "song":
			if item.SongID == nil {
				return errors.New("song items require a song_id")
			}
			song, err := s.songRepo.GetByID(ctx, orgID, *item.SongID)
			if err != nil {
				return errors.New("song items must reference a song in the organization's library")
			}
			if item.Title == "" {
				item.Title = song.Title
			}
		case "reading", "element":
			if strings.TrimSpace(item.Title) == "" {
				return errors.New("reading and element items require a title")
			}
		default:
			return errors.New("item kind must be one of: song, reading, element")
		}
	}

	if err := s.planRepo.ReplaceItems(ctx, planID, items); err != nil {
		return err
	}

	if err := s.cacheSvc.DeletePlan(ctx, orgID, planID); err != nil {
		log.Printf("Failed to invalidate plan cache %s: %v", planID.String(), err)
	}
	return nil
}

func (s *planService) GetItems(ctx context.Context, orgID, planID uuid.UUID) ([]*models.PlanItem, error) {
	if _, err := s.planRepo.GetByID(ctx, orgID, planID); err != nil {
		return nil, err
	}
	return s.planRepo.ListItems(ctx, planID)
}
