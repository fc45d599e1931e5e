package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"congregate/internal/identity"
	"congregate/internal/models"
	"congregate/internal/repositories"
)

type OrganizationService interface {
	// Create creates a new organization and makes the creator its owner.
	// This is the org-setup path of onboarding.
	Create(ctx context.Context, session identity.Session, req *CreateOrganizationRequest) (*models.Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	Update(ctx context.Context, req *UpdateOrganizationRequest) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error)
	ListMembers(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.OrganizationMembership, error)
}

type organizationService struct {
	orgRepo        repositories.OrganizationRepository
	membershipRepo repositories.MembershipRepository
}

func NewOrganizationService(orgRepo repositories.OrganizationRepository, membershipRepo repositories.MembershipRepository) OrganizationService {
	return &organizationService{orgRepo: orgRepo, membershipRepo: membershipRepo}
}

type CreateOrganizationRequest struct {
	Name     string `json:"name" validate:"required"`
	Timezone string `json:"timezone"`
}

type UpdateOrganizationRequest struct {
	ID       uuid.UUID
	Name     string `json:"name" validate:"required"`
	Timezone string `json:"timezone"`
	Status   string `json:"status" validate:"required"`
}

func (s *organizationService) Create(ctx context.Context, session identity.Session, req *CreateOrganizationRequest) (*models.Organization, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("organization name is required")
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	org := &models.Organization{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(req.Name),
		Timezone: timezone,
		Status:   "active",
	}

	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, err
	}

	now := time.Now()
	owner := &models.OrganizationMembership{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		UserID:         session.UserID,
		Role:           models.RoleOwner,
		Status:         models.MembershipActive,
		AcceptedAt:     &now,
	}
	if err := s.membershipRepo.Create(ctx, owner); err != nil && !errors.Is(err, repositories.ErrDuplicateMembership) {
		// An organization without its owner is unreachable through
		// ListForUser; drop the orphan row so a retry starts clean.
		if delErr := s.orgRepo.Delete(ctx, org.ID); delErr != nil {
			log.Printf("Failed to remove orphaned organization %s: %v", org.ID.String(), delErr)
		}
		return nil, err
	}

	return org, nil
}

func (s *organizationService) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return s.orgRepo.GetByID(ctx, id)
}

func (s *organizationService) Update(ctx context.Context, req *UpdateOrganizationRequest) error {
	existing, err := s.orgRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	existing.Name = req.Name
	existing.Timezone = req.Timezone
	existing.Status = req.Status

	return s.orgRepo.Update(ctx, existing)
}

func (s *organizationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error) {
	return s.orgRepo.ListByUser(ctx, userID)
}

func (s *organizationService) ListMembers(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.OrganizationMembership, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.membershipRepo.ListByOrganization(ctx, orgID, limit, offset)
}
