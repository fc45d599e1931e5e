package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/gommon/random"

	"congregate/internal/identity"
	"congregate/internal/models"
	"congregate/internal/repositories"
)

const inviteValidity = 14 * 24 * time.Hour

type InvitationService interface {
	// Create issues a pending invite for an email/organization pair. When an
	// identity record already exists for the email, the invitation fields are
	// attached to its metadata so the next onboarding pass picks them up.
	Create(ctx context.Context, session identity.Session, req *CreateInviteRequest) (*models.OrganizationInvite, error)
	ListPending(ctx context.Context, orgID uuid.UUID) ([]*models.OrganizationInvite, error)
	Revoke(ctx context.Context, inviteID uuid.UUID) error
	// AttachPendingInvite finds the newest pending invite for the email and
	// returns the metadata fields to store on a freshly signed-up user.
	AttachPendingInvite(ctx context.Context, email string) models.UserMetadata
}

type invitationService struct {
	inviteRepo   repositories.InviteRepository
	orgRepo      repositories.OrganizationRepository
	provider     identity.Provider
	notification NotificationService
}

func NewInvitationService(
	inviteRepo repositories.InviteRepository,
	orgRepo repositories.OrganizationRepository,
	provider identity.Provider,
	notification NotificationService,
) InvitationService {
	return &invitationService{
		inviteRepo:   inviteRepo,
		orgRepo:      orgRepo,
		provider:     provider,
		notification: notification,
	}
}

type CreateInviteRequest struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Email          string    `json:"email" validate:"required,email"`
	Role           string    `json:"role"`
}

func (s *invitationService) Create(ctx context.Context, session identity.Session, req *CreateInviteRequest) (*models.OrganizationInvite, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, errors.New("email is required")
	}
	if req.OrganizationID == uuid.Nil {
		return nil, errors.New("organization_id is required")
	}

	org, err := s.orgRepo.GetByID(ctx, req.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}

	invite := &models.OrganizationInvite{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Email:          email,
		Role:           role,
		InvitedBy:      session.UserID,
		Token:          random.String(40),
		Status:         models.InvitePending,
		ExpiresAt:      time.Now().Add(inviteValidity),
	}

	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, err
	}

	// Attach invitation metadata when the invitee already has an account;
	// otherwise signup picks the invite up by email.
	if user, err := s.provider.GetUserByEmail(ctx, email); err == nil {
		inviteID := invite.ID.String()
		orgID := org.ID.String()
		invitedBy := session.UserID.String()
		metadata := models.UserMetadata{
			InviteID:         &inviteID,
			OrganizationID:   &orgID,
			OrganizationName: &org.Name,
			InvitedBy:        &invitedBy,
		}
		if err := s.provider.UpdateUserMetadata(ctx, user.ID, metadata); err != nil {
			log.Printf("Failed to attach invite metadata to user %s: %v", user.ID.String(), err)
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("Failed to look up invitee %s: %v", email, err)
	}

	// Delivery is best-effort; the invite row is authoritative.
	if err := s.notification.SendInvitation(ctx, invite, org.Name); err != nil {
		log.Printf("Failed to send invitation %s: %v", invite.ID.String(), err)
	}

	return invite, nil
}

func (s *invitationService) ListPending(ctx context.Context, orgID uuid.UUID) ([]*models.OrganizationInvite, error) {
	return s.inviteRepo.ListPendingByOrganization(ctx, orgID)
}

func (s *invitationService) Revoke(ctx context.Context, inviteID uuid.UUID) error {
	invite, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.Status != models.InvitePending {
		return fmt.Errorf("invite is %s, only pending invites can be revoked", invite.Status)
	}
	return s.inviteRepo.UpdateStatus(ctx, inviteID, models.InviteRevoked, nil)
}

func (s *invitationService) AttachPendingInvite(ctx context.Context, email string) models.UserMetadata {
	email = strings.ToLower(strings.TrimSpace(email))

	invites, err := s.inviteRepo.ListPendingByEmail(ctx, email)
	if err != nil {
		log.Printf("Failed to look up pending invites for %s: %v", email, err)
		return models.UserMetadata{}
	}

	for _, invite := range invites {
		if time.Now().After(invite.ExpiresAt) {
			continue
		}
		inviteID := invite.ID.String()
		orgID := invite.OrganizationID.String()
		invitedBy := invite.InvitedBy.String()
		metadata := models.UserMetadata{
			InviteID:       &inviteID,
			OrganizationID: &orgID,
			InvitedBy:      &invitedBy,
		}
		if org, err := s.orgRepo.GetByID(ctx, invite.OrganizationID); err == nil {
			metadata.OrganizationName = &org.Name
		}
		return metadata
	}

	return models.UserMetadata{}
}
