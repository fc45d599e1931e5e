package services

import (
	"context"
	"log"

	"congregate/internal/models"
)

// NotificationService delivers invitation emails. The current transport is
// inert: it logs the payload and reports success without sending mail, which
// is why every caller treats delivery as best-effort.
type NotificationService interface {
	SendInvitation(ctx context.Context, invite *models.OrganizationInvite, orgName string) error
}

type logNotificationService struct{}

func NewLogNotificationService() NotificationService {
	return &logNotificationService{}
}

func (s *logNotificationService) SendInvitation(_ context.Context, invite *models.OrganizationInvite, orgName string) error {
	log.Printf("Invitation email queued: to=%s org=%s invite=%s expires=%s",
		invite.Email, orgName, invite.ID.String(), invite.ExpiresAt.Format("2006-01-02"))
	return nil
}
