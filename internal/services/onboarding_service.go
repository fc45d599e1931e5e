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

	"congregate/internal/identity"
	"congregate/internal/models"
	"congregate/internal/repositories"
)

// Decision is the outcome of reconciling an authenticated user against the
// onboarding state machine. The HTTP layer maps decisions to navigation;
// this service performs no redirects itself.
type Decision string

const (
	DecisionProfileRequired   Decision = "PROFILE_REQUIRED"
	DecisionProcessing        Decision = "PROCESSING"
	DecisionOrgSetupRequired  Decision = "ORG_SETUP_REQUIRED"
	DecisionDashboardRedirect Decision = "DASHBOARD_REDIRECT"
	DecisionComplete          Decision = "COMPLETE"
)

// Stable error codes surfaced to callers. Fatal-to-step failures halt
// reconciliation and expect an externally triggered retry; validation codes
// are reported before any write.
const (
	CodeProfileLookupFailed    = "PROFILE_LOOKUP_FAILED"
	CodeMembershipLookupFailed = "MEMBERSHIP_LOOKUP_FAILED"
	CodeMembershipCreateFailed = "MEMBERSHIP_CREATE_FAILED"
	CodeMetadataUpdateFailed   = "METADATA_UPDATE_FAILED"
	CodeProfileCreateFailed    = "PROFILE_CREATE_FAILED"
	CodePasswordMismatch       = "PASSWORD_MISMATCH"
	CodePasswordTooShort       = "PASSWORD_TOO_SHORT"
	CodeNameRequired           = "NAME_REQUIRED"
)

// OnboardingError carries a stable code alongside a human-readable message.
type OnboardingError struct {
	Code    string
	Message string
	Err     error
}

func (e *OnboardingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *OnboardingError) Unwrap() error {
	return e.Err
}

func onboardingError(code, message string, err error) *OnboardingError {
	return &OnboardingError{Code: code, Message: message, Err: err}
}

// AcceptResult reports the outcome of an invitation acceptance.
type AcceptResult struct {
	Decision      Decision `json:"decision"`
	AlreadyMember bool     `json:"already_member"`
}

// CompleteProfileRequest carries the data collected on the profile step.
type CompleteProfileRequest struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// OnboardingService decides, for an authenticated session, whether the user
// must supply profile data, must be attached to an organization via a
// pending invitation, must create a new organization, or is already fully
// onboarded. It performs the minimal writes to reach a terminal state and
// never retries internally: existence checks before every insert make
// externally triggered retries (page reload, duplicate tab) safe.
type OnboardingService interface {
	Reconcile(ctx context.Context, session identity.Session) (Decision, error)
	AcceptInvitation(ctx context.Context, session identity.Session) (*AcceptResult, error)
	CompleteProfile(ctx context.Context, session identity.Session, req *CompleteProfileRequest) (Decision, error)
}

type onboardingService struct {
	provider       identity.Provider
	profileRepo    repositories.ProfileRepository
	membershipRepo repositories.MembershipRepository
	inviteRepo     repositories.InviteRepository
}

func NewOnboardingService(
	provider identity.Provider,
	profileRepo repositories.ProfileRepository,
	membershipRepo repositories.MembershipRepository,
	inviteRepo repositories.InviteRepository,
) OnboardingService {
	return &onboardingService{
		provider:       provider,
		profileRepo:    profileRepo,
		membershipRepo: membershipRepo,
		inviteRepo:     inviteRepo,
	}
}

// invitationCandidate is the parsed form of the metadata invitation fields.
type invitationCandidate struct {
	inviteID  uuid.UUID
	orgID     uuid.UUID
	invitedBy *uuid.UUID
}

// extractInvitation reads the invitation fields out of the session metadata.
// Only a complete invite_id + organization_id pair counts as invited; a
// partial pair falls through to organization setup unchanged.
func extractInvitation(metadata models.UserMetadata) *invitationCandidate {
	if !metadata.Invited() {
		return nil
	}

	inviteID, err := uuid.Parse(*metadata.InviteID)
	if err != nil {
		log.Printf("Ignoring invitation metadata with malformed invite_id %q: %v", *metadata.InviteID, err)
		return nil
	}
	orgID, err := uuid.Parse(*metadata.OrganizationID)
	if err != nil {
		log.Printf("Ignoring invitation metadata with malformed organization_id %q: %v", *metadata.OrganizationID, err)
		return nil
	}

	candidate := &invitationCandidate{inviteID: inviteID, orgID: orgID}
	if metadata.InvitedBy != nil {
		if invitedBy, err := uuid.Parse(*metadata.InvitedBy); err == nil {
			candidate.invitedBy = &invitedBy
		}
	}
	return candidate
}

func (s *onboardingService) Reconcile(ctx context.Context, session identity.Session) (Decision, error) {
	_, err := s.profileRepo.GetByUserID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Not an error: the user simply has not completed the
			// profile step yet.
			return DecisionProfileRequired, nil
		}
		return DecisionProcessing, onboardingError(CodeProfileLookupFailed, "failed to look up profile", err)
	}

	return s.resolveMembership(ctx, session)
}

// resolveMembership runs the membership check and the branch that follows
// it. CompleteProfile re-enters here so a freshly profiled user reaches a
// terminal state in the same call.
func (s *onboardingService) resolveMembership(ctx context.Context, session identity.Session) (Decision, error) {
	memberships, err := s.membershipRepo.ListActiveByUser(ctx, session.UserID)
	if err != nil {
		return DecisionProcessing, onboardingError(CodeMembershipLookupFailed, "failed to look up memberships", err)
	}

	// A user who already joined is never re-processed, even when
	// invitation metadata is still present.
	if len(memberships) > 0 {
		return DecisionDashboardRedirect, nil
	}

	if extractInvitation(session.Metadata) != nil {
		result, err := s.AcceptInvitation(ctx, session)
		if err != nil {
			return DecisionProcessing, err
		}
		return result.Decision, nil
	}

	return DecisionOrgSetupRequired, nil
}

func (s *onboardingService) AcceptInvitation(ctx context.Context, session identity.Session) (*AcceptResult, error) {
	candidate := extractInvitation(session.Metadata)
	if candidate == nil {
		return nil, onboardingError(CodeMembershipCreateFailed, "session carries no complete invitation", nil)
	}

	existing, err := s.membershipRepo.Find(ctx, candidate.orgID, session.UserID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, onboardingError(CodeMembershipLookupFailed, "failed to check existing membership", err)
	}
	if existing != nil {
		// Already accepted, whatever the row's status. No duplicate insert.
		return &AcceptResult{Decision: DecisionComplete, AlreadyMember: true}, nil
	}

	invitedBy := candidate.invitedBy
	if invitedBy == nil {
		// Metadata omitted the inviter; record the user as self-invited.
		invitedBy = &session.UserID
	}

	now := time.Now()
	membership := &models.OrganizationMembership{
		ID:             uuid.New(),
		OrganizationID: candidate.orgID,
		UserID:         session.UserID,
		Role:           models.RoleMember,
		Status:         models.MembershipActive,
		InvitedBy:      invitedBy,
		AcceptedAt:     &now,
	}

	insertErr := s.membershipRepo.Create(ctx, membership)
	if errors.Is(insertErr, repositories.ErrDuplicateMembership) {
		// A concurrent reconciliation (duplicate tab) won the race; the
		// store's uniqueness constraint makes that equivalent to
		// "already a member".
		insertErr = nil
		membership = nil
	}

	// The membership row is the source of truth for access; the invite
	// record is an audit trail. Its update never changes the outcome.
	s.markInviteAccepted(ctx, candidate.inviteID, now)

	if insertErr != nil {
		return nil, onboardingError(CodeMembershipCreateFailed, "failed to create membership", insertErr)
	}

	return &AcceptResult{Decision: DecisionComplete, AlreadyMember: membership == nil}, nil
}

func (s *onboardingService) markInviteAccepted(ctx context.Context, inviteID uuid.UUID, acceptedAt time.Time) {
	if err := s.inviteRepo.UpdateStatus(ctx, inviteID, models.InviteAccepted, &acceptedAt); err != nil {
		log.Printf("Failed to mark invite %s accepted: %v", inviteID.String(), err)
	}
}

func (s *onboardingService) CompleteProfile(ctx context.Context, session identity.Session, req *CompleteProfileRequest) (Decision, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)

	// Validation happens before any write; the first failure wins.
	if req.Password != req.ConfirmPassword {
		return DecisionProfileRequired, onboardingError(CodePasswordMismatch, "passwords do not match", nil)
	}
	if len(req.Password) < 8 {
		return DecisionProfileRequired, onboardingError(CodePasswordTooShort, "password must be at least 8 characters", nil)
	}
	if firstName == "" || lastName == "" {
		return DecisionProfileRequired, onboardingError(CodeNameRequired, "first and last name are required", nil)
	}

	metadata := models.UserMetadata{
		FirstName: &firstName,
		LastName:  &lastName,
	}
	if err := s.provider.UpdateUserMetadata(ctx, session.UserID, metadata); err != nil {
		return DecisionProfileRequired, onboardingError(CodeMetadataUpdateFailed, "failed to update user metadata", err)
	}

	profile := &models.Profile{
		UserID:    session.UserID,
		Email:     session.Email,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return DecisionProfileRequired, onboardingError(CodeProfileCreateFailed, "failed to create profile", err)
	}

	// A user who already holds provider-level credentials must not be
	// blocked by a redundant password-set failure.
	if req.Password != "" {
		if err := s.provider.SetPassword(ctx, session.UserID, req.Password); err != nil {
			log.Printf("Failed to set password for user %s: %v", session.UserID.String(), err)
		}
	}

	// Re-enter from the membership check so the freshly profiled user
	// falls through to invitation acceptance or org setup in one call.
	return s.resolveMembership(ctx, session)
}
