package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"congregate/internal/models"
)

type InviteRepository interface {
	Create(ctx context.Context, invite *models.OrganizationInvite) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizationInvite, error)
	GetByToken(ctx context.Context, token string) (*models.OrganizationInvite, error)
	ListPendingByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.OrganizationInvite, error)
	ListPendingByEmail(ctx context.Context, email string) ([]*models.OrganizationInvite, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, acceptedAt *time.Time) error
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type inviteRepo struct {
	db Database
}

func NewInviteRepo(db Database) InviteRepository {
	return &inviteRepo{db: db}
}

func (r *inviteRepo) Create(ctx context.Context, invite *models.OrganizationInvite) error {
	query := `
		INSERT INTO organization_invites (id, organization_id, email, role, invited_by, token, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		invite.ID, invite.OrganizationID, invite.Email, invite.Role,
		invite.InvitedBy, invite.Token, invite.Status, invite.ExpiresAt)
	return err
}

func (r *inviteRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizationInvite, error) {
	return r.getOne(ctx, `
		SELECT id, organization_id, email, role, invited_by, token, status, expires_at, accepted_at, created_at, updated_at
		FROM organization_invites
		WHERE id = $1
	`, id)
}

func (r *inviteRepo) GetByToken(ctx context.Context, token string) (*models.OrganizationInvite, error) {
	return r.getOne(ctx, `
		SELECT id, organization_id, email, role, invited_by, token, status, expires_at, accepted_at, created_at, updated_at
		FROM organization_invites
		WHERE token = $1
	`, token)
}

func (r *inviteRepo) getOne(ctx context.Context, query string, arg any) (*models.OrganizationInvite, error) {
	invite := &models.OrganizationInvite{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&invite.ID, &invite.OrganizationID, &invite.Email, &invite.Role,
		&invite.InvitedBy, &invite.Token, &invite.Status, &invite.ExpiresAt,
		&invite.AcceptedAt, &invite.CreatedAt, &invite.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return invite, nil
}

func (r *inviteRepo) ListPendingByOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.OrganizationInvite, error) {
	return r.list(ctx, `
		SELECT id, organization_id, email, role, invited_by, token, status, expires_at, accepted_at, created_at, updated_at
		FROM organization_invites
		WHERE organization_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`, orgID)
}

func (r *inviteRepo) ListPendingByEmail(ctx context.Context, email string) ([]*models.OrganizationInvite, error) {
	return r.list(ctx, `
		SELECT id, organization_id, email, role, invited_by, token, status, expires_at, accepted_at, created_at, updated_at
		FROM organization_invites
		WHERE email = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`, email)
}

func (r *inviteRepo) list(ctx context.Context, query string, arg any) ([]*models.OrganizationInvite, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []*models.OrganizationInvite
	for rows.Next() {
		invite := &models.OrganizationInvite{}
		if err := rows.Scan(
			&invite.ID, &invite.OrganizationID, &invite.Email, &invite.Role,
			&invite.InvitedBy, &invite.Token, &invite.Status, &invite.ExpiresAt,
			&invite.AcceptedAt, &invite.CreatedAt, &invite.UpdatedAt); err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	return invites, rows.Err()
}

func (r *inviteRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, acceptedAt *time.Time) error {
	query := `
		UPDATE organization_invites
		SET status = $1, accepted_at = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, status, acceptedAt, id)
	return err
}

func (r *inviteRepo) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE organization_invites
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'pending' AND expires_at < $1
	`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
