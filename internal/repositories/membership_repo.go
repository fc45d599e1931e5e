package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"congregate/internal/models"
)

// ErrDuplicateMembership is returned when an insert hits the
// UNIQUE (organization_id, user_id) constraint. Callers treat it as
// "already a member".
var ErrDuplicateMembership = errors.New("membership already exists")

type MembershipRepository interface {
	Create(ctx context.Context, membership *models.OrganizationMembership) error
	// Find returns the membership for (orgID, userID) regardless of status.
	Find(ctx context.Context, orgID, userID uuid.UUID) (*models.OrganizationMembership, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*models.OrganizationMembership, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.OrganizationMembership, error)
	UpdateStatus(ctx context.Context, orgID, userID uuid.UUID, status string) error
	Delete(ctx context.Context, orgID, userID uuid.UUID) error
}

type membershipRepo struct {
	db Database
}

func NewMembershipRepo(db Database) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) Create(ctx context.Context, membership *models.OrganizationMembership) error {
	query := `
		INSERT INTO organization_memberships (id, organization_id, user_id, role, status, invited_by, accepted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		membership.ID, membership.OrganizationID, membership.UserID,
		membership.Role, membership.Status, membership.InvitedBy, membership.AcceptedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

func (r *membershipRepo) Find(ctx context.Context, orgID, userID uuid.UUID) (*models.OrganizationMembership, error) {
	membership := &models.OrganizationMembership{}
	query := `
		SELECT id, organization_id, user_id, role, status, invited_by, accepted_at, created_at, updated_at
		FROM organization_memberships
		WHERE organization_id = $1 AND user_id = $2
	`
	err := r.db.QueryRow(ctx, query, orgID, userID).Scan(
		&membership.ID, &membership.OrganizationID, &membership.UserID,
		&membership.Role, &membership.Status, &membership.InvitedBy,
		&membership.AcceptedAt, &membership.CreatedAt, &membership.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (r *membershipRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*models.OrganizationMembership, error) {
	query := `
		SELECT id, organization_id, user_id, role, status, invited_by, accepted_at, created_at, updated_at
		FROM organization_memberships
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*models.OrganizationMembership
	for rows.Next() {
		membership := &models.OrganizationMembership{}
		if err := rows.Scan(
			&membership.ID, &membership.OrganizationID, &membership.UserID,
			&membership.Role, &membership.Status, &membership.InvitedBy,
			&membership.AcceptedAt, &membership.CreatedAt, &membership.UpdatedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, membership)
	}
	return memberships, rows.Err()
}

func (r *membershipRepo) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.OrganizationMembership, error) {
	query := `
		SELECT id, organization_id, user_id, role, status, invited_by, accepted_at, created_at, updated_at
		FROM organization_memberships
		WHERE organization_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*models.OrganizationMembership
	for rows.Next() {
		membership := &models.OrganizationMembership{}
		if err := rows.Scan(
			&membership.ID, &membership.OrganizationID, &membership.UserID,
			&membership.Role, &membership.Status, &membership.InvitedBy,
			&membership.AcceptedAt, &membership.CreatedAt, &membership.UpdatedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, membership)
	}
	return memberships, rows.Err()
}

func (r *membershipRepo) UpdateStatus(ctx context.Context, orgID, userID uuid.UUID, status string) error {
	query := `
		UPDATE organization_memberships
		SET status = $1, updated_at = NOW()
		WHERE organization_id = $2 AND user_id = $3
	`
	_, err := r.db.Exec(ctx, query, status, orgID, userID)
	return err
}

func (r *membershipRepo) Delete(ctx context.Context, orgID, userID uuid.UUID) error {
	query := `DELETE FROM organization_memberships WHERE organization_id = $1 AND user_id = $2`
	_, err := r.db.Exec(ctx, query, orgID, userID)
	return err
}
