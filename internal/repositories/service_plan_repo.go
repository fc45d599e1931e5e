package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"congregate/internal/models"
)

type ServicePlanRepository interface {
	Create(ctx context.Context, plan *models.ServicePlan) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.ServicePlan, error)
	Update(ctx context.Context, plan *models.ServicePlan) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	ListByOrganization(ctx context.Context, orgID uuid.UUID, from, to time.Time, limit, offset int) ([]*models.ServicePlan, error)
	ReplaceItems(ctx context.Context, planID uuid.UUID, items []*models.PlanItem) error
	ListItems(ctx context.Context, planID uuid.UUID) ([]*models.PlanItem, error)
}

type servicePlanRepo struct {
	db Database
}

func NewServicePlanRepo(db Database) ServicePlanRepository {
	return &servicePlanRepo{db: db}
}

func (r *servicePlanRepo) Create(ctx context.Context, plan *models.ServicePlan) error {
	query := `
		INSERT INTO service_plans (id, organization_id, title, service_date, notes, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		plan.ID, plan.OrganizationID, plan.Title, plan.ServiceDate,
		plan.Notes, plan.Status, plan.CreatedBy)
	return err
}

func (r *servicePlanRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.ServicePlan, error) {
	plan := &models.ServicePlan{}
	query := `
		SELECT id, organization_id, title, service_date, notes, status, created_by, created_at, updated_at
		FROM service_plans
		WHERE organization_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, orgID, id).Scan(
		&plan.ID, &plan.OrganizationID, &plan.Title, &plan.ServiceDate,
		&plan.Notes, &plan.Status, &plan.CreatedBy, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *servicePlanRepo) Update(ctx context.Context, plan *models.ServicePlan) error {
	query := `
		UPDATE service_plans
		SET title = $1, service_date = $2, notes = $3, status = $4, updated_at = NOW()
		WHERE organization_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query,
		plan.Title, plan.ServiceDate, plan.Notes, plan.Status,
		plan.OrganizationID, plan.ID)
	return err
}

func (r *servicePlanRepo) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `DELETE FROM service_plans WHERE organization_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, orgID, id)
	return err
}

func (r *servicePlanRepo) ListByOrganization(ctx context.Context, orgID uuid.UUID, from, to time.Time, limit, offset int) ([]*models.ServicePlan, error) {
	query := `
		SELECT id, organization_id, title, service_date, notes, status, created_by, created_at, updated_at
		FROM service_plans
		WHERE organization_id = $1 AND service_date >= $2 AND service_date <= $3
		ORDER BY service_date ASC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query, orgID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*models.ServicePlan
	for rows.Next() {
		plan := &models.ServicePlan{}
		if err := rows.Scan(
			&plan.ID, &plan.OrganizationID, &plan.Title, &plan.ServiceDate,
			&plan.Notes, &plan.Status, &plan.CreatedBy, &plan.CreatedAt, &plan.UpdatedAt); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// ReplaceItems swaps the plan's setlist atomically: a failed insert rolls the
// delete back so the previous setlist survives.
func (r *servicePlanRepo) ReplaceItems(ctx context.Context, planID uuid.UUID, items []*models.PlanItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM plan_items WHERE plan_id = $1`, planID); err != nil {
		return err
	}

	query := `
		INSERT INTO plan_items (id, plan_id, position, kind, song_id, title, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, item := range items {
		if _, err := tx.Exec(ctx, query,
			item.ID, planID, item.Position, item.Kind, item.SongID, item.Title, item.Notes); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *servicePlanRepo) ListItems(ctx context.Context, planID uuid.UUID) ([]*models.PlanItem, error) {
	query := `
		SELECT id, plan_id, position, kind, song_id, title, notes
		FROM plan_items
		WHERE plan_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.Query(ctx, query, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.PlanItem
	for rows.Next() {
		item := &models.PlanItem{}
		if err := rows.Scan(&item.ID, &item.PlanID, &item.Position, &item.Kind, &item.SongID, &item.Title, &item.Notes); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
