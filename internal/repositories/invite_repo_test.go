package repositories

import (
	"context"
	"testing"
	"time"

	"congregate/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type InviteRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    InviteRepository
	orgID   uuid.UUID
	context context.Context
}

func (suite *InviteRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewInviteRepo(mock)
	suite.orgID = uuid.New()
	suite.context = context.Background()
}

func (suite *InviteRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestInviteRepoTestSuite(t *testing.T) {
	suite.Run(t, new(InviteRepoTestSuite))
}

func (suite *InviteRepoTestSuite) TestCreate() {
	invite := &models.OrganizationInvite{
		ID:             uuid.New(),
		OrganizationID: suite.orgID,
		Email:          "singer@example.com",
		Role:           models.RoleMember,
		InvitedBy:      uuid.New(),
		Token:          "token-value",
		Status:         models.InvitePending,
		ExpiresAt:      time.Now().Add(14 * 24 * time.Hour),
	}

	suite.mock.ExpectExec(`
			INSERT INTO organization_invites \(id, organization_id, email, role, invited_by, token, status, expires_at, created_at, updated_at\)
			VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, NOW\(\), NOW\(\)\)
		`).WithArgs(invite.ID, invite.OrganizationID, invite.Email, invite.Role,
		invite.InvitedBy, invite.Token, invite.Status, invite.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, invite)
	assert.NoError(suite.T(), err)
}

func (suite *InviteRepoTestSuite) TestUpdateStatus_AcceptedWithTimestamp() {
	inviteID := uuid.New()
	acceptedAt := time.Now()

	suite.mock.ExpectExec(`UPDATE organization_invites
			SET status = \$1, accepted_at = \$2, updated_at = NOW\(\)
			WHERE id = \$3`).
		WithArgs(models.InviteAccepted, &acceptedAt, inviteID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateStatus(suite.context, inviteID, models.InviteAccepted, &acceptedAt)
	assert.NoError(suite.T(), err)
}

func (suite *InviteRepoTestSuite) TestUpdateStatus_RevokedWithoutTimestamp() {
	inviteID := uuid.New()

	suite.mock.ExpectExec(`UPDATE organization_invites`).
		WithArgs(models.InviteRevoked, (*time.Time)(nil), inviteID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateStatus(suite.context, inviteID, models.InviteRevoked, nil)
	assert.NoError(suite.T(), err)
}

func (suite *InviteRepoTestSuite) TestListPendingByEmail_NewestFirst() {
	rows := pgxmock.NewRows([]string{"id", "organization_id", "email", "role", "invited_by", "token", "status", "expires_at", "accepted_at", "created_at", "updated_at"}).
		AddRow(uuid.New(), suite.orgID, "singer@example.com", models.RoleMember, uuid.New(),
			"tok-1", models.InvitePending, time.Now().Add(24*time.Hour), (*time.Time)(nil), time.Now(), time.Now()).
		AddRow(uuid.New(), suite.orgID, "singer@example.com", models.RoleMember, uuid.New(),
			"tok-2", models.InvitePending, time.Now().Add(48*time.Hour), (*time.Time)(nil), time.Now().Add(-time.Hour), time.Now())

	suite.mock.ExpectQuery(`WHERE email = \$1 AND status = 'pending'
			ORDER BY created_at DESC`).
		WithArgs("singer@example.com").
		WillReturnRows(rows)

	invites, err := suite.repo.ListPendingByEmail(suite.context, "singer@example.com")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), invites, 2)
	assert.Equal(suite.T(), "tok-1", invites[0].Token)
}

func (suite *InviteRepoTestSuite) TestExpirePending_ReportsCount() {
	cutoff := time.Now()

	suite.mock.ExpectExec(`UPDATE organization_invites
			SET status = 'expired', updated_at = NOW\(\)
			WHERE status = 'pending' AND expires_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	expired, err := suite.repo.ExpirePending(suite.context, cutoff)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), expired)
}
