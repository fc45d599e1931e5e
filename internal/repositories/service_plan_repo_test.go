package repositories

import (
	"context"
	"errors"
	"testing"

	"congregate/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ServicePlanRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    ServicePlanRepository
	planID  uuid.UUID
	context context.Context
}

func (suite *ServicePlanRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewServicePlanRepo(mock)
	suite.planID = uuid.New()
	suite.context = context.Background()
}

func (suite *ServicePlanRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestServicePlanRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ServicePlanRepoTestSuite))
}

func (suite *ServicePlanRepoTestSuite) items() []*models.PlanItem {
	return []*models.PlanItem{
		{ID: uuid.New(), PlanID: suite.planID, Position: 0, Kind: "element", Title: "Call to Worship"},
		{ID: uuid.New(), PlanID: suite.planID, Position: 1, Kind: "reading", Title: "Psalm 23"},
	}
}

func (suite *ServicePlanRepoTestSuite) TestReplaceItems_CommitsDeleteAndInserts() {
	items := suite.items()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM plan_items WHERE plan_id = \$1`).
		WithArgs(suite.planID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	for _, item := range items {
		suite.mock.ExpectExec(`
		INSERT INTO plan_items \(id, plan_id, position, kind, song_id, title, notes\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7\)
	`).WithArgs(item.ID, suite.planID, item.Position, item.Kind, item.SongID, item.Title, item.Notes).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	suite.mock.ExpectCommit()

	err := suite.repo.ReplaceItems(suite.context, suite.planID, items)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *ServicePlanRepoTestSuite) TestReplaceItems_InsertFailureRollsBackDelete() {
	items := suite.items()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM plan_items WHERE plan_id = \$1`).
		WithArgs(suite.planID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	suite.mock.ExpectExec(`INSERT INTO plan_items`).
		WithArgs(items[0].ID, suite.planID, items[0].Position, items[0].Kind,
			items[0].SongID, items[0].Title, items[0].Notes).
		WillReturnError(errors.New("insert failed"))
	suite.mock.ExpectRollback()

	err := suite.repo.ReplaceItems(suite.context, suite.planID, items)
	assert.Error(suite.T(), err)
	// The previous setlist is preserved: no commit happened.
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *ServicePlanRepoTestSuite) TestDelete() {
	orgID := uuid.New()

	suite.mock.ExpectExec(`DELETE FROM service_plans WHERE organization_id = \$1 AND id = \$2`).
		WithArgs(orgID, suite.planID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, orgID, suite.planID)
	assert.NoError(suite.T(), err)
}
