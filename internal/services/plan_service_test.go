package services

import (
	"context"
	"testing"
	"time"

	"congregate/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockServicePlanRepository struct {
	mock.Mock
}

func (m *MockServicePlanRepository) Create(ctx context.Context, plan *models.ServicePlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockServicePlanRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.ServicePlan, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServicePlan), args.Error(1)
}

func (m *MockServicePlanRepository) Update(ctx context.Context, plan *models.ServicePlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockServicePlanRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *MockServicePlanRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID, from, to time.Time, limit, offset int) ([]*models.ServicePlan, error) {
	args := m.Called(ctx, orgID, from, to, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ServicePlan), args.Error(1)
}

func (m *MockServicePlanRepository) ReplaceItems(ctx context.Context, planID uuid.UUID, items []*models.PlanItem) error {
	args := m.Called(ctx, planID, items)
	return args.Error(0)
}

func (m *MockServicePlanRepository) ListItems(ctx context.Context, planID uuid.UUID) ([]*models.PlanItem, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlanItem), args.Error(1)
}

type MockSongRepository struct {
	mock.Mock
}

func (m *MockSongRepository) Create(ctx context.Context, song *models.Song) error {
	args := m.Called(ctx, song)
	return args.Error(0)
}

func (m *MockSongRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Song, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Song), args.Error(1)
}

func (m *MockSongRepository) Update(ctx context.Context, song *models.Song) error {
	args := m.Called(ctx, song)
	return args.Error(0)
}

func (m *MockSongRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *MockSongRepository) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Song, error) {
	args := m.Called(ctx, orgID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Song), args.Error(1)
}

func (m *MockSongRepository) Search(ctx context.Context, orgID uuid.UUID, query string, limit, offset int) ([]*models.Song, error) {
	args := m.Called(ctx, orgID, query, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Song), args.Error(1)
}

func (m *MockSongRepository) SetAttachmentKey(ctx context.Context, orgID, id uuid.UUID, key *string) error {
	args := m.Called(ctx, orgID, id, key)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetSong(ctx context.Context, orgID, songID uuid.UUID) (*models.Song, error) {
	args := m.Called(ctx, orgID, songID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Song), args.Error(1)
}

func (m *MockCacheService) SetSong(ctx context.Context, orgID uuid.UUID, song *models.Song, ttl time.Duration) error {
	args := m.Called(ctx, orgID, song, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteSong(ctx context.Context, orgID, songID uuid.UUID) error {
	args := m.Called(ctx, orgID, songID)
	return args.Error(0)
}

func (m *MockCacheService) GetPlan(ctx context.Context, orgID, planID uuid.UUID) (*models.ServicePlan, error) {
	args := m.Called(ctx, orgID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServicePlan), args.Error(1)
}

func (m *MockCacheService) SetPlan(ctx context.Context, orgID uuid.UUID, plan *models.ServicePlan, ttl time.Duration) error {
	args := m.Called(ctx, orgID, plan, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeletePlan(ctx context.Context, orgID, planID uuid.UUID) error {
	args := m.Called(ctx, orgID, planID)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateOrganizationCache(ctx context.Context, orgID uuid.UUID) error {
	args := m.Called(ctx, orgID)
	return args.Error(0)
}

func (m *MockCacheService) SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, userID, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetSession(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type PlanServiceTestSuite struct {
	suite.Suite
	planRepo *MockServicePlanRepository
	songRepo *MockSongRepository
	cacheSvc *MockCacheService
	service  PlanService
	ctx      context.Context
	orgID    uuid.UUID
	planID   uuid.UUID
}

func (suite *PlanServiceTestSuite) SetupTest() {
	suite.planRepo = new(MockServicePlanRepository)
	suite.songRepo = new(MockSongRepository)
	suite.cacheSvc = new(MockCacheService)
	suite.service = NewPlanService(suite.planRepo, suite.songRepo, suite.cacheSvc)
	suite.ctx = context.Background()
	suite.orgID = uuid.New()
	suite.planID = uuid.New()
}

func TestPlanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PlanServiceTestSuite))
}

func (suite *PlanServiceTestSuite) plan() *models.ServicePlan {
	return &models.ServicePlan{
		ID:             suite.planID,
		OrganizationID: suite.orgID,
		Title:          "Sunday Service",
		ServiceDate:    time.Now().AddDate(0, 0, 7),
		Status:         models.PlanDraft,
	}
}

func (suite *PlanServiceTestSuite) TestCreate_StartsAsDraft() {
	suite.planRepo.On("Create", suite.ctx, mock.MatchedBy(func(p *models.ServicePlan) bool {
		return p.Status == models.PlanDraft && p.Title == "Sunday Service"
	})).Return(nil)

	plan, err := suite.service.Create(suite.ctx, &CreatePlanRequest{
		OrganizationID: suite.orgID,
		Title:          " Sunday Service ",
		ServiceDate:    time.Now().AddDate(0, 0, 7),
		CreatedBy:      uuid.New(),
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.PlanDraft, plan.Status)
}

func (suite *PlanServiceTestSuite) TestCreate_RequiresTitleAndDate() {
	_, err := suite.service.Create(suite.ctx, &CreatePlanRequest{OrganizationID: suite.orgID, ServiceDate: time.Now()})
	assert.Error(suite.T(), err)

	_, err = suite.service.Create(suite.ctx, &CreatePlanRequest{OrganizationID: suite.orgID, Title: "Sunday"})
	assert.Error(suite.T(), err)

	suite.planRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *PlanServiceTestSuite) TestGetByID_CacheHitSkipsRepo() {
	cached := suite.plan()
	suite.cacheSvc.On("GetPlan", suite.ctx, suite.orgID, suite.planID).Return(cached, nil)

	plan, err := suite.service.GetByID(suite.ctx, suite.orgID, suite.planID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), cached, plan)
	suite.planRepo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PlanServiceTestSuite) TestGetByID_CacheMissFillsCache() {
	stored := suite.plan()
	suite.cacheSvc.On("GetPlan", suite.ctx, suite.orgID, suite.planID).Return(nil, nil)
	suite.planRepo.On("GetByID", suite.ctx, suite.orgID, suite.planID).Return(stored, nil)
	suite.cacheSvc.On("SetPlan", suite.ctx, suite.orgID, stored, planCacheTTL).Return(nil)

	plan, err := suite.service.GetByID(suite.ctx, suite.orgID, suite.planID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), stored, plan)
	suite.cacheSvc.AssertExpectations(suite.T())
}

func (suite *PlanServiceTestSuite) TestSetItems_SongItemsMustExistInLibrary() {
	songID := uuid.New()
	suite.planRepo.On("GetByID", suite.ctx, suite.orgID, suite.planID).Return(suite.plan(), nil)
	suite.songRepo.On("GetByID", suite.ctx, suite.orgID, songID).Return(nil, pgx.ErrNoRows)

	err := suite.service.SetItems(suite.ctx, suite.orgID, suite.planID, []*models.PlanItem{
		{Kind: "song", SongID: &songID},
	})

	assert.Error(suite.T(), err)
	suite.planRepo.AssertNotCalled(suite.T(), "ReplaceItems", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PlanServiceTestSuite) TestSetItems_PositionsFollowSubmittedOrder() {
	songID := uuid.New()
	song := &models.Song{ID: songID, OrganizationID: suite.orgID, Title: "Amazing Grace"}

	suite.planRepo.On("GetByID", suite.ctx, suite.orgID, suite.planID).Return(suite.plan(), nil)
	suite.songRepo.On("GetByID", suite.ctx, suite.orgID, songID).Return(song, nil)
	suite.planRepo.On("ReplaceItems", suite.ctx, suite.planID, mock.MatchedBy(func(items []*models.PlanItem) bool {
		return len(items) == 3 &&
			items[0].Position == 0 && items[1].Position == 1 && items[2].Position == 2 &&
			items[0].Title == "Call to Worship" &&
			items[1].Title == "Amazing Grace" // filled from the library
	})).Return(nil)
	suite.cacheSvc.On("DeletePlan", suite.ctx, suite.orgID, suite.planID).Return(nil)

	err := suite.service.SetItems(suite.ctx, suite.orgID, suite.planID, []*models.PlanItem{
		{Kind: "element", Title: "Call to Worship"},
		{Kind: "song", SongID: &songID},
		{Kind: "reading", Title: "Psalm 23"},
	})

	assert.NoError(suite.T(), err)
	suite.planRepo.AssertExpectations(suite.T())
}

func (suite *PlanServiceTestSuite) TestSetItems_RejectsUnknownKind() {
	suite.planRepo.On("GetByID", suite.ctx, suite.orgID, suite.planID).Return(suite.plan(), nil)

	err := suite.service.SetItems(suite.ctx, suite.orgID, suite.planID, []*models.PlanItem{
		{Kind: "announcement", Title: "Potluck"},
	})

	assert.Error(suite.T(), err)
}

func (suite *PlanServiceTestSuite) TestUpdate_InvalidStatusRejected() {
	err := suite.service.Update(suite.ctx, &UpdatePlanRequest{
		OrganizationID: suite.orgID,
		ID:             suite.planID,
		Title:          "Sunday Service",
		ServiceDate:    time.Now(),
		Status:         "cancelled",
	})

	assert.Error(suite.T(), err)
	suite.planRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *PlanServiceTestSuite) TestListByOrganization_RejectsInvertedWindow() {
	from := time.Now()
	to := from.Add(-24 * time.Hour)

	_, err := suite.service.ListByOrganization(suite.ctx, suite.orgID, from, to, 10, 0)

	assert.Error(suite.T(), err)
}
