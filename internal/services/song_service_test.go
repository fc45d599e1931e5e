package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"congregate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) UploadAttachment(ctx context.Context, bucketName, objectName, contentType string, reader io.Reader, objectSize int64) error {
	args := m.Called(ctx, bucketName, objectName, contentType, reader, objectSize)
	return args.Error(0)
}

func (m *MockStorageService) GetPresignedURL(bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) DeleteAttachment(ctx context.Context, bucketName, objectName string) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *MockStorageService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

type SongServiceTestSuite struct {
	suite.Suite
	songRepo   *MockSongRepository
	storageSvc *MockStorageService
	cacheSvc   *MockCacheService
	service    SongService
	ctx        context.Context
	orgID      uuid.UUID
	songID     uuid.UUID
}

func (suite *SongServiceTestSuite) SetupTest() {
	suite.songRepo = new(MockSongRepository)
	suite.storageSvc = new(MockStorageService)
	suite.cacheSvc = new(MockCacheService)
	suite.service = NewSongService(suite.songRepo, suite.storageSvc, suite.cacheSvc)
	suite.ctx = context.Background()
	suite.orgID = uuid.New()
	suite.songID = uuid.New()
}

func TestSongServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SongServiceTestSuite))
}

func (suite *SongServiceTestSuite) song() *models.Song {
	return &models.Song{
		ID:             suite.songID,
		OrganizationID: suite.orgID,
		Title:          "Amazing Grace",
	}
}

func (suite *SongServiceTestSuite) TestCreate_TempoOutOfRangeRejected() {
	tempo := 500
	_, err := suite.service.Create(suite.ctx, &CreateSongRequest{
		OrganizationID: suite.orgID,
		Title:          "Amazing Grace",
		Tempo:          &tempo,
	})

	assert.Error(suite.T(), err)
	suite.songRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *SongServiceTestSuite) TestUploadAttachment_SetsKeyAndInvalidatesCache() {
	suite.songRepo.On("GetByID", suite.ctx, suite.orgID, suite.songID).Return(suite.song(), nil)

	expectedKey := suite.orgID.String() + "/" + suite.songID.String() + "/chart.pdf"
	suite.storageSvc.On("UploadAttachment", suite.ctx, "song-attachments", expectedKey,
		"application/pdf", mock.Anything, int64(4)).Return(nil)
	suite.songRepo.On("SetAttachmentKey", suite.ctx, suite.orgID, suite.songID, &expectedKey).Return(nil)
	suite.cacheSvc.On("DeleteSong", suite.ctx, suite.orgID, suite.songID).Return(nil)

	key, err := suite.service.UploadAttachment(suite.ctx, suite.orgID, suite.songID,
		"chart.pdf", "application/pdf", strings.NewReader("data"), 4)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), expectedKey, key)
	suite.storageSvc.AssertExpectations(suite.T())
}

func (suite *SongServiceTestSuite) TestDelete_RemovesAttachment() {
	key := "org/song/chart.pdf"
	song := suite.song()
	song.AttachmentKey = &key

	suite.songRepo.On("GetByID", suite.ctx, suite.orgID, suite.songID).Return(song, nil)
	suite.songRepo.On("Delete", suite.ctx, suite.orgID, suite.songID).Return(nil)
	suite.storageSvc.On("DeleteAttachment", suite.ctx, "song-attachments", key).Return(nil)
	suite.cacheSvc.On("DeleteSong", suite.ctx, suite.orgID, suite.songID).Return(nil)

	err := suite.service.Delete(suite.ctx, suite.orgID, suite.songID)

	assert.NoError(suite.T(), err)
	suite.storageSvc.AssertExpectations(suite.T())
}

func (suite *SongServiceTestSuite) TestAttachmentURL_NoAttachment() {
	suite.cacheSvc.On("GetSong", suite.ctx, suite.orgID, suite.songID).Return(nil, nil)
	suite.songRepo.On("GetByID", suite.ctx, suite.orgID, suite.songID).Return(suite.song(), nil)
	suite.cacheSvc.On("SetSong", suite.ctx, suite.orgID, mock.Anything, songCacheTTL).Return(nil)

	_, err := suite.service.AttachmentURL(suite.ctx, suite.orgID, suite.songID)

	assert.Error(suite.T(), err)
	suite.storageSvc.AssertNotCalled(suite.T(), "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SongServiceTestSuite) TestSearch_BlankQueryFallsBackToList() {
	suite.songRepo.On("List", suite.ctx, suite.orgID, 50, 0).Return([]*models.Song{}, nil)

	_, err := suite.service.Search(suite.ctx, suite.orgID, "   ", 0, 0)

	assert.NoError(suite.T(), err)
	suite.songRepo.AssertNotCalled(suite.T(), "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
