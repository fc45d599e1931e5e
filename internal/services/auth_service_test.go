package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	cacheSvc *MockCacheService
	service  AuthService
	ctx      context.Context
	userID   uuid.UUID
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.cacheSvc = new(MockCacheService)
	suite.service = NewAuthService(suite.cacheSvc, "test-secret", 3600, 7*24*3600)
	suite.ctx = context.Background()
	suite.userID = uuid.New()
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) TestGenerateTokens_StoresHashedRefreshToken() {
	suite.cacheSvc.On("SetString", suite.ctx,
		mock.MatchedBy(func(key string) bool { return len(key) == len("refresh_token:")+64 }),
		mock.AnythingOfType("string"),
		7*24*time.Hour).Return(nil)

	tokens, err := suite.service.GenerateTokens(suite.ctx, suite.userID)

	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), tokens.AccessToken)
	assert.NotEmpty(suite.T(), tokens.RefreshToken)
	assert.Equal(suite.T(), "Bearer", tokens.TokenType)
	assert.Equal(suite.T(), suite.userID.String(), tokens.UserID)
	// The raw refresh token must never be what gets stored.
	suite.cacheSvc.AssertNotCalled(suite.T(), "SetString", suite.ctx,
		fmt.Sprintf("refresh_token:%s", tokens.RefreshToken), mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestValidateToken_RoundTrip() {
	suite.cacheSvc.On("SetString", suite.ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	tokens, err := suite.service.GenerateTokens(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)

	suite.cacheSvc.On("GetString", suite.ctx, fmt.Sprintf("revoked_token:%s", tokens.TokenID)).Return("", nil)

	claims, err := suite.service.ValidateToken(suite.ctx, tokens.AccessToken)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.userID.String(), claims.UserID)
	assert.Equal(suite.T(), tokens.TokenID, claims.TokenID)
}

func (suite *AuthServiceTestSuite) TestValidateToken_RevokedTokenRejected() {
	suite.cacheSvc.On("SetString", suite.ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	tokens, err := suite.service.GenerateTokens(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)

	suite.cacheSvc.On("GetString", suite.ctx, fmt.Sprintf("revoked_token:%s", tokens.TokenID)).Return("revoked", nil)

	_, err = suite.service.ValidateToken(suite.ctx, tokens.AccessToken)

	assert.Error(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestValidateToken_WrongSecretRejected() {
	other := NewAuthService(suite.cacheSvc, "other-secret", 3600, 7*24*3600)
	suite.cacheSvc.On("SetString", suite.ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	tokens, err := other.GenerateTokens(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)

	_, err = suite.service.ValidateToken(suite.ctx, tokens.AccessToken)

	assert.Error(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestRefreshToken_RotatesSingleUseToken() {
	var storedKeys []string
	suite.cacheSvc.On("SetString", suite.ctx, mock.MatchedBy(func(key string) bool {
		storedKeys = append(storedKeys, key)
		return true
	}), mock.Anything, mock.Anything).Return(nil)

	tokens, err := suite.service.GenerateTokens(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)
	firstKey := storedKeys[0]

	tokenData := fmt.Sprintf("%s:%d", suite.userID.String(), time.Now().Add(time.Hour).Unix())
	suite.cacheSvc.On("GetString", suite.ctx, firstKey).Return(tokenData, nil)
	suite.cacheSvc.On("Delete", suite.ctx, firstKey).Return(nil)

	rotated, err := suite.service.RefreshToken(suite.ctx, tokens.RefreshToken)

	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), tokens.RefreshToken, rotated.RefreshToken)
	suite.cacheSvc.AssertCalled(suite.T(), "Delete", suite.ctx, firstKey)
}

func (suite *AuthServiceTestSuite) TestRefreshToken_ExpiredDataRejected() {
	suite.cacheSvc.On("SetString", suite.ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	tokens, err := suite.service.GenerateTokens(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)

	stale := fmt.Sprintf("%s:%d", suite.userID.String(), time.Now().Add(-time.Hour).Unix())
	suite.cacheSvc.On("GetString", suite.ctx, mock.Anything).Return(stale, nil)

	_, err = suite.service.RefreshToken(suite.ctx, tokens.RefreshToken)

	assert.Error(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestRefreshToken_UnknownTokenRejected() {
	suite.cacheSvc.On("GetString", suite.ctx, mock.Anything).Return("", nil)

	_, err := suite.service.RefreshToken(suite.ctx, "never-issued")

	assert.Error(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestRevokeAccessToken_DenylistsUntilExpiry() {
	suite.cacheSvc.On("SetString", suite.ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "refresh_token:")
	}), mock.Anything, mock.Anything).Return(nil)

	tokens, err := suite.service.GenerateTokens(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)

	denyKey := fmt.Sprintf("revoked_token:%s", tokens.TokenID)
	suite.cacheSvc.On("GetString", suite.ctx, denyKey).Return("", nil).Once()
	suite.cacheSvc.On("SetString", suite.ctx, denyKey, "revoked",
		mock.MatchedBy(func(ttl time.Duration) bool { return ttl > 0 && ttl <= time.Hour })).
		Return(nil).Once()

	assert.NoError(suite.T(), suite.service.RevokeAccessToken(suite.ctx, tokens.AccessToken))

	// The denylisted token is rejected for the rest of its lifetime.
	suite.cacheSvc.On("GetString", suite.ctx, denyKey).Return("revoked", nil).Once()
	_, err = suite.service.ValidateToken(suite.ctx, tokens.AccessToken)
	assert.Error(suite.T(), err)
	suite.cacheSvc.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestRevokeAccessToken_GarbageTokenRejected() {
	err := suite.service.RevokeAccessToken(suite.ctx, "not-a-jwt")

	assert.Error(suite.T(), err)
	suite.cacheSvc.AssertNotCalled(suite.T(), "SetString", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestRevokeToken_DeletesStoredHash() {
	suite.cacheSvc.On("Delete", suite.ctx, mock.MatchedBy(func(key string) bool {
		return len(key) == len("refresh_token:")+64
	})).Return(nil)

	err := suite.service.RevokeToken(suite.ctx, "some-refresh-token")

	assert.NoError(suite.T(), err)
	suite.cacheSvc.AssertExpectations(suite.T())
}
