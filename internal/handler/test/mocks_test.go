package test

import (
	"context"
	"socialhub/internal/models"
	"socialhub/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input service.RegisterInput) (*models.User, string, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) GenerateToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (string, error) {
	args := m.Called(tokenString)
	return args.String(0), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) profile(args mock.Arguments) (*models.UserProfile, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockUserService) GetCurrentUser(ctx context.Context, userID string) (*models.UserProfile, error) {
	return m.profile(m.Called(ctx, userID))
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return m.profile(m.Called(ctx, userID))
}

func (m *MockUserService) ListUsers(ctx context.Context, viewerID string, query service.UserQuery) ([]models.UserListItem, error) {
	args := m.Called(ctx, viewerID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserListItem), args.Error(1)
}

func (m *MockUserService) ToggleFollow(ctx context.Context, followerID, targetID string) (*models.FollowResult, error) {
	args := m.Called(ctx, followerID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FollowResult), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, input service.UpdateProfileInput) (*models.UserProfile, error) {
	return m.profile(m.Called(ctx, userID, input))
}

func (m *MockUserService) UpdateProfilePicture(ctx context.Context, userID string, upload service.ImageUpload) (*models.UserProfile, error) {
	return m.profile(m.Called(ctx, userID, upload))
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) view(args mock.Arguments) (*models.PostView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostView), args.Error(1)
}

func (m *MockPostService) Feed(ctx context.Context, page, limit int) (*models.FeedPage, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeedPage), args.Error(1)
}

func (m *MockPostService) GetPost(ctx context.Context, postID string) (*models.PostView, error) {
	return m.view(m.Called(ctx, postID))
}

func (m *MockPostService) ListByAuthor(ctx context.Context, authorID string) ([]models.PostView, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PostView), args.Error(1)
}

func (m *MockPostService) CreatePost(ctx context.Context, input service.CreatePostInput) (*models.PostView, error) {
	return m.view(m.Called(ctx, input))
}

func (m *MockPostService) ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error) {
	args := m.Called(ctx, postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LikeResult), args.Error(1)
}

func (m *MockPostService) AddComment(ctx context.Context, postID, userID, text string) (*models.PostView, error) {
	return m.view(m.Called(ctx, postID, userID, text))
}

func (m *MockPostService) EditComment(ctx context.Context, postID, commentID, userID, text string) (*models.PostView, error) {
	return m.view(m.Called(ctx, postID, commentID, userID, text))
}

func (m *MockPostService) DeletePost(ctx context.Context, postID, userID string) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetStats(ctx context.Context) (*models.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

type fakeChecker struct {
	err error
}

func (c fakeChecker) HealthCheck(ctx context.Context) error {
	return c.err
}
