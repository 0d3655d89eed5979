package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"socialhub/internal/events"
	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/storage"
)

type userFixture struct {
	users     *MockUserRepository
	posts     *MockPostRepository
	storage   *MockStorage
	cache     *recordingCache
	publisher *recordingPublisher
	service   UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:     new(MockUserRepository),
		posts:     new(MockPostRepository),
		storage:   new(MockStorage),
		cache:     newRecordingCache(),
		publisher: &recordingPublisher{},
	}
	f.service = NewUserService(f.users, f.posts, f.storage, f.cache, f.publisher, testConfig())
	return f
}

func alice() *models.User {
	return &models.User{
		UserID:     "alice",
		Name:       "Alice",
		Email:      "alice@example.com",
		Followers:  []string{"bob"},
		Following:  []string{"bob", "carol"},
		PostsCount: 2,
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

var friends = []models.UserSummary{
	{ID: "bob", Name: "Bob", Email: "bob@example.com"},
	{ID: "carol", Name: "Carol", Email: "carol@example.com"},
}

func TestUserService_GetCurrentUser(t *testing.T) {
	f := newUserFixture()
	f.users.On("GetUserByID", mock.Anything, "alice").Return(alice(), nil)
	f.users.On("GetSummaries", mock.Anything, []string{"bob", "carol"}).Return(friends, nil)

	profile, err := f.service.GetCurrentUser(t.Context(), "alice")

	require.NoError(t, err)
	assert.Equal(t, []models.UserSummary{friends[0]}, profile.Followers)
	assert.Equal(t, friends, profile.Following)
	assert.Equal(t, 1, profile.FollowersCount)
	assert.Equal(t, 2, profile.FollowingCount)
	assert.Nil(t, profile.Posts)
}

func TestUserService_GetProfile(t *testing.T) {
	t.Run("Профиль собирается и кладется в кэш", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetUserByID", mock.Anything, "alice").Return(alice(), nil)
		f.users.On("GetSummaries", mock.Anything, mock.Anything).Return(friends, nil)
		f.posts.On("ListByAuthor", mock.Anything, "alice", ProfilePostsLimit).Return([]models.Post{
			{PostID: "p1", Content: "one", Likes: []string{"bob"}, Comments: []models.Comment{{CommentID: "c1"}, {CommentID: "c2"}}},
		}, nil)

		profile, err := f.service.GetProfile(t.Context(), "alice")

		require.NoError(t, err)
		require.Len(t, profile.Posts, 1)
		assert.Equal(t, 1, profile.Posts[0].LikesCount)
		assert.Equal(t, 2, profile.Posts[0].CommentsCount)
		assert.Same(t, profile, f.cache.stored["alice"])
	})

	t.Run("Попадание в кэш не ходит в базу", func(t *testing.T) {
		f := newUserFixture()
		f.cache.stored["alice"] = &models.UserProfile{ID: "alice", Name: "Cached"}

		profile, err := f.service.GetProfile(t.Context(), "alice")

		require.NoError(t, err)
		assert.Equal(t, "Cached", profile.Name)
		f.users.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})

	t.Run("Пользователь не найден", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetUserByID", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

		_, err := f.service.GetProfile(t.Context(), "ghost")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	t.Run("Неизвестная сортировка", func(t *testing.T) {
		f := newUserFixture()

		_, err := f.service.ListUsers(t.Context(), "alice", UserQuery{Sort: "popularity"})

		assert.ErrorIs(t, err, ErrInvalidSort)
	})

	t.Run("Параметры по умолчанию и признак подписки", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("ListUsers", mock.Anything, repository.UserFilter{
			Search:    "bo",
			Sort:      repository.SortNewest,
			Limit:     DefaultUserListLimit,
			ExcludeID: "alice",
		}).Return([]models.User{
			{UserID: "bob", Name: "Bob", Followers: []string{"alice"}, Following: []string{}},
			{UserID: "bobby", Name: "Bobby", Followers: []string{}, Following: []string{"alice"}},
		}, nil)

		items, err := f.service.ListUsers(t.Context(), "alice", UserQuery{Search: " bo "})

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.True(t, items[0].IsFollowing)
		assert.Equal(t, 1, items[0].FollowersCount)
		assert.False(t, items[1].IsFollowing)
		assert.Equal(t, 1, items[1].FollowingCount)
	})

	t.Run("Лимит ограничен сверху", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("ListUsers", mock.Anything, mock.MatchedBy(func(filter repository.UserFilter) bool {
			return filter.Limit == MaxUserListLimit && filter.Sort == repository.SortFollowers
		})).Return([]models.User{}, nil)

		items, err := f.service.ListUsers(t.Context(), "alice", UserQuery{Sort: "Followers", Limit: 500})

		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestUserService_ToggleFollow(t *testing.T) {
	t.Run("Нельзя подписаться на себя", func(t *testing.T) {
		f := newUserFixture()

		_, err := f.service.ToggleFollow(t.Context(), "alice", "alice")

		assert.ErrorIs(t, err, ErrSelfFollow)
	})

	t.Run("Подписка", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("ToggleFollow", mock.Anything, "bob", "alice").Return(true, nil)
		target := alice()
		target.Followers = []string{"bob", "carol"}
		f.users.On("GetUserByID", mock.Anything, "alice").Return(target, nil)

		result, err := f.service.ToggleFollow(t.Context(), "bob", "alice")

		require.NoError(t, err)
		assert.True(t, result.IsFollowing)
		assert.Equal(t, MessageFollowed, result.Message)
		assert.Equal(t, 2, result.FollowersCount)
		assert.ElementsMatch(t, []string{"alice", "bob"}, f.cache.invalidated)
		assert.Equal(t, []string{events.UserFollowed}, f.publisher.types)
	})

	t.Run("Отписка", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("ToggleFollow", mock.Anything, "bob", "alice").Return(false, nil)
		target := alice()
		target.Followers = []string{}
		f.users.On("GetUserByID", mock.Anything, "alice").Return(target, nil)

		result, err := f.service.ToggleFollow(t.Context(), "bob", "alice")

		require.NoError(t, err)
		assert.False(t, result.IsFollowing)
		assert.Equal(t, MessageUnfollowed, result.Message)
		assert.Equal(t, 0, result.FollowersCount)
	})

	t.Run("Цель не найдена", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("ToggleFollow", mock.Anything, "bob", "ghost").Return(false, repository.ErrNotFound)

		_, err := f.service.ToggleFollow(t.Context(), "bob", "ghost")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newUserFixture()
	f.users.On("GetUserByID", mock.Anything, "alice").Return(alice(), nil)
	f.users.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Name == "Alice B" && u.Bio == "gopher"
	})).Return(nil)
	f.users.On("GetSummaries", mock.Anything, mock.Anything).Return(friends, nil)

	profile, err := f.service.UpdateProfile(t.Context(), "alice", UpdateProfileInput{Name: " Alice B ", Bio: "gopher "})

	require.NoError(t, err)
	assert.Equal(t, "Alice B", profile.Name)
	assert.Equal(t, []string{"alice"}, f.cache.invalidated)
}

func TestUserService_UpdateProfilePicture(t *testing.T) {
	f := newUserFixture()
	user := alice()
	user.ProfilePicture = "http://minio/images/avatars/alice/old.png"
	upload := ImageUpload{File: strings.NewReader("png"), Size: 3}

	f.users.On("GetUserByID", mock.Anything, "alice").Return(user, nil)
	f.storage.On("UploadImage", mock.Anything, storage.FolderAvatars, "alice", upload.File, int64(3)).
		Return("avatars/alice/new.png", "http://minio/images/avatars/alice/new.png", nil)
	f.users.On("UpdateProfile", mock.Anything, mock.Anything).Return(nil)
	f.users.On("GetSummaries", mock.Anything, mock.Anything).Return(friends, nil)
	f.storage.On("ObjectNameFromURL", "http://minio/images/avatars/alice/old.png").Return("avatars/alice/old.png", true)
	f.storage.On("DeleteImage", mock.Anything, "avatars/alice/old.png").Return(nil)

	profile, err := f.service.UpdateProfilePicture(t.Context(), "alice", upload)

	require.NoError(t, err)
	assert.Equal(t, "http://minio/images/avatars/alice/new.png", profile.ProfilePicture)
	f.storage.AssertExpectations(t)
}

func TestUserService_UploadsDisabled(t *testing.T) {
	service := NewUserService(new(MockUserRepository), new(MockPostRepository), nil, newRecordingCache(), &recordingPublisher{}, testConfig())

	_, err := service.UpdateProfilePicture(t.Context(), "alice", ImageUpload{File: strings.NewReader("x"), Size: 1})

	assert.ErrorIs(t, err, ErrUploadsDisabled)
}
