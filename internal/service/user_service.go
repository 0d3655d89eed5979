package service

import (
	"context"
	"errors"
	"log"
	"socialhub/internal/cache"
	"socialhub/internal/config"
	"socialhub/internal/events"
	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/storage"
	"strings"
)

const (
	DefaultUserListLimit = 20
	MaxUserListLimit     = 100
	ProfilePostsLimit    = 20

	MessageFollowed   = "User followed successfully"
	MessageUnfollowed = "User unfollowed successfully"
)

type UserQuery struct {
	Search string
	Sort   string
	Limit  int
}

type UpdateProfileInput struct {
	Name string
	Bio  string
}

type UserService interface {
	GetCurrentUser(ctx context.Context, userID string) (*models.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	ListUsers(ctx context.Context, viewerID string, query UserQuery) ([]models.UserListItem, error)
	ToggleFollow(ctx context.Context, followerID, targetID string) (*models.FollowResult, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.UserProfile, error)
	UpdateProfilePicture(ctx context.Context, userID string, upload ImageUpload) (*models.UserProfile, error)
}

type userService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	storage  storage.Storage
	profiles cache.ProfileCache
	events   events.Publisher
	cfg      *config.Config
}

func NewUserService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	storage storage.Storage,
	profiles cache.ProfileCache,
	publisher events.Publisher,
	cfg *config.Config,
) UserService {
	return &userService{
		userRepo: userRepo,
		postRepo: postRepo,
		storage:  storage,
		profiles: profiles,
		events:   publisher,
		cfg:      cfg,
	}
}

func (s *userService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) buildProfile(ctx context.Context, user *models.User) (*models.UserProfile, error) {
	idx, err := loadUsers(ctx, s.userRepo, user.Followers, user.Following)
	if err != nil {
		return nil, err
	}

	return &models.UserProfile{
		ID:             user.UserID,
		Name:           user.Name,
		Email:          user.Email,
		Bio:            user.Bio,
		ProfilePicture: user.ProfilePicture,
		Followers:      idx.summaries(user.Followers),
		Following:      idx.summaries(user.Following),
		FollowersCount: len(user.Followers),
		FollowingCount: len(user.Following),
		PostsCount:     user.PostsCount,
		CreatedAt:      user.CreatedAt,
	}, nil
}

func (s *userService) GetCurrentUser(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.buildProfile(ctx, user)
}

// GetProfile returns the public profile with the latest posts, served from cache when possible.
func (s *userService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if profile, ok := s.profiles.Get(userID); ok {
		return profile, nil
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.buildProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByAuthor(ctx, userID, ProfilePostsLimit)
	if err != nil {
		return nil, err
	}

	profile.Posts = make([]models.PostSummary, 0, len(posts))
	for _, post := range posts {
		profile.Posts = append(profile.Posts, postSummary(post))
	}

	s.profiles.Set(userID, profile)
	return profile, nil
}

func (s *userService) ListUsers(ctx context.Context, viewerID string, query UserQuery) ([]models.UserListItem, error) {
	sort := strings.ToLower(strings.TrimSpace(query.Sort))
	switch sort {
	case "":
		sort = repository.SortNewest
	case repository.SortNewest, repository.SortName, repository.SortFollowers, repository.SortPosts:
	default:
		return nil, ErrInvalidSort
	}

	limit := query.Limit
	if limit < 1 {
		limit = DefaultUserListLimit
	}
	if limit > MaxUserListLimit {
		limit = MaxUserListLimit
	}

	users, err := s.userRepo.ListUsers(ctx, repository.UserFilter{
		Search:    strings.TrimSpace(query.Search),
		Sort:      sort,
		Limit:     limit,
		ExcludeID: viewerID,
	})
	if err != nil {
		return nil, err
	}

	items := make([]models.UserListItem, 0, len(users))
	for _, user := range users {
		items = append(items, models.UserListItem{
			ID:             user.UserID,
			Name:           user.Name,
			Email:          user.Email,
			Bio:            user.Bio,
			ProfilePicture: user.ProfilePicture,
			FollowersCount: len(user.Followers),
			FollowingCount: len(user.Following),
			PostsCount:     user.PostsCount,
			IsFollowing:    user.IsFollowedBy(viewerID),
			CreatedAt:      user.CreatedAt,
		})
	}

	return items, nil
}

func (s *userService) ToggleFollow(ctx context.Context, followerID, targetID string) (*models.FollowResult, error) {
	if followerID == targetID {
		return nil, ErrSelfFollow
	}

	following, err := s.userRepo.ToggleFollow(ctx, followerID, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	target, err := s.getUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	s.profiles.Invalidate(followerID, targetID)

	result := &models.FollowResult{
		Message:        MessageUnfollowed,
		IsFollowing:    following,
		FollowersCount: len(target.Followers),
	}
	eventType := events.UserUnfollowed
	if following {
		result.Message = MessageFollowed
		eventType = events.UserFollowed
	}
	s.events.Publish(eventType, events.Event{ActorID: followerID, TargetID: targetID})

	return result, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.UserProfile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(input.Name)
	user.Bio = strings.TrimSpace(input.Bio)

	return s.saveProfile(ctx, user)
}

// UpdateProfilePicture stores the new avatar and drops the previous one from storage.
func (s *userService) UpdateProfilePicture(ctx context.Context, userID string, upload ImageUpload) (*models.UserProfile, error) {
	if s.storage == nil {
		return nil, ErrUploadsDisabled
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	_, url, err := s.storage.UploadImage(ctx, storage.FolderAvatars, userID, upload.File, upload.Size)
	if err != nil {
		return nil, err
	}

	previous := user.ProfilePicture
	user.ProfilePicture = url

	profile, err := s.saveProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectName, ok := s.storage.ObjectNameFromURL(previous); ok && storage.OwnedBy(objectName, storage.FolderAvatars, userID) {
		if err = s.storage.DeleteImage(ctx, objectName); err != nil {
			log.Printf("Не удалось удалить старый аватар %s: %v", objectName, err)
		}
	}

	return profile, nil
}

func (s *userService) saveProfile(ctx context.Context, user *models.User) (*models.UserProfile, error) {
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.profiles.Invalidate(user.UserID)

	return s.buildProfile(ctx, user)
}
