package repository

import (
	"context"
	"errors"
	"socialhub/internal/models"
	"time"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound           = errors.New("документ не найден")
	ErrEmailTaken         = errors.New("email уже занят")
	ErrInvalidCredentials = errors.New("неверный email или пароль")
)

const (
	SortNewest    = "newest"
	SortName      = "name"
	SortFollowers = "followers"
	SortPosts     = "posts"
)

// UserFilter narrows ListUsers. Empty Search matches everyone.
type UserFilter struct {
	Search    string
	Sort      string
	Limit     int
	ExcludeID string
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	GetSummaries(ctx context.Context, userIDs []string) ([]models.UserSummary, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error)
	IncrementPostsCount(ctx context.Context, userID string, delta int) error
	GetPostsCounts(ctx context.Context) (map[string]int, error)
	// SetPostsCount writes count only while the stored value still equals expected.
	SetPostsCount(ctx context.Context, userID string, expected, count int) (bool, error)
	CountUsers(ctx context.Context) (int64, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	List(ctx context.Context, offset, limit int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]models.Post, error)
	Count(ctx context.Context) (int64, error)
	CountByAuthor(ctx context.Context) (map[string]int, error)
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	AddComment(ctx context.Context, postID string, comment *models.Comment) error
	UpdateComment(ctx context.Context, postID, commentID, text string, updatedAt time.Time) error
	Delete(ctx context.Context, postID string) error
}

type Repository struct {
	User UserRepository
	Post PostRepository
}

// NewRepository builds the PostgreSQL-backed repositories.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User: NewUserRepository(db),
		Post: NewPostRepository(db),
	}
}

// NewMongoRepository builds the MongoDB-backed repositories.
func NewMongoRepository(db *mongo.Database) *Repository {
	return &Repository{
		User: NewMongoUserRepository(db),
		Post: NewMongoPostRepository(db),
	}
}

// nonNil keeps reference lists serialized as [] rather than null.
func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
