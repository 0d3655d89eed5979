package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"socialhub/internal/models"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection = "users"
	PostsCollection = "posts"
)

var mongoUserSort = map[string]bson.D{
	SortNewest:    {{Key: "createdAt", Value: -1}},
	SortName:      {{Key: "nameLower", Value: 1}, {Key: "createdAt", Value: -1}},
	SortFollowers: {{Key: "followersCount", Value: -1}, {Key: "createdAt", Value: -1}},
	SortPosts:     {{Key: "postsCount", Value: -1}, {Key: "createdAt", Value: -1}},
}

type mongoUserRepository struct {
	users *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{users: db.Collection(UsersCollection)}
}

func (r *mongoUserRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	hashedPassword, err := hashPassword(password)
	if err != nil {
		return err
	}

	user.UserID = primitive.NewObjectID().Hex()
	user.PasswordHash = hashedPassword
	user.Followers = nonNil(user.Followers)
	user.Following = nonNil(user.Following)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	if _, err = r.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User

	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	user.Followers = nonNil(user.Followers)
	user.Following = nonNil(user.Following)
	return &user, nil
}

func (r *mongoUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": userID})
}

func (r *mongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	return verifyPassword(user, err, password)
}

func (r *mongoUserRepository) GetSummaries(ctx context.Context, userIDs []string) ([]models.UserSummary, error) {
	if len(userIDs) == 0 {
		return []models.UserSummary{}, nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "profilePicture": 1})
	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователей: %w", err)
	}

	var summaries []models.UserSummary
	if err = cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("ошибка при чтении пользователей: %w", err)
	}

	return summaries, nil
}

func (r *mongoUserRepository) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error) {
	match := bson.M{"_id": bson.M{"$ne": filter.ExcludeID}}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		match["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
		}
	}

	sortBy, ok := mongoUserSort[filter.Sort]
	if !ok {
		sortBy = mongoUserSort[SortNewest]
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.M{
			"followersCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$followers", bson.A{}}}},
			"nameLower":      bson.M{"$toLower": "$name"},
		}}},
		{{Key: "$sort", Value: sortBy}},
		{{Key: "$limit", Value: filter.Limit}},
		{{Key: "$project", Value: bson.M{"password": 0, "followersCount": 0, "nameLower": 0}}},
	}

	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске пользователей: %w", err)
	}

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("ошибка при чтении пользователей: %w", err)
	}

	for i := range users {
		users[i].Followers = nonNil(users[i].Followers)
		users[i].Following = nonNil(users[i].Following)
	}

	return users, nil
}

func (r *mongoUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	update := bson.M{"$set": bson.M{
		"name":           user.Name,
		"bio":            user.Bio,
		"profilePicture": user.ProfilePicture,
	}}

	result, err := r.users.UpdateOne(ctx, bson.M{"_id": user.UserID}, update)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении пользователя: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// ToggleFollow updates both users with two separate writes; a crash between
// them leaves the lists out of step.
func (r *mongoUserRepository) ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error) {
	target, err := r.GetUserByID(ctx, targetID)
	if err != nil {
		return false, err
	}

	op := "$addToSet"
	following := target.IsFollowedBy(followerID)
	if following {
		op = "$pull"
	}

	_, err = r.users.UpdateOne(ctx, bson.M{"_id": targetID}, bson.M{op: bson.M{"followers": followerID}})
	if err != nil {
		return false, fmt.Errorf("ошибка при обновлении подписчиков: %w", err)
	}

	_, err = r.users.UpdateOne(ctx, bson.M{"_id": followerID}, bson.M{op: bson.M{"following": targetID}})
	if err != nil {
		return false, fmt.Errorf("ошибка при обновлении подписок: %w", err)
	}

	return !following, nil
}

func (r *mongoUserRepository) IncrementPostsCount(ctx context.Context, userID string, delta int) error {
	update := bson.A{
		bson.M{"$set": bson.M{"postsCount": bson.M{
			"$max": bson.A{0, bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$postsCount", 0}}, delta}}},
		}}},
	}

	if _, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		return fmt.Errorf("ошибка при обновлении счетчика постов: %w", err)
	}

	return nil
}

func (r *mongoUserRepository) GetPostsCounts(ctx context.Context) (map[string]int, error) {
	opts := options.Find().SetProjection(bson.M{"postsCount": 1})
	cursor, err := r.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении счетчиков постов: %w", err)
	}

	var rows []struct {
		UserID     string `bson:"_id"`
		PostsCount int    `bson:"postsCount"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("ошибка при чтении счетчиков постов: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.PostsCount
	}

	return counts, nil
}

func (r *mongoUserRepository) SetPostsCount(ctx context.Context, userID string, expected, count int) (bool, error) {
	result, err := r.users.UpdateOne(ctx,
		bson.M{"_id": userID, "postsCount": expected},
		bson.M{"$set": bson.M{"postsCount": count}},
	)
	if err != nil {
		return false, fmt.Errorf("ошибка при обновлении счетчика постов: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (r *mongoUserRepository) CountUsers(ctx context.Context) (int64, error) {
	count, err := r.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("ошибка при подсчете пользователей: %w", err)
	}
	return count, nil
}
