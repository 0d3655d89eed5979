package repository

import (
	"context"
	"errors"
	"fmt"
	"socialhub/internal/models"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

type mongoPostRepository struct {
	posts *mongo.Collection
}

func NewMongoPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{posts: db.Collection(PostsCollection)}
}

func normalizePost(post *models.Post) {
	post.Likes = nonNil(post.Likes)
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.PostID == "" {
		post.PostID = primitive.NewObjectID().Hex()
	}

	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	normalizePost(post)

	if _, err := r.posts.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("ошибка при создании поста: %w", err)
	}

	return nil
}

func (r *mongoPostRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post

	if err := r.posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при получении поста: %w", err)
	}

	normalizePost(&post)
	return &post, nil
}

func (r *mongoPostRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении постов: %w", err)
	}

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("ошибка при чтении постов: %w", err)
	}

	for i := range posts {
		normalizePost(&posts[i])
	}

	return posts, nil
}

func (r *mongoPostRepository) List(ctx context.Context, offset, limit int) ([]models.Post, error) {
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoPostRepository) ListByAuthor(ctx context.Context, authorID string, limit int) ([]models.Post, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	return r.find(ctx, bson.M{"author": authorID}, opts)
}

func (r *mongoPostRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.posts.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("ошибка при подсчете постов: %w", err)
	}
	return count, nil
}

func (r *mongoPostRepository) CountByAuthor(ctx context.Context) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$author", "posts": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("ошибка при подсчете постов по авторам: %w", err)
	}

	var rows []struct {
		AuthorID string `bson:"_id"`
		Posts    int    `bson:"posts"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("ошибка при чтении счетчиков: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.AuthorID] = row.Posts
	}

	return counts, nil
}

// ToggleLike tries to pull the like first; if nothing matched the user had not
// liked the post yet, so the id is added instead.
func (r *mongoPostRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	pulled, err := r.posts.UpdateOne(ctx,
		bson.M{"_id": postID, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}},
	)
	if err != nil {
		return false, fmt.Errorf("ошибка при обновлении лайков: %w", err)
	}
	if pulled.MatchedCount > 0 {
		return false, nil
	}

	added, err := r.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$addToSet": bson.M{"likes": userID}},
	)
	if err != nil {
		return false, fmt.Errorf("ошибка при обновлении лайков: %w", err)
	}
	if added.MatchedCount == 0 {
		return false, ErrNotFound
	}

	return true, nil
}

func (r *mongoPostRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	if comment.CommentID == "" {
		comment.CommentID = primitive.NewObjectID().Hex()
	}

	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": now},
	}

	result, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return fmt.Errorf("ошибка при добавлении комментария: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *mongoPostRepository) UpdateComment(ctx context.Context, postID, commentID, text string, updatedAt time.Time) error {
	filter := bson.M{"_id": postID, "comments._id": commentID}
	update := bson.M{"$set": bson.M{
		"comments.$.text":      text,
		"comments.$.updatedAt": updatedAt,
		"updatedAt":            updatedAt,
	}}

	result, err := r.posts.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении комментария: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, postID string) error {
	result, err := r.posts.DeleteOne(ctx, bson.M{"_id": postID})
	if err != nil {
		return fmt.Errorf("ошибка при удалении поста: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
