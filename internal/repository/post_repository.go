package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"socialhub/internal/models"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const postColumns = `post_id, author_id, content, image, likes, comments, created_at, updated_at`

const (
	insertPostQuery = `
		INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	selectPostByIDQuery   = `SELECT ` + postColumns + ` FROM posts WHERE post_id = $1`
	listPostsQuery        = `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	listPostsByAuthor     = `SELECT ` + postColumns + ` FROM posts WHERE author_id = $1 ORDER BY created_at DESC LIMIT NULLIF($2::int, 0)`
	countPostsQuery       = `SELECT COUNT(*) FROM posts`
	countByAuthorQuery    = `SELECT author_id, COUNT(*) AS posts FROM posts GROUP BY author_id`
	deletePostQuery       = `DELETE FROM posts WHERE post_id = $1`
	toggleLikeQuery       = `
		UPDATE posts
		SET likes = CASE WHEN $2::text = ANY(likes) THEN array_remove(likes, $2::text) ELSE array_append(likes, $2::text) END
		WHERE post_id = $1
		RETURNING $2::text = ANY(likes)
	`
	addCommentQuery    = `UPDATE posts SET comments = comments || $2::jsonb, updated_at = $3 WHERE post_id = $1`
	updateCommentQuery = `
		UPDATE posts SET comments = (
			SELECT jsonb_agg(
				CASE WHEN elem->>'id' = $2::text
					THEN elem || jsonb_build_object('text', $3::text, 'updatedAt', $4::timestamptz)
					ELSE elem
				END ORDER BY pos)
			FROM jsonb_array_elements(comments) WITH ORDINALITY AS t(elem, pos)
		), updated_at = $4
		WHERE post_id = $1 AND comments @> jsonb_build_array(jsonb_build_object('id', $2::text))
	`
)

// commentList stores embedded comments in a JSONB column.
type commentList []models.Comment

func (c *commentList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*c = commentList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("неподдерживаемый тип комментариев: %T", src)
	}

	var comments []models.Comment
	if err := json.Unmarshal(data, &comments); err != nil {
		return fmt.Errorf("ошибка разбора комментариев: %w", err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	*c = comments
	return nil
}

func (c commentList) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]models.Comment(c))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

type postRow struct {
	PostID    string         `db:"post_id"`
	AuthorID  string         `db:"author_id"`
	Content   string         `db:"content"`
	Image     string         `db:"image"`
	Likes     pq.StringArray `db:"likes"`
	Comments  commentList    `db:"comments"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (row postRow) toModel() models.Post {
	comments := []models.Comment(row.Comments)
	if comments == nil {
		comments = []models.Comment{}
	}

	return models.Post{
		PostID:    row.PostID,
		AuthorID:  row.AuthorID,
		Content:   row.Content,
		Image:     row.Image,
		Likes:     nonNil(row.Likes),
		Comments:  comments,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type PostRepositoryImpl struct {
	DB *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}

	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Likes = nonNil(post.Likes)
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}

	_, err := r.DB.ExecContext(ctx, insertPostQuery,
		post.PostID,
		post.AuthorID,
		post.Content,
		post.Image,
		pq.Array(post.Likes),
		commentList(post.Comments),
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка при создании поста: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	var row postRow

	err := r.DB.GetContext(ctx, &row, selectPostByIDQuery, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при получении поста: %w", err)
	}

	post := row.toModel()
	return &post, nil
}

func (r *PostRepositoryImpl) selectPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	var rows []postRow

	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("ошибка при получении постов: %w", err)
	}

	posts := make([]models.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toModel())
	}

	return posts, nil
}

func (r *PostRepositoryImpl) List(ctx context.Context, offset, limit int) ([]models.Post, error) {
	return r.selectPosts(ctx, listPostsQuery, limit, offset)
}

// ListByAuthor returns the author's posts newest first; limit 0 means all.
func (r *PostRepositoryImpl) ListByAuthor(ctx context.Context, authorID string, limit int) ([]models.Post, error) {
	return r.selectPosts(ctx, listPostsByAuthor, authorID, limit)
}

func (r *PostRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64

	if err := r.DB.GetContext(ctx, &count, countPostsQuery); err != nil {
		return 0, fmt.Errorf("ошибка при подсчете постов: %w", err)
	}

	return count, nil
}

func (r *PostRepositoryImpl) CountByAuthor(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		AuthorID string `db:"author_id"`
		Posts    int    `db:"posts"`
	}

	if err := r.DB.SelectContext(ctx, &rows, countByAuthorQuery); err != nil {
		return nil, fmt.Errorf("ошибка при подсчете постов по авторам: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.AuthorID] = row.Posts
	}

	return counts, nil
}

// ToggleLike adds or removes userID in one statement and reports whether the post is now liked.
func (r *PostRepositoryImpl) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	var liked bool

	err := r.DB.GetContext(ctx, &liked, toggleLikeQuery, postID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("ошибка при обновлении лайков: %w", err)
	}

	return liked, nil
}

func (r *PostRepositoryImpl) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	if comment.CommentID == "" {
		comment.CommentID = uuid.New().String()
	}

	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	result, err := r.DB.ExecContext(ctx, addCommentQuery, postID, commentList{*comment}, now)
	if err != nil {
		return fmt.Errorf("ошибка при добавлении комментария: %w", err)
	}

	return expectAffected(result)
}

func (r *PostRepositoryImpl) UpdateComment(ctx context.Context, postID, commentID, text string, updatedAt time.Time) error {
	result, err := r.DB.ExecContext(ctx, updateCommentQuery, postID, commentID, text, updatedAt)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении комментария: %w", err)
	}

	return expectAffected(result)
}

func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string) error {
	result, err := r.DB.ExecContext(ctx, deletePostQuery, postID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении поста: %w", err)
	}

	return expectAffected(result)
}

func expectAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке измененных строк: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
