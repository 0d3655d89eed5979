package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"socialhub/internal/models"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `user_id, name, email, password_hash, bio, profile_picture, followers, following, posts_count, created_at`

const (
	insertUserQuery = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	selectUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	selectUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	selectSummariesQuery   = `SELECT user_id, name, email, profile_picture FROM users WHERE user_id = ANY($1)`
	listUsersQuery         = `
		SELECT ` + userColumns + ` FROM users
		WHERE user_id <> $1 AND ($2 = '' OR name ILIKE $3 OR email ILIKE $3)
		ORDER BY %s
		LIMIT $4
	`
	updateProfileQuery = `
		UPDATE users
		SET name = $1, bio = $2, profile_picture = $3
		WHERE user_id = $4
	`
	isFollowingQuery     = `SELECT $2::text = ANY(followers) FROM users WHERE user_id = $1 FOR UPDATE`
	addFollowerQuery     = `UPDATE users SET followers = array_append(followers, $2::text) WHERE user_id = $1`
	removeFollowerQuery  = `UPDATE users SET followers = array_remove(followers, $2::text) WHERE user_id = $1`
	addFollowingQuery    = `UPDATE users SET following = array_append(following, $2::text) WHERE user_id = $1`
	removeFollowingQuery = `UPDATE users SET following = array_remove(following, $2::text) WHERE user_id = $1`
	incPostsCountQuery   = `UPDATE users SET posts_count = GREATEST(posts_count + $1, 0) WHERE user_id = $2`
	setPostsCountQuery   = `UPDATE users SET posts_count = $1 WHERE user_id = $2 AND posts_count = $3`
	selectPostsCounts    = `SELECT user_id, posts_count FROM users`
	countUsersQuery      = `SELECT COUNT(*) FROM users`
)

var userOrderBy = map[string]string{
	SortNewest:    "created_at DESC",
	SortName:      "LOWER(name) ASC, created_at DESC",
	SortFollowers: "COALESCE(array_length(followers, 1), 0) DESC, created_at DESC",
	SortPosts:     "posts_count DESC, created_at DESC",
}

type userRow struct {
	UserID         string         `db:"user_id"`
	Name           string         `db:"name"`
	Email          string         `db:"email"`
	PasswordHash   string         `db:"password_hash"`
	Bio            string         `db:"bio"`
	ProfilePicture string         `db:"profile_picture"`
	Followers      pq.StringArray `db:"followers"`
	Following      pq.StringArray `db:"following"`
	PostsCount     int            `db:"posts_count"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (row userRow) toModel() *models.User {
	return &models.User{
		UserID:         row.UserID,
		Name:           row.Name,
		Email:          row.Email,
		PasswordHash:   row.PasswordHash,
		Bio:            row.Bio,
		ProfilePicture: row.ProfilePicture,
		Followers:      nonNil(row.Followers),
		Following:      nonNil(row.Following),
		PostsCount:     row.PostsCount,
		CreatedAt:      row.CreatedAt,
	}
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	// create password hash
	hashedPassword, err := hashPassword(password)
	if err != nil {
		return err
	}

	// create user id
	user.UserID = uuid.New().String()
	user.PasswordHash = hashedPassword
	user.Followers = nonNil(user.Followers)
	user.Following = nonNil(user.Following)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, insertUserQuery,
		user.UserID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Bio,
		user.ProfilePicture,
		pq.Array(user.Followers),
		pq.Array(user.Following),
		user.PostsCount,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return nil
}

func (r *userRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	var row userRow

	err := r.db.GetContext(ctx, &row, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	return row.toModel(), nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return r.getOne(ctx, selectUserByIDQuery, userID)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUserByEmailQuery, email)
}

func (r *userRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	return verifyPassword(user, err, password)
}

func (r *userRepository) GetSummaries(ctx context.Context, userIDs []string) ([]models.UserSummary, error) {
	if len(userIDs) == 0 {
		return []models.UserSummary{}, nil
	}

	var summaries []models.UserSummary
	err := r.db.SelectContext(ctx, &summaries, selectSummariesQuery, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователей: %w", err)
	}

	return summaries, nil
}

// escapeLike quotes the ILIKE wildcards so the search is a plain substring match.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *userRepository) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error) {
	orderBy, ok := userOrderBy[filter.Sort]
	if !ok {
		orderBy = userOrderBy[SortNewest]
	}

	query := fmt.Sprintf(listUsersQuery, orderBy)
	pattern := "%" + escapeLike(filter.Search) + "%"

	var rows []userRow
	err := r.db.SelectContext(ctx, &rows, query, filter.ExcludeID, filter.Search, pattern, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске пользователей: %w", err)
	}

	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *row.toModel())
	}

	return users, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	result, err := r.db.ExecContext(ctx, updateProfileQuery, user.Name, user.Bio, user.ProfilePicture, user.UserID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении пользователя: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ToggleFollow flips followerID in targetID's followers and the mirror entry in
// followerID's following list inside one transaction. Returns the new state.
func (r *userRepository) ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	var following bool
	err = tx.GetContext(ctx, &following, isFollowingQuery, targetID, followerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("ошибка при проверке подписки: %w", err)
	}

	followersQuery, followingQuery := addFollowerQuery, addFollowingQuery
	if following {
		followersQuery, followingQuery = removeFollowerQuery, removeFollowingQuery
	}

	if _, err = tx.ExecContext(ctx, followersQuery, targetID, followerID); err != nil {
		return false, fmt.Errorf("ошибка при обновлении подписчиков: %w", err)
	}

	if _, err = tx.ExecContext(ctx, followingQuery, followerID, targetID); err != nil {
		return false, fmt.Errorf("ошибка при обновлении подписок: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return !following, nil
}

func (r *userRepository) IncrementPostsCount(ctx context.Context, userID string, delta int) error {
	_, err := r.db.ExecContext(ctx, incPostsCountQuery, delta, userID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении счетчика постов: %w", err)
	}
	return nil
}

func (r *userRepository) GetPostsCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		UserID     string `db:"user_id"`
		PostsCount int    `db:"posts_count"`
	}

	if err := r.db.SelectContext(ctx, &rows, selectPostsCounts); err != nil {
		return nil, fmt.Errorf("ошибка при получении счетчиков постов: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.PostsCount
	}

	return counts, nil
}

func (r *userRepository) SetPostsCount(ctx context.Context, userID string, expected, count int) (bool, error) {
	result, err := r.db.ExecContext(ctx, setPostsCountQuery, count, userID, expected)
	if err != nil {
		return false, fmt.Errorf("ошибка при обновлении счетчика постов: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ошибка при получении количества обновленных строк: %w", err)
	}
	return rows > 0, nil
}

func (r *userRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64

	if err := r.db.GetContext(ctx, &count, countUsersQuery); err != nil {
		return 0, fmt.Errorf("ошибка при подсчете пользователей: %w", err)
	}

	return count, nil
}
