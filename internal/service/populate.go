package service

import (
	"context"
	"socialhub/internal/models"
	"socialhub/internal/repository"
)

type userIndex map[string]models.UserSummary

// summary falls back to a bare id when the user no longer exists.
func (idx userIndex) summary(userID string) models.UserSummary {
	if s, ok := idx[userID]; ok {
		return s
	}
	return models.UserSummary{ID: userID}
}

func (idx userIndex) summaries(userIDs []string) []models.UserSummary {
	result := make([]models.UserSummary, 0, len(userIDs))
	for _, id := range userIDs {
		result = append(result, idx.summary(id))
	}
	return result
}

// loadUsers fetches one summary per distinct id across all lists.
func loadUsers(ctx context.Context, users repository.UserRepository, lists ...[]string) (userIndex, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; ok || id == "" {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	found, err := users.GetSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	idx := make(userIndex, len(found))
	for _, s := range found {
		idx[s.ID] = s
	}
	return idx, nil
}

func referencedUsers(posts []models.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.AuthorID)
		ids = append(ids, post.Likes...)
		for _, c := range post.Comments {
			ids = append(ids, c.UserID)
		}
	}
	return ids
}

func buildPostView(post models.Post, idx userIndex) models.PostView {
	likes := make([]models.LikeSummary, 0, len(post.Likes))
	for _, id := range post.Likes {
		s := idx.summary(id)
		likes = append(likes, models.LikeSummary{ID: s.ID, Name: s.Name})
	}

	comments := make([]models.CommentView, 0, len(post.Comments))
	for _, c := range post.Comments {
		s := idx.summary(c.UserID)
		comments = append(comments, models.CommentView{
			ID:        c.CommentID,
			User:      models.CommentAuthor{ID: s.ID, Name: s.Name, ProfilePicture: s.ProfilePicture},
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}

	return models.PostView{
		ID:            post.PostID,
		Content:       post.Content,
		Image:         post.Image,
		Author:        idx.summary(post.AuthorID),
		Likes:         likes,
		LikesCount:    len(likes),
		Comments:      comments,
		CommentsCount: len(comments),
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
}

func populatePosts(ctx context.Context, users repository.UserRepository, posts []models.Post) ([]models.PostView, error) {
	idx, err := loadUsers(ctx, users, referencedUsers(posts))
	if err != nil {
		return nil, err
	}

	views := make([]models.PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, buildPostView(post, idx))
	}
	return views, nil
}

func postSummary(post models.Post) models.PostSummary {
	return models.PostSummary{
		ID:            post.PostID,
		Content:       post.Content,
		Image:         post.Image,
		LikesCount:    len(post.Likes),
		CommentsCount: len(post.Comments),
		CreatedAt:     post.CreatedAt,
	}
}
