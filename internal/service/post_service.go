package service

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"socialhub/internal/cache"
	"socialhub/internal/config"
	"socialhub/internal/events"
	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/storage"
	"strings"
	"time"
)

const (
	MessagePostLiked   = "Post liked"
	MessagePostUnliked = "Post unliked"
)

// ImageUpload is an uploaded file as received from the client.
type ImageUpload struct {
	File io.Reader
	Size int64
}

type CreatePostInput struct {
	AuthorID string
	Content  string
	Image    string
	Upload   *ImageUpload
}

type PostService interface {
	Feed(ctx context.Context, page, limit int) (*models.FeedPage, error)
	GetPost(ctx context.Context, postID string) (*models.PostView, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.PostView, error)
	CreatePost(ctx context.Context, input CreatePostInput) (*models.PostView, error)
	ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error)
	AddComment(ctx context.Context, postID, userID, text string) (*models.PostView, error)
	EditComment(ctx context.Context, postID, commentID, userID, text string) (*models.PostView, error)
	DeletePost(ctx context.Context, postID, userID string) error
}

type postService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	storage  storage.Storage
	profiles cache.ProfileCache
	events   events.Publisher
	cfg      *config.Config
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	storage storage.Storage,
	profiles cache.ProfileCache,
	publisher events.Publisher,
	cfg *config.Config,
) PostService {
	return &postService{
		postRepo: postRepo,
		userRepo: userRepo,
		storage:  storage,
		profiles: profiles,
		events:   publisher,
		cfg:      cfg,
	}
}

// pageBounds clamps page and limit to the configured feed bounds.
func pageBounds(page, limit int, feed config.Feed) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = feed.DefaultLimit
	}
	if limit > feed.MaxLimit {
		limit = feed.MaxLimit
	}
	return page, limit
}

func (p *postService) Feed(ctx context.Context, page, limit int) (*models.FeedPage, error) {
	page, limit = pageBounds(page, limit, p.cfg.Feed)

	posts, err := p.postRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	total, err := p.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	views, err := populatePosts(ctx, p.userRepo, posts)
	if err != nil {
		return nil, err
	}

	return &models.FeedPage{
		Posts:       views,
		Total:       total,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage: page,
		Limit:       limit,
	}, nil
}

func (p *postService) getPost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (p *postService) GetPost(ctx context.Context, postID string) (*models.PostView, error) {
	post, err := p.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	views, err := populatePosts(ctx, p.userRepo, []models.Post{*post})
	if err != nil {
		return nil, err
	}

	return &views[0], nil
}

func (p *postService) ListByAuthor(ctx context.Context, authorID string) ([]models.PostView, error) {
	if _, err := p.userRepo.GetUserByID(ctx, authorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	posts, err := p.postRepo.ListByAuthor(ctx, authorID, 0)
	if err != nil {
		return nil, err
	}

	return populatePosts(ctx, p.userRepo, posts)
}

func (p *postService) CreatePost(ctx context.Context, input CreatePostInput) (*models.PostView, error) {
	post := &models.Post{
		AuthorID: input.AuthorID,
		Content:  strings.TrimSpace(input.Content),
		Image:    strings.TrimSpace(input.Image),
	}

	if input.Upload != nil {
		if p.storage == nil {
			return nil, ErrUploadsDisabled
		}
		objectName, url, err := p.storage.UploadImage(ctx, storage.FolderPosts, input.AuthorID, input.Upload.File, input.Upload.Size)
		if err != nil {
			return nil, err
		}
		post.Image = url

		if err = p.postRepo.Create(ctx, post); err != nil {
			if delErr := p.storage.DeleteImage(ctx, objectName); delErr != nil {
				log.Printf("Не удалось удалить загруженное изображение %s: %v", objectName, delErr)
			}
			return nil, err
		}
	} else if err := p.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if err := p.userRepo.IncrementPostsCount(ctx, input.AuthorID, 1); err != nil {
		log.Printf("Не удалось увеличить счетчик постов пользователя %s: %v", input.AuthorID, err)
	}

	p.profiles.Invalidate(input.AuthorID)
	p.events.Publish(events.PostCreated, events.Event{ActorID: input.AuthorID, PostID: post.PostID})

	return p.GetPost(ctx, post.PostID)
}

func (p *postService) ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error) {
	liked, err := p.postRepo.ToggleLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	view, err := p.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	result := &models.LikeResult{Message: MessagePostUnliked, Liked: liked, Post: *view}
	eventType := events.PostUnliked
	if liked {
		result.Message = MessagePostLiked
		eventType = events.PostLiked
	}

	p.profiles.Invalidate(view.Author.ID)
	p.events.Publish(eventType, events.Event{ActorID: userID, TargetID: view.Author.ID, PostID: postID})

	return result, nil
}

func (p *postService) AddComment(ctx context.Context, postID, userID, text string) (*models.PostView, error) {
	comment := &models.Comment{
		UserID: userID,
		Text:   strings.TrimSpace(text),
	}

	if err := p.postRepo.AddComment(ctx, postID, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	view, err := p.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	p.profiles.Invalidate(view.Author.ID)
	p.events.Publish(events.PostCommented, events.Event{ActorID: userID, TargetID: view.Author.ID, PostID: postID})

	return view, nil
}

// EditComment lets only the comment's author change its text.
func (p *postService) EditComment(ctx context.Context, postID, commentID, userID, text string) (*models.PostView, error) {
	post, err := p.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := post.FindComment(commentID)
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	if comment.UserID != userID {
		return nil, ErrForbidden
	}

	err = p.postRepo.UpdateComment(ctx, postID, commentID, strings.TrimSpace(text), time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	return p.GetPost(ctx, postID)
}

// DeletePost removes the post, decrements the author's counter and drops a stored image.
func (p *postService) DeletePost(ctx context.Context, postID, userID string) error {
	post, err := p.getPost(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != userID {
		return ErrForbidden
	}

	if err = p.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if err = p.userRepo.IncrementPostsCount(ctx, post.AuthorID, -1); err != nil {
		log.Printf("Не удалось уменьшить счетчик постов пользователя %s: %v", post.AuthorID, err)
	}

	p.removeImage(ctx, post.AuthorID, post.Image)
	p.profiles.Invalidate(post.AuthorID)
	p.events.Publish(events.PostDeleted, events.Event{ActorID: userID, PostID: postID})

	return nil
}

// removeImage deletes the post image only when it lives under the author's own posts folder.
// Image URLs supplied in JSON can point anywhere in the bucket.
func (p *postService) removeImage(ctx context.Context, authorID, url string) {
	if p.storage == nil || url == "" {
		return
	}

	objectName, ok := p.storage.ObjectNameFromURL(url)
	if !ok || !storage.OwnedBy(objectName, storage.FolderPosts, authorID) {
		return
	}

	if err := p.storage.DeleteImage(ctx, objectName); err != nil {
		log.Printf("Не удалось удалить изображение %s: %v", objectName, err)
	}
}
