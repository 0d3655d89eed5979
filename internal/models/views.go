package models

import "time"

type LikeSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CommentAuthor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
}

type CommentView struct {
	ID        string        `json:"id"`
	User      CommentAuthor `json:"user"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// PostView is a post with its author, likers and comment authors populated.
type PostView struct {
	ID            string        `json:"id"`
	Content       string        `json:"content"`
	Image         string        `json:"image"`
	Author        UserSummary   `json:"author"`
	Likes         []LikeSummary `json:"likes"`
	LikesCount    int           `json:"likesCount"`
	Comments      []CommentView `json:"comments"`
	CommentsCount int           `json:"commentsCount"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type FeedPage struct {
	Posts       []PostView `json:"posts"`
	Total       int64      `json:"total"`
	TotalPages  int        `json:"totalPages"`
	CurrentPage int        `json:"currentPage"`
	Limit       int        `json:"limit"`
}

type LikeResult struct {
	Message string   `json:"message"`
	Liked   bool     `json:"liked"`
	Post    PostView `json:"post"`
}

type PostSummary struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Image         string    `json:"image"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UserProfile is the public profile. Posts is only filled for profile pages.
type UserProfile struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Bio            string        `json:"bio"`
	ProfilePicture string        `json:"profilePicture"`
	Followers      []UserSummary `json:"followers"`
	Following      []UserSummary `json:"following"`
	FollowersCount int           `json:"followersCount"`
	FollowingCount int           `json:"followingCount"`
	PostsCount     int           `json:"postsCount"`
	Posts          []PostSummary `json:"posts,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

type UserListItem struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	FollowersCount int       `json:"followersCount"`
	FollowingCount int       `json:"followingCount"`
	PostsCount     int       `json:"postsCount"`
	IsFollowing    bool      `json:"isFollowing"`
	CreatedAt      time.Time `json:"createdAt"`
}

type FollowResult struct {
	Message        string `json:"message"`
	IsFollowing    bool   `json:"isFollowing"`
	FollowersCount int    `json:"followersCount"`
}

type Stats struct {
	Users int64 `json:"users"`
	Posts int64 `json:"posts"`
}
