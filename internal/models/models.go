package models

import (
	"time"
)

// User is the stored user document. Followers and Following hold user ids.
type User struct {
	UserID         string    `json:"id" bson:"_id"`
	Name           string    `json:"name" bson:"name"`
	Email          string    `json:"email" bson:"email"`
	PasswordHash   string    `json:"-" bson:"password"`
	Bio            string    `json:"bio" bson:"bio"`
	ProfilePicture string    `json:"profilePicture" bson:"profilePicture"`
	Followers      []string  `json:"followers" bson:"followers"`
	Following      []string  `json:"following" bson:"following"`
	PostsCount     int       `json:"postsCount" bson:"postsCount"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// Post is the stored post document with its comments embedded.
type Post struct {
	PostID    string    `json:"id" bson:"_id"`
	AuthorID  string    `json:"author" bson:"author"`
	Content   string    `json:"content" bson:"content"`
	Image     string    `json:"image" bson:"image"`
	Likes     []string  `json:"likes" bson:"likes"`
	Comments  []Comment `json:"comments" bson:"comments"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Comment struct {
	CommentID string    `json:"id" bson:"_id"`
	UserID    string    `json:"user" bson:"user"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// FindComment returns the comment with the given id, or nil.
func (p *Post) FindComment(commentID string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].CommentID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

func (p *Post) IsLikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func (u *User) IsFollowedBy(userID string) bool {
	for _, id := range u.Followers {
		if id == userID {
			return true
		}
	}
	return false
}

// UserSummary is the projection used when a reference is populated.
type UserSummary struct {
	ID             string `json:"id" db:"user_id" bson:"_id"`
	Name           string `json:"name" db:"name" bson:"name"`
	Email          string `json:"email,omitempty" db:"email" bson:"email"`
	ProfilePicture string `json:"profilePicture" db:"profile_picture" bson:"profilePicture"`
}
