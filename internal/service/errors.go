package service

import "errors"

// Messages of these errors are returned to API clients as is.
var (
	ErrUserExists         = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrInvalidToken       = errors.New("Token is not valid")
	ErrUserNotFound       = errors.New("User not found")
	ErrPostNotFound       = errors.New("Post not found")
	ErrCommentNotFound    = errors.New("Comment not found")
	ErrForbidden          = errors.New("Not authorized")
	ErrSelfFollow         = errors.New("You cannot follow yourself")
	ErrInvalidSort        = errors.New("Invalid sort option")
	ErrUploadsDisabled    = errors.New("Image uploads are not available")
)
