package repository

import (
	"errors"
	"fmt"
	"socialhub/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for new hashes.
var PasswordCost = 12

func hashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("ошибка при хешировании пароля: %w", err)
	}
	return string(hashedPassword), nil
}

func checkPassword(user *models.User, password string) (*models.User, error) {
	// checking that the password hash is the same
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// verifyPassword resolves an email lookup into either the user or ErrInvalidCredentials.
func verifyPassword(user *models.User, lookupErr error, password string) (*models.User, error) {
	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, lookupErr
	}
	return checkPassword(user, password)
}
