package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"task-tree-system/models"
	"task-tree-system/stores"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// AuthService owns credential checks. Raw passwords stop here: everything
// past this boundary only ever sees the hash.
type AuthService struct {
	store stores.Backend
}

func NewAuthService(store stores.Backend) *AuthService {
	return &AuthService{store: store}
}

// HashPassword is also used when seeding the default account.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) Register(username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, validationErr("username and password are required")
	}
	if n := utf8.RuneCountInString(username); n < 3 || n > 20 {
		return nil, validationErr("username must be between 3 and 20 characters")
	}
	if utf8.RuneCountInString(password) < 6 {
		return nil, validationErr("password must be at least 6 characters")
	}

	_, err := s.store.UserByUsername(username)
	if err == nil {
		return nil, ErrDuplicateUsername
	}
	if !errors.Is(err, stores.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Points:       0,
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials. Unknown user and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, validationErr("username and password are required")
	}

	user, err := s.store.UserByUsername(username)
	if errors.Is(err, stores.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
