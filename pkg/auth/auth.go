package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// UserStore is the part of the record store that login needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticate returns the user whose username and password match. Unknown
// users and wrong passwords both yield ErrInvalidCredentials.
func Authenticate(ctx context.Context, users UserStore, username, password string) (*models.User, error) {
	user, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin creates an admin account when the store has no users yet, so
// a fresh install can log in. It reports whether a user was created.
func EnsureAdmin(ctx context.Context, users UserStore, username, password string) (bool, error) {
	existing, err := users.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	if username == "" || password == "" {
		return false, errors.New("admin username and password are required to bootstrap an empty store")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	admin := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		FirstName:    "Admin",
		CreatedAt:    time.Now(),
	}
	if err := users.CreateUser(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}
