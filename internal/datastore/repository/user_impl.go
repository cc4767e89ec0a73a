package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/zancompute/zanconfig/internal/datastore/entities"
	"github.com/zancompute/zanconfig/internal/errors"
)

// userRepository implements UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByLogin matches login against username or email, ignoring case.
// Returns ErrUserNotFound if no account matches.
func (r *userRepository) FindByLogin(ctx context.Context, login string) (*entities.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, ErrUserNotFound
	}
	var users []entities.User
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)", login, login).
		Order("id ASC").
		Limit(1).
		Find(&users).Error
	if err != nil {
		return nil, errors.Store(componentName, fmt.Errorf("failed to find user: %w", err))
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}

// FindByUsername matches username only, ignoring case. Returns
// ErrUserNotFound if no account matches.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUserNotFound
	}
	var users []entities.User
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", username).
		Order("id ASC").
		Limit(1).
		Find(&users).Error
	if err != nil {
		return nil, errors.Store(componentName, fmt.Errorf("failed to find user: %w", err))
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}

// Create inserts a new account.
func (r *userRepository) Create(ctx context.Context, user *entities.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return errors.Store(componentName, fmt.Errorf("failed to create user %q: %w", user.Username, err))
	}
	return nil
}

// UpdateProfile replaces the username and email of account id.
func (r *userRepository) UpdateProfile(ctx context.Context, id uint, username, email string) error {
	return r.update(ctx, id, map[string]any{"username": username, "email": email}, "profile")
}

// UpdatePassword replaces the stored password of account id.
func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return r.update(ctx, id, map[string]any{"password_hash": passwordHash}, "password")
}

func (r *userRepository) update(ctx context.Context, id uint, values map[string]any, what string) error {
	err := r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Updates(values).Error
	if err != nil {
		return errors.Store(componentName, fmt.Errorf("failed to update %s of user %d: %w", what, id, err))
	}
	return nil
}
