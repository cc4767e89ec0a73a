package repository

import (
	"context"

	"github.com/zancompute/zanconfig/internal/datastore/entities"
)

// UserRepository reads and maintains dashboard login accounts.
type UserRepository interface {
	FindByLogin(ctx context.Context, login string) (*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) error
	UpdateProfile(ctx context.Context, id uint, username, email string) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}
