package repository

import (
	"context"

	"github.com/zancompute/zanconfig/internal/datastore/entities"
)

// ClientConfigRepository persists the three records of a client configuration.
// Companion rows are tied to their app details row by clientKey; rows written
// before keys existed are matched by clientName.
type ClientConfigRepository interface {
	// Writes
	Create(ctx context.Context, cfg *entities.ClientConfig) error
	Update(ctx context.Context, id uint, cfg *entities.ClientConfig) error
	Delete(ctx context.Context, id uint) (*entities.ClientAppDetails, error)

	// Composed reads
	Get(ctx context.Context, id uint) (*entities.ClientView, error)
	List(ctx context.Context) ([]entities.ClientView, error)

	// Raw companion listings
	ListOperatingConfigs(ctx context.Context) ([]entities.OperatingConfigRow, error)
	ListNotificationConfigs(ctx context.Context) ([]entities.NotificationConfigRow, error)
}
