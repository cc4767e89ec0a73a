package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zancompute/zanconfig/internal/datastore/entities"
	"github.com/zancompute/zanconfig/internal/errors"
)

const (
	keyMatch    = "clientKey = ?"
	legacyMatch = "(clientKey IS NULL OR clientKey = '') AND clientName = ?"
)

// clientConfigRepository implements ClientConfigRepository.
type clientConfigRepository struct {
	db     *gorm.DB
	newKey func() string
}

// NewClientConfigRepository creates a new ClientConfigRepository.
func NewClientConfigRepository(db *gorm.DB) ClientConfigRepository {
	return &clientConfigRepository{db: db, newKey: uuid.NewString}
}

// Create inserts the three records under a fresh client key.
func (r *clientConfigRepository) Create(ctx context.Context, cfg *entities.ClientConfig) error {
	cfg.SetIdentity(cfg.App.ClientName, r.newKey())
	cfg.App.ID, cfg.Operating.ID, cfg.Notification.ID = 0, 0, 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cfg.App).Error; err != nil {
			return fmt.Errorf("failed to create app details: %w", err)
		}
		if err := tx.Create(&cfg.Operating).Error; err != nil {
			return fmt.Errorf("failed to create client details: %w", err)
		}
		if err := tx.Create(&cfg.Notification).Error; err != nil {
			return fmt.Errorf("failed to create notification configuration: %w", err)
		}
		return nil
	})
	if err != nil {
		return errors.Store(componentName, err)
	}
	return nil
}

// Update overwrites every field of the client's records. Legacy companions
// without a key are adopted by the stored name before the write, and a
// missing companion is created.
func (r *clientConfigRepository) Update(ctx context.Context, id uint, cfg *entities.ClientConfig) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findApp(tx, id)
		if err != nil {
			return err
		}

		key := current.ClientKey
		if key == "" {
			key = r.newKey()
		}
		cfg.SetIdentity(cfg.App.ClientName, key)
		cfg.App.ID = current.ID

		if err := tx.Model(&entities.ClientAppDetails{}).
			Where("id = ?", current.ID).
			Select("*").Omit("id").
			Updates(&cfg.App).Error; err != nil {
			return fmt.Errorf("failed to update app details %d: %w", id, err)
		}

		cfg.Operating.ID = 0
		if err := syncCompanion(tx, current.ClientName, key, &cfg.Operating); err != nil {
			return err
		}
		cfg.Notification.ID = 0
		return syncCompanion(tx, current.ClientName, key, &cfg.Notification)
	})
	return wrapStoreErr(err)
}

// Delete removes the client and its companions, returning the deleted app
// details row.
func (r *clientConfigRepository) Delete(ctx context.Context, id uint) (*entities.ClientAppDetails, error) {
	var deleted *entities.ClientAppDetails
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findApp(tx, id)
		if err != nil {
			return err
		}
		if err := deleteCompanions[entities.ClientDetails](tx, current); err != nil {
			return err
		}
		if err := deleteCompanions[entities.NotificationConfig](tx, current); err != nil {
			return err
		}
		if err := tx.Delete(&entities.ClientAppDetails{}, current.ID).Error; err != nil {
			return fmt.Errorf("failed to delete app details %d: %w", id, err)
		}
		deleted = current
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return deleted, nil
}

// Get returns the composed view of one client.
func (r *clientConfigRepository) Get(ctx context.Context, id uint) (*entities.ClientView, error) {
	db := r.db.WithContext(ctx)
	app, err := findApp(db, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	op, err := findCompanion[entities.ClientDetails](db, app)
	if err != nil {
		return nil, errors.Store(componentName, err)
	}
	notif, err := findCompanion[entities.NotificationConfig](db, app)
	if err != nil {
		return nil, errors.Store(componentName, err)
	}
	return &entities.ClientView{App: *app, Operating: op, Notification: notif}, nil
}

// List returns every client, newest first.
func (r *clientConfigRepository) List(ctx context.Context) ([]entities.ClientView, error) {
	db := r.db.WithContext(ctx)

	var apps []entities.ClientAppDetails
	if err := db.Order("id DESC").Find(&apps).Error; err != nil {
		return nil, errors.Store(componentName, fmt.Errorf("failed to list app details: %w", err))
	}
	var ops []entities.ClientDetails
	if err := db.Order("id ASC").Find(&ops).Error; err != nil {
		return nil, errors.Store(componentName, fmt.Errorf("failed to list client details: %w", err))
	}
	var notifs []entities.NotificationConfig
	if err := db.Order("id ASC").Find(&notifs).Error; err != nil {
		return nil, errors.Store(componentName, fmt.Errorf("failed to list notification configurations: %w", err))
	}

	opIdx := indexCompanions(ops, func(c *entities.ClientDetails) (string, string) { return c.ClientKey, c.ClientName })
	notifIdx := indexCompanions(notifs, func(c *entities.NotificationConfig) (string, string) { return c.ClientKey, c.ClientName })

	views := make([]entities.ClientView, 0, len(apps))
	for i := range apps {
		views = append(views, entities.ClientView{
			App:          apps[i],
			Operating:    opIdx.lookup(&apps[i]),
			Notification: notifIdx.lookup(&apps[i]),
		})
	}
	return views, nil
}

// ListOperatingConfigs returns every client_details row, newest first.
func (r *clientConfigRepository) ListOperatingConfigs(ctx context.Context) ([]entities.OperatingConfigRow, error) {
	var rows []entities.ClientDetails
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, errors.Store(componentName, fmt.Errorf("failed to list client details: %w", err))
	}
	owners, err := r.appOwners(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.OperatingConfigRow, 0, len(rows))
	for i := range rows {
		out = append(out, entities.OperatingConfigRow{
			ClientDetails: rows[i],
			ClientID:      owners.owner(rows[i].ClientKey, rows[i].ClientName),
		})
	}
	return out, nil
}

// ListNotificationConfigs returns every notificationconfiguration row, newest
// first.
func (r *clientConfigRepository) ListNotificationConfigs(ctx context.Context) ([]entities.NotificationConfigRow, error) {
	var rows []entities.NotificationConfig
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, errors.Store(componentName, fmt.Errorf("failed to list notification configurations: %w", err))
	}
	owners, err := r.appOwners(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.NotificationConfigRow, 0, len(rows))
	for i := range rows {
		out = append(out, entities.NotificationConfigRow{
			NotificationConfig: rows[i],
			ClientID:           owners.owner(rows[i].ClientKey, rows[i].ClientName),
		})
	}
	return out, nil
}

func findApp(tx *gorm.DB, id uint) (*entities.ClientAppDetails, error) {
	var apps []entities.ClientAppDetails
	if err := tx.Where("id = ?", id).Limit(1).Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("failed to get app details %d: %w", id, err)
	}
	if len(apps) == 0 {
		return nil, ErrClientNotFound
	}
	return &apps[0], nil
}

// findCompanion returns the newest companion sharing the app's key, falling
// back to a key-less row with the app's name.
func findCompanion[T any](tx *gorm.DB, app *entities.ClientAppDetails) (*T, error) {
	var rows []T
	if app.ClientKey != "" {
		if err := tx.Where(keyMatch, app.ClientKey).Order("id DESC").Limit(1).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get companion of client %d: %w", app.ID, err)
		}
		if len(rows) > 0 {
			return &rows[0], nil
		}
	}
	if err := tx.Where(legacyMatch, app.ClientName).Order("id DESC").Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get companion of client %d: %w", app.ID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// syncCompanion writes row to every companion carrying key, creating one when
// none exists. row must have a zero id.
func syncCompanion[T any](tx *gorm.DB, oldName, key string, row *T) error {
	if err := tx.Model(new(T)).Where(legacyMatch, oldName).Update("clientKey", key).Error; err != nil {
		return fmt.Errorf("failed to adopt legacy companion of %q: %w", oldName, err)
	}

	var count int64
	if err := tx.Model(new(T)).Where(keyMatch, key).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count companions of %q: %w", oldName, err)
	}
	if count == 0 {
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to create companion of %q: %w", oldName, err)
		}
		return nil
	}
	if err := tx.Model(new(T)).Where(keyMatch, key).Select("*").Omit("id").Updates(row).Error; err != nil {
		return fmt.Errorf("failed to update companion of %q: %w", oldName, err)
	}
	return nil
}

func deleteCompanions[T any](tx *gorm.DB, app *entities.ClientAppDetails) error {
	if app.ClientKey != "" {
		if err := tx.Where(keyMatch, app.ClientKey).Delete(new(T)).Error; err != nil {
			return fmt.Errorf("failed to delete companions of client %d: %w", app.ID, err)
		}
	}
	if err := tx.Where(legacyMatch, app.ClientName).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("failed to delete legacy companions of client %d: %w", app.ID, err)
	}
	return nil
}

// companionIndex resolves the companion of an app details row in memory.
// Rows must be indexed in ascending id order so the newest row wins.
type companionIndex[T any] struct {
	byKey  map[string]*T
	byName map[string]*T
}

func indexCompanions[T any](rows []T, identity func(*T) (key, name string)) companionIndex[T] {
	idx := companionIndex[T]{
		byKey:  make(map[string]*T, len(rows)),
		byName: make(map[string]*T),
	}
	for i := range rows {
		key, name := identity(&rows[i])
		if key != "" {
			idx.byKey[key] = &rows[i]
			continue
		}
		idx.byName[name] = &rows[i]
	}
	return idx
}

func (idx companionIndex[T]) lookup(app *entities.ClientAppDetails) *T {
	if app.ClientKey != "" {
		if row, ok := idx.byKey[app.ClientKey]; ok {
			return row
		}
	}
	return idx.byName[app.ClientName]
}

// ownerIndex maps companion identities to the id of their app details row.
type ownerIndex struct {
	byKey  map[string]uint
	byName map[string]uint
}

func (r *clientConfigRepository) appOwners(ctx context.Context) (ownerIndex, error) {
	var apps []entities.ClientAppDetails
	if err := r.db.WithContext(ctx).Select("id", "clientName", "clientKey").Order("id ASC").Find(&apps).Error; err != nil {
		return ownerIndex{}, errors.Store(componentName, fmt.Errorf("failed to list app details: %w", err))
	}
	idx := ownerIndex{
		byKey:  make(map[string]uint, len(apps)),
		byName: make(map[string]uint, len(apps)),
	}
	for _, app := range apps {
		if app.ClientKey != "" {
			idx.byKey[app.ClientKey] = app.ID
		}
		idx.byName[app.ClientName] = app.ID
	}
	return idx, nil
}

// owner returns the app id for a companion. Keyed companions only match by
// key; key-less legacy rows match by name.
func (idx ownerIndex) owner(key, name string) *uint {
	var (
		id uint
		ok bool
	)
	if key != "" {
		id, ok = idx.byKey[key]
	} else {
		id, ok = idx.byName[name]
	}
	if !ok {
		return nil
	}
	return &id
}

func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrClientNotFound) {
		return ErrClientNotFound
	}
	return errors.Store(componentName, err)
}
