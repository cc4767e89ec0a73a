package clientconfig

import (
	"context"
	"time"

	"github.com/zancompute/zanconfig/internal/datastore/entities"
	"github.com/zancompute/zanconfig/internal/datastore/repository"
	"github.com/zancompute/zanconfig/internal/events"
	"github.com/zancompute/zanconfig/internal/logger"
)

// Operation names used for metrics and logs.
const (
	OpCreate            = "create"
	OpUpdate            = "update"
	OpDelete            = "delete"
	OpList              = "list"
	OpGet               = "get"
	OpListOperating     = "list_operating"
	OpListNotifications = "list_notifications"
)

// Recorder observes completed operations.
type Recorder interface {
	ObserveStoreOperation(operation string, err error, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStoreOperation(string, error, time.Duration) {}

// Service is the client configuration surface used by the HTTP layer and the
// CLI. It resolves defaults, delegates persistence to the repository and
// announces committed writes.
type Service struct {
	repo      repository.ClientConfigRepository
	publisher events.Publisher
	recorder  Recorder
	log       logger.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the change event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithRecorder sets the operation recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. Events and metrics are discarded unless
// configured with options.
func NewService(repo repository.ClientConfigRepository, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: events.Nop{},
		recorder:  nopRecorder{},
		log:       log.Module("clientconfig"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create resolves p and stores a new client.
func (s *Service) Create(ctx context.Context, p Payload) (err error) {
	defer s.observe(OpCreate, time.Now(), &err)

	cfg, err := Resolve(p)
	if err != nil {
		return err
	}
	if err = s.repo.Create(ctx, &cfg); err != nil {
		return err
	}
	s.log.Info("client created",
		logger.Uint64("client_id", uint64(cfg.App.ID)),
		logger.String("client_name", cfg.App.ClientName),
		logger.String("client_key", cfg.App.ClientKey))
	s.announce(ctx, events.ActionCreated, &cfg.App)
	return nil
}

// Update resolves p and overwrites the client identified by id. The payload is
// validated before the client is looked up.
func (s *Service) Update(ctx context.Context, id uint, p Payload) (err error) {
	defer s.observe(OpUpdate, time.Now(), &err)

	cfg, err := Resolve(p)
	if err != nil {
		return err
	}
	if err = s.repo.Update(ctx, id, &cfg); err != nil {
		return err
	}
	s.log.Info("client updated",
		logger.Uint64("client_id", uint64(id)),
		logger.String("client_name", cfg.App.ClientName),
		logger.String("client_key", cfg.App.ClientKey))
	s.announce(ctx, events.ActionUpdated, &cfg.App)
	return nil
}

// Delete removes the client identified by id and its companions.
func (s *Service) Delete(ctx context.Context, id uint) (err error) {
	defer s.observe(OpDelete, time.Now(), &err)

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.log.Info("client deleted",
		logger.Uint64("client_id", uint64(id)),
		logger.String("client_name", deleted.ClientName),
		logger.String("client_key", deleted.ClientKey))
	s.announce(ctx, events.ActionDeleted, deleted)
	return nil
}

// List returns every client, newest first.
func (s *Service) List(ctx context.Context) (views []entities.ClientView, err error) {
	defer s.observe(OpList, time.Now(), &err)
	return s.repo.List(ctx)
}

// Get returns one client.
func (s *Service) Get(ctx context.Context, id uint) (view *entities.ClientView, err error) {
	defer s.observe(OpGet, time.Now(), &err)
	return s.repo.Get(ctx, id)
}

// ListOperatingConfigs returns every raw client_details row.
func (s *Service) ListOperatingConfigs(ctx context.Context) (rows []entities.OperatingConfigRow, err error) {
	defer s.observe(OpListOperating, time.Now(), &err)
	return s.repo.ListOperatingConfigs(ctx)
}

// ListNotificationConfigs returns every raw notificationconfiguration row.
func (s *Service) ListNotificationConfigs(ctx context.Context) (rows []entities.NotificationConfigRow, err error) {
	defer s.observe(OpListNotifications, time.Now(), &err)
	return s.repo.ListNotificationConfigs(ctx)
}

// Defaults returns the defaults groups used to pre-populate creation forms.
func (s *Service) Defaults() (DefaultsGroups, error) {
	return Defaults()
}

func (s *Service) observe(op string, start time.Time, err *error) {
	s.recorder.ObserveStoreOperation(op, *err, time.Since(start))
	if *err != nil {
		s.log.Debug("client operation failed", logger.String("operation", op), logger.Error(*err))
	}
}

// announce publishes a change event. The write has already committed, so a
// failure is only logged.
func (s *Service) announce(ctx context.Context, action events.Action, app *entities.ClientAppDetails) {
	ev := events.ClientChangeEvent{
		Action:     action,
		ClientID:   app.ID,
		ClientKey:  app.ClientKey,
		ClientName: app.ClientName,
		At:         s.now().UTC(),
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn("failed to publish client event",
			logger.String("action", string(action)),
			logger.String("client_key", app.ClientKey),
			logger.Error(err))
	}
}
