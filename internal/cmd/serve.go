package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zancompute/zanconfig/internal/api"
	"github.com/zancompute/zanconfig/internal/auth"
	"github.com/zancompute/zanconfig/internal/clientconfig"
	"github.com/zancompute/zanconfig/internal/datastore"
	"github.com/zancompute/zanconfig/internal/datastore/repository"
	"github.com/zancompute/zanconfig/internal/datastore/schema"
	"github.com/zancompute/zanconfig/internal/events"
	"github.com/zancompute/zanconfig/internal/freshness"
	"github.com/zancompute/zanconfig/internal/logger"
	"github.com/zancompute/zanconfig/internal/observability/metrics"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Evolve the schema and serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	m := metrics.New(true)
	reporter := a.newReporter()
	defer flushReporter(reporter, a.log)

	db, report, err := a.openEvolvedStore(ctx, schema.WithRecorder(m), schema.WithErrorReporter(reporter))
	if err != nil {
		return err
	}
	defer closeStore(db, a.log)
	if err := report.Err(); err != nil {
		a.log.Warn("schema evolution finished with failures",
			logger.Int("failed_steps", len(report.Failed())),
			logger.Error(err))
	}

	dashboard, err := datastore.OpenDashboard(a.profile.Dashboard)
	if err != nil {
		return err
	}
	defer func() { _ = dashboard.Close() }()

	publisher := a.newPublisher(ctx)
	defer publisher.Close()

	service := clientconfig.NewService(repository.NewClientConfigRepository(db), a.log,
		clientconfig.WithPublisher(publisher),
		clientconfig.WithRecorder(m))
	aggregator := freshness.NewAggregator(dashboard, a.settings.Freshness, a.log, freshness.WithRecorder(m))
	server := api.NewServer(a.settings.Server, api.Dependencies{
		Clients:   service,
		Freshness: aggregator,
		Auth:      auth.NewAuthenticator(repository.NewUserRepository(db), a.log),
		Metrics:   m,
		Errors:    reporter,
		Health:    api.HealthInfo{Environment: a.settings.Environment, Profile: a.settings.ProfileName()},
	}, a.log)

	return server.Run(ctx)
}

// newPublisher connects to the broker when MQTT is enabled. A broker that is
// down at startup disables events rather than blocking the service.
func (a *app) newPublisher(ctx context.Context) events.Publisher {
	cfg := a.settings.MQTT
	if !cfg.Enabled {
		return events.Nop{}
	}
	publisher, err := events.NewMQTTPublisher(ctx, events.Config{
		Broker:         cfg.Broker,
		ClientID:       cfg.ClientID,
		Username:       cfg.Username,
		Password:       cfg.Password,
		TopicPrefix:    cfg.TopicPrefix,
		QoS:            byte(cfg.QoS),
		ConnectTimeout: cfg.ConnectTimeout.Std(),
		PublishTimeout: cfg.PublishTimeout.Std(),
	}, a.log)
	if err != nil {
		a.log.Warn("change events disabled", logger.Error(err))
		return events.Nop{}
	}
	return publisher
}
