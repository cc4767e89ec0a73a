package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/zancompute/zanconfig/internal/conf"
	"github.com/zancompute/zanconfig/internal/datastore"
	"github.com/zancompute/zanconfig/internal/datastore/schema"
	"github.com/zancompute/zanconfig/internal/logger"
	"github.com/zancompute/zanconfig/internal/telemetry"
)

// app is what every subcommand starts from.
type app struct {
	settings *conf.Settings
	profile  conf.Profile
	log      logger.Logger
}

func loadApp(cmd *cobra.Command) (*app, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	settings, err := conf.Load(path)
	if err != nil {
		return nil, err
	}
	profile, _ := settings.ActiveProfile()
	log := logger.NewZapLogger(os.Stderr, logger.ParseLevel(settings.Log.Level), settings.Log.Format).
		With(logger.String("profile", settings.ProfileName()))
	return &app{settings: settings, profile: profile, log: log}, nil
}

// openEvolvedStore opens the config store and runs schema evolution on it.
// Failed steps are logged and skipped; the store still opens.
func (a *app) openEvolvedStore(ctx context.Context, opts ...schema.Option) (*gorm.DB, *schema.Report, error) {
	db, err := datastore.OpenConfigStore(ctx, a.profile.Config, a.log)
	if err != nil {
		return nil, nil, err
	}
	report := schema.NewManager(db, a.log, opts...).Run(ctx)
	return db, report, nil
}

// newReporter creates the Sentry reporter. A bad DSN is logged and leaves
// reporting off.
func (a *app) newReporter() *telemetry.Reporter {
	reporter, err := telemetry.New(a.settings.Sentry, a.settings.ProfileName(), version)
	if err != nil {
		a.log.Warn("error reporting disabled", logger.Error(err))
		reporter, _ = telemetry.New(conf.SentrySettings{}, "", "")
	}
	return reporter
}

func flushReporter(r *telemetry.Reporter, log logger.Logger) {
	if !r.Flush() {
		log.Warn("timed out flushing error reports")
	}
}

func closeStore(db *gorm.DB, log logger.Logger) {
	if err := datastore.Close(db); err != nil {
		log.Warn("failed to close config store", logger.Error(err))
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
