// Package telemetry reports server-side failures to Sentry. A Reporter built
// from an empty DSN is inert, so callers never check whether reporting is
// configured.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/zancompute/zanconfig/internal/conf"
	"github.com/zancompute/zanconfig/internal/errors"
)

// Option adjusts the Sentry client options before the client is created.
type Option func(*sentry.ClientOptions)

// WithBeforeSend installs a hook that sees every event before delivery.
// Returning nil drops the event.
func WithBeforeSend(fn func(*sentry.Event, *sentry.EventHint) *sentry.Event) Option {
	return func(o *sentry.ClientOptions) { o.BeforeSend = fn }
}

// Reporter captures errors on a private hub.
type Reporter struct {
	hub          *sentry.Hub
	flushTimeout time.Duration
}

// New creates a Reporter. environment and release are attached to every
// event.
func New(settings conf.SentrySettings, environment, release string, opts ...Option) (*Reporter, error) {
	r := &Reporter{flushTimeout: settings.FlushTimeout.Std()}
	if settings.DSN == "" {
		return r, nil
	}
	options := sentry.ClientOptions{
		Dsn:              settings.DSN,
		Debug:            settings.Debug,
		SampleRate:       settings.SampleRate,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
	}
	for _, opt := range opts {
		opt(&options)
	}
	client, err := sentry.NewClient(options)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to create sentry client: %w", err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}
	r.hub = sentry.NewHub(client, sentry.NewScope())
	return r, nil
}

// Enabled reports whether events are delivered anywhere.
func (r *Reporter) Enabled() bool { return r != nil && r.hub != nil }

// CaptureError sends err with tags. The component and category of an
// EnhancedError in the chain are added as tags, and its context as extra
// data.
func (r *Reporter) CaptureError(err error, tags map[string]string) {
	if !r.Enabled() || err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		var ee *errors.EnhancedError
		if errors.As(err, &ee) {
			if c := ee.Component(); c != "" {
				scope.SetTag("component", c)
			}
			scope.SetTag("category", string(ee.Category()))
			if ctx := ee.Context(); len(ctx) > 0 {
				scope.SetContext("error", sentry.Context(ctx))
			}
		}
		scope.SetTags(tags)
		r.hub.CaptureException(err)
	})
}

// Flush waits up to the configured timeout for queued events.
func (r *Reporter) Flush() bool {
	if !r.Enabled() {
		return true
	}
	return r.hub.Flush(r.flushTimeout)
}
