package telemetry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zancompute/zanconfig/internal/conf"
	"github.com/zancompute/zanconfig/internal/errors"
)

type eventSink struct {
	mu     sync.Mutex
	events []*sentry.Event
}

// keep records the event and drops it so nothing leaves the process.
func (s *eventSink) keep(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *eventSink) captured() []*sentry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*sentry.Event(nil), s.events...)
}

func TestReporter_DisabledWithoutDSN(t *testing.T) {
	t.Parallel()

	r, err := New(conf.SentrySettings{}, "production", "dev")
	require.NoError(t, err)
	assert.False(t, r.Enabled())

	r.CaptureError(fmt.Errorf("boom"), nil)
	assert.True(t, r.Flush())

	var nilReporter *Reporter
	assert.False(t, nilReporter.Enabled())
	nilReporter.CaptureError(fmt.Errorf("boom"), nil)
}

func TestReporter_InvalidDSN(t *testing.T) {
	t.Parallel()

	_, err := New(conf.SentrySettings{DSN: "not a dsn"}, "production", "dev")
	require.Error(t, err)
	assert.Equal(t, errors.CategoryConfiguration, errors.CategoryOf(err))
}

func TestReporter_CaptureError(t *testing.T) {
	t.Parallel()

	sink := &eventSink{}
	r, err := New(conf.SentrySettings{
		DSN:          "https://public@sentry.example.com/1",
		SampleRate:   1,
		FlushTimeout: conf.Duration(100 * time.Millisecond),
	}, "staging", "v1.2.3", WithBeforeSend(sink.keep))
	require.NoError(t, err)
	require.True(t, r.Enabled())

	storeErr := errors.New(fmt.Errorf("connection refused")).
		Component("repository").
		Category(errors.CategoryStore).
		Context("client_id", 7).
		Build()
	r.CaptureError(storeErr, map[string]string{"route": "/api/clients"})
	r.CaptureError(nil, nil)

	events := sink.captured()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "staging", ev.Environment)
	assert.Equal(t, "v1.2.3", ev.Release)
	assert.Equal(t, "repository", ev.Tags["component"])
	assert.Equal(t, "store", ev.Tags["category"])
	assert.Equal(t, "/api/clients", ev.Tags["route"])
	require.NotEmpty(t, ev.Exception)
	assert.Equal(t, "connection refused", ev.Exception[len(ev.Exception)-1].Value)
	assert.Equal(t, 7, ev.Contexts["error"]["client_id"])
}
