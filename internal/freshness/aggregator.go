// Package freshness reports when each client's dashboard feeds were last
// updated. Reports are advisory: every failure degrades to an empty result.
package freshness

import (
	"context"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/zancompute/zanconfig/internal/conf"
	"github.com/zancompute/zanconfig/internal/logger"
)

const componentName = "freshness"

// Failure stages reported to the Recorder.
const (
	StagePeriod   = "period"
	StageBuild    = "build"
	StageQuery    = "query"
	StageCanceled = "canceled"
)

// Row is one client's freshness summary. Absent feeds are nil.
type Row struct {
	ClientID                string  `db:"clientId" json:"clientId"`
	CurrentTime             *string `db:"currentTime" json:"currentTime"`
	DeviceStatusLastUpdated *string `db:"deviceStatusLastUpdated" json:"deviceStatusLastUpdated"`
	PeopleLastUpdated       *string `db:"peopleLastUpdated" json:"peopleLastUpdated"`
	AnalyticsLastUpdated    *string `db:"analyticsLastUpdated" json:"analyticsLastUpdated"`
	FlightLastUpdated       *string `db:"flightLastUpdated" json:"flightLastUpdated"`
	TrafficLastUpdated      *string `db:"trafficLastUpdated" json:"trafficLastUpdated"`
}

// Recorder receives report metrics.
type Recorder interface {
	FreshnessQueried(rows int, d time.Duration)
	FreshnessServed(cached bool)
	FreshnessFailed(stage string)
}

type nopRecorder struct{}

func (nopRecorder) FreshnessQueried(int, time.Duration) {}
func (nopRecorder) FreshnessServed(bool)                {}
func (nopRecorder) FreshnessFailed(string)              {}

// Aggregator runs the cross-schema freshness query against the dashboard
// server.
type Aggregator struct {
	db       *sqlx.DB
	settings conf.FreshnessSettings
	cache    *cache.Cache
	group    singleflight.Group
	recorder Recorder
	log      logger.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(a *Aggregator) {
		if r != nil {
			a.recorder = r
		}
	}
}

// NewAggregator creates an Aggregator. A zero CacheTTL disables caching.
func NewAggregator(db *sqlx.DB, settings conf.FreshnessSettings, log logger.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		db:       db,
		settings: settings,
		recorder: nopRecorder{},
		log:      log.Module(componentName),
	}
	if ttl := settings.CacheTTL.Std(); ttl > 0 {
		// No janitor goroutine; expired entries are purged on insert.
		a.cache = cache.New(ttl, 0)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Report returns one row per configured client for the given period, sorted
// by client ID. It returns an empty slice when the period is missing or
// invalid, or when the query fails.
func (a *Aggregator) Report(ctx context.Context, year, month string) []Row {
	period, ok, err := ParsePeriod(year, month)
	if err != nil {
		a.log.Warn("rejected freshness period",
			logger.String("year", year),
			logger.String("month", month),
			logger.Error(err))
		a.recorder.FreshnessFailed(StagePeriod)
		return []Row{}
	}
	if !ok {
		return []Row{}
	}

	key := period.String()
	if a.cache != nil {
		if cached, found := a.cache.Get(key); found {
			a.recorder.FreshnessServed(true)
			return cloneRows(cached.([]Row))
		}
	}

	// The shared query outlives any single caller; a caller that gives up
	// gets an empty report while the others still receive the result.
	ch := a.group.DoChan(key, func() (any, error) {
		rows, err := a.query(context.WithoutCancel(ctx), period)
		if err == nil && a.cache != nil {
			a.cache.DeleteExpired()
			a.cache.SetDefault(key, rows)
		}
		return rows, err
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return []Row{}
		}
		a.recorder.FreshnessServed(false)
		return cloneRows(res.Val.([]Row))
	case <-ctx.Done():
		a.recorder.FreshnessFailed(StageCanceled)
		return []Row{}
	}
}

// Invalidate drops every cached report.
func (a *Aggregator) Invalidate() {
	if a.cache != nil {
		a.cache.Flush()
	}
}

func (a *Aggregator) query(ctx context.Context, period Period) ([]Row, error) {
	query, args, err := buildQuery(a.settings.FlightSchema, a.settings.Clients, period)
	if err != nil {
		a.log.Error("failed to build freshness query", logger.Error(err))
		a.recorder.FreshnessFailed(StageBuild)
		return nil, err
	}

	if timeout := a.settings.QueryTimeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	var rows []Row
	if err := a.db.SelectContext(ctx, &rows, query, args...); err != nil {
		a.log.Error("freshness query failed",
			logger.String("period", period.String()),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		a.recorder.FreshnessFailed(StageQuery)
		return nil, err
	}
	a.recorder.FreshnessQueried(len(rows), time.Since(start))

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ClientID < rows[j].ClientID })
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// cloneRows copies the slice so callers cannot mutate cached reports. The
// string pointers are shared; they are never written through.
func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	return out
}
