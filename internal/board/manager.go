package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"

	"github.com/spleiner/slussen/internal/appconf"
	"github.com/spleiner/slussen/internal/logging"
	"github.com/spleiner/slussen/internal/models"
	"github.com/spleiner/slussen/internal/utils"
)

// ErrAllSitesFailed is returned when no configured site could be fetched.
var ErrAllSitesFailed = errors.New("all sites failed")

// Fetcher is the upstream the Manager reads raw records from.
type Fetcher interface {
	Departures(ctx context.Context, siteID string) ([]json.RawMessage, error)
	Deviations(ctx context.Context, siteIDs ...string) ([]json.RawMessage, error)
}

// Manager runs fetch cycles against every configured site and keeps the
// latest results for a short while.
type Manager struct {
	fetcher     Fetcher
	rules       Rules
	sites       []string
	concurrency int
	ttl         time.Duration
	cache       *resultCache
	clock       gcache.Clock
	group       singleflight.Group
	logger      *slog.Logger

	mu          sync.RWMutex
	lastUpdated time.Time
}

// NewManager creates a Manager using the wall clock.
func NewManager(cfg appconf.Config, fetcher Fetcher, logger *slog.Logger) *Manager {
	return NewManagerWithClock(cfg, fetcher, logger, gcache.NewRealClock())
}

// NewManagerWithClock creates a Manager whose cache expiry and timestamps follow clock.
func NewManagerWithClock(cfg appconf.Config, fetcher Fetcher, logger *slog.Logger, clock gcache.Clock) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		fetcher:     fetcher,
		rules:       NewRules(cfg.Board),
		sites:       append([]string(nil), cfg.Upstream.Sites...),
		concurrency: cfg.Upstream.Concurrency,
		ttl:         cfg.Board.CacheTTL,
		cache:       newResultCache(cfg.Board.CacheTTL, clock),
		clock:       clock,
		logger:      logger.With(slog.String("component", "board_manager")),
	}
}

// Sites returns the monitored site ids.
func (m *Manager) Sites() []string {
	return append([]string(nil), m.sites...)
}

// Departures returns the cached departures, running a fetch cycle when the
// cache is empty or expired. A cycle where every site failed is not cached.
func (m *Manager) Departures(ctx context.Context) (models.DepartureSnapshot, error) {
	return shared(ctx, m, departuresKey, m.FetchDepartures)
}

// Disruptions is the disruption counterpart of Departures.
func (m *Manager) Disruptions(ctx context.Context) (models.DisruptionSnapshot, error) {
	return shared(ctx, m, disruptionsKey, m.FetchDisruptions)
}

// shared serves key from the cache or joins the single in-flight cycle for it.
// The cycle runs detached from ctx so one caller giving up does not fail the
// others waiting on it; ctx only bounds how long this caller waits.
func shared[T any](ctx context.Context, m *Manager, key string, fetch func(context.Context) (T, error)) (T, error) {
	if snapshot, ok := cacheGet[T](m.cache, key); ok {
		return snapshot, nil
	}

	cycleCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (interface{}, error) {
		if snapshot, ok := cacheGet[T](m.cache, key); ok {
			return snapshot, nil
		}
		snapshot, err := fetch(cycleCtx)
		if err == nil {
			cacheSet(m.cache, key, snapshot)
		}
		return snapshot, err
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		return res.Val.(T), res.Err
	}
}

type siteDepartures struct {
	site    string
	records []models.DepartureRecord
	issues  []models.Issue
	err     error
}

// FetchDepartures runs one uncached departures cycle: every site in parallel,
// concatenated in site order, then sorted by expected time.
func (m *Manager) FetchDepartures(ctx context.Context) (models.DepartureSnapshot, error) {
	start := time.Now()

	results := utils.ParallelMap(ctx, m.sites, m.concurrency, func(ctx context.Context, site string) siteDepartures {
		raws, err := m.fetcher.Departures(ctx, site)
		if err != nil {
			return siteDepartures{site: site, err: err}
		}
		records, issues := m.rules.NormalizeDepartures(site, raws)
		return siteDepartures{site: site, records: records, issues: issues}
	})

	snapshot := models.DepartureSnapshot{
		Departures: []models.DepartureRecord{},
		Issues:     []models.Issue{},
		SitesTotal: len(m.sites),
	}
	for _, result := range results {
		if result.err != nil {
			snapshot.SitesFailed++
			snapshot.Issues = append(snapshot.Issues, m.siteFailed("departures", result.site, result.err))
			continue
		}
		m.logIssues(result.issues)
		snapshot.Departures = append(snapshot.Departures, result.records...)
		snapshot.Issues = append(snapshot.Issues, result.issues...)
	}
	SortDepartures(snapshot.Departures)
	snapshot.FetchedAt = m.clock.Now()

	logging.LogOperation(m.logger, "departures_fetched",
		slog.Int("sites", snapshot.SitesTotal),
		slog.Int("sites_failed", snapshot.SitesFailed),
		slog.Int("departures", len(snapshot.Departures)),
		slog.Duration("duration", time.Since(start)))

	if snapshot.SitesTotal > 0 && snapshot.SitesFailed == snapshot.SitesTotal {
		return snapshot, fmt.Errorf("fetching departures: %w", ErrAllSitesFailed)
	}
	m.touch(snapshot.FetchedAt)
	return snapshot, nil
}

type siteDisruptions struct {
	site    string
	records []models.DisruptionRecord
	issues  []models.Issue
	err     error
}

// FetchDisruptions runs one uncached disruptions cycle, one request per site.
func (m *Manager) FetchDisruptions(ctx context.Context) (models.DisruptionSnapshot, error) {
	start := time.Now()

	results := utils.ParallelMap(ctx, m.sites, m.concurrency, func(ctx context.Context, site string) siteDisruptions {
		raws, err := m.fetcher.Deviations(ctx, site)
		if err != nil {
			return siteDisruptions{site: site, err: err}
		}
		records, issues := m.rules.NormalizeDisruptions(site, raws)
		return siteDisruptions{site: site, records: records, issues: issues}
	})

	snapshot := models.DisruptionSnapshot{
		Disruptions: []models.DisruptionRecord{},
		Issues:      []models.Issue{},
		SitesTotal:  len(m.sites),
	}
	for _, result := range results {
		if result.err != nil {
			snapshot.SitesFailed++
			snapshot.Issues = append(snapshot.Issues, m.siteFailed("disruptions", result.site, result.err))
			continue
		}
		m.logIssues(result.issues)
		snapshot.Disruptions = append(snapshot.Disruptions, result.records...)
		snapshot.Issues = append(snapshot.Issues, result.issues...)
	}
	snapshot.FetchedAt = m.clock.Now()

	logging.LogOperation(m.logger, "disruptions_fetched",
		slog.Int("sites", snapshot.SitesTotal),
		slog.Int("sites_failed", snapshot.SitesFailed),
		slog.Int("disruptions", len(snapshot.Disruptions)),
		slog.Duration("duration", time.Since(start)))

	if snapshot.SitesTotal > 0 && snapshot.SitesFailed == snapshot.SitesTotal {
		return snapshot, fmt.Errorf("fetching disruptions: %w", ErrAllSitesFailed)
	}
	m.touch(snapshot.FetchedAt)
	return snapshot, nil
}

// Invalidate drops both cached results.
func (m *Manager) Invalidate() {
	m.cache.Invalidate()
	logging.LogOperation(m.logger, "cache_invalidated")
}

// LastUpdated is the time of the most recent cycle in which at least one site answered.
func (m *Manager) LastUpdated() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUpdated, !m.lastUpdated.IsZero()
}

// Status reports what the cache currently holds.
func (m *Manager) Status() models.Status {
	status := models.Status{
		Sites:           m.Sites(),
		CacheTTLSeconds: m.ttl.Seconds(),
	}
	if t, ok := m.LastUpdated(); ok {
		status.LastUpdated = &t
	}
	if t, ok := m.cache.expiresAt(departuresKey); ok {
		status.DeparturesExpireAt = &t
	}
	if t, ok := m.cache.expiresAt(disruptionsKey); ok {
		status.DisruptionsExpireAt = &t
	}
	return status
}

func (m *Manager) touch(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.After(m.lastUpdated) {
		m.lastUpdated = t
	}
}

func (m *Manager) siteFailed(resource, site string, err error) models.Issue {
	logging.LogWarning(m.logger, "site fetch failed", err,
		slog.String("resource", resource),
		slog.String("site", site))
	return models.Issue{
		Kind:    models.IssueSiteFetchFailed,
		Site:    site,
		Message: fmt.Sprintf("could not fetch %s for site %s: %v", resource, site, err),
	}
}

func (m *Manager) logIssues(issues []models.Issue) {
	for _, issue := range issues {
		logging.LogWarning(m.logger, "malformed record skipped", nil,
			slog.String("site", issue.Site),
			slog.String("detail", issue.Message))
	}
}
