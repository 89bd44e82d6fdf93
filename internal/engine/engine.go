// Package engine owns the connector registry and sequences check-in runs.
// Execution is strictly sequential within a batch: that keeps request
// spacing honest and makes "one in-flight attempt per site" trivially
// true without locking.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/checkin/internal/logger"
	"github.com/MrSnakeDoc/checkin/internal/record"
	"github.com/MrSnakeDoc/checkin/internal/sites"
)

const (
	// DefaultDelayBase is the fixed part of the inter-site pause in a batch.
	DefaultDelayBase = 1 * time.Second
	// DefaultDelayJitter is the upper bound of the random part of the pause.
	DefaultDelayJitter = 2 * time.Second
)

// ErrBatchRunning is returned by CheckinAll while another batch run is
// still in flight.
var ErrBatchRunning = errors.New("a batch run is already in progress")

type registered struct {
	connector sites.Connector
	enabled   bool
}

// Engine exposes per-site and batch check-in operations over a fixed,
// startup-time connector registry.
type Engine struct {
	order       []string
	registry    map[string]*registered
	records     *record.Store
	log         logger.Logger
	delayBase   time.Duration
	delayJitter time.Duration
	sleep       func(time.Duration)
	running     atomic.Bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithDelay overrides the inter-site pause parameters.
func WithDelay(base, jitter time.Duration) Option {
	return func(e *Engine) {
		e.delayBase = base
		e.delayJitter = jitter
	}
}

// WithSleep overrides the sleep function. Used by tests to run batches
// without real pauses.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Engine) { e.sleep = sleep }
}

// New builds an engine over the given connectors. Registration order is
// preserved: batch reports list sites in this order. Duplicate IDs keep
// the first registration.
func New(records *record.Store, log logger.Logger, connectors []sites.Connector, opts ...Option) *Engine {
	e := &Engine{
		registry:    make(map[string]*registered, len(connectors)),
		records:     records,
		log:         log,
		delayBase:   DefaultDelayBase,
		delayJitter: DefaultDelayJitter,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, c := range connectors {
		if _, exists := e.registry[c.ID()]; exists {
			log.Warn("duplicate connector id ignored", logger.String("site", c.ID()))
			continue
		}
		e.registry[c.ID()] = &registered{connector: c, enabled: true}
		e.order = append(e.order, c.ID())
	}

	return e
}

// Site is the registry view of one connector.
type Site struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// HasSite reports whether a connector is registered under the given id.
func (e *Engine) HasSite(siteID string) bool {
	_, ok := e.registry[siteID]
	return ok
}

// ListSites returns registry metadata in registration order.
func (e *Engine) ListSites() []Site {
	out := make([]Site, 0, len(e.order))
	for _, id := range e.order {
		reg := e.registry[id]
		out = append(out, Site{ID: id, Name: reg.connector.Name(), Enabled: reg.enabled})
	}
	return out
}

// SetEnabled flips a site's enabled flag. Returns false for an unknown
// site. The change is observable in subsequent batch runs only.
func (e *Engine) SetEnabled(siteID string, enabled bool) bool {
	reg, ok := e.registry[siteID]
	if !ok {
		return false
	}
	reg.enabled = enabled
	e.log.Info("site flag updated",
		logger.String("site", siteID),
		logger.Bool("enabled", enabled))
	return true
}

// SiteResult is a connector result merged with site metadata.
type SiteResult struct {
	SiteID   string `json:"site_id"`
	SiteName string `json:"site_name,omitempty"`
	sites.CheckinResult
}

// CheckinSite runs the daily check-in for one site. Connector failures
// of any kind come back as result data; a non-nil error is only ever a
// persistence failure, which is fatal to streak accounting and must not
// be swallowed.
func (e *Engine) CheckinSite(ctx context.Context, siteID, credential string) (SiteResult, error) {
	reg, ok := e.registry[siteID]
	if !ok {
		return SiteResult{
			SiteID:        siteID,
			CheckinResult: sites.Failure(time.Now(), "site not found"),
		}, nil
	}

	name := reg.connector.Name()
	if !reg.enabled {
		return SiteResult{
			SiteID:        siteID,
			SiteName:      name,
			CheckinResult: sites.Failure(time.Now(), "site disabled"),
		}, nil
	}

	done, err := e.records.HasCheckedInToday(ctx, siteID)
	if err != nil {
		return SiteResult{}, fmt.Errorf("daily gate for %s: %w", siteID, err)
	}
	if done {
		e.log.Info("already checked in today, skipping", logger.String("site", siteID))
		return SiteResult{
			SiteID:   siteID,
			SiteName: name,
			CheckinResult: sites.CheckinResult{
				Success:   true,
				Skipped:   true,
				Message:   "already checked in today",
				Timestamp: time.Now(),
			},
		}, nil
	}

	e.log.Info("starting check-in", logger.String("site", siteID))
	result := e.runConnector(ctx, reg.connector, credential)

	rec, err := e.records.Save(ctx, siteID, result)
	if err != nil {
		return SiteResult{}, fmt.Errorf("save record for %s: %w", siteID, err)
	}

	if result.Success {
		e.log.Info("check-in succeeded",
			logger.String("site", siteID),
			logger.String("message", result.Message),
			logger.Int("streak", rec.Streak))
	} else {
		e.log.Warn("check-in failed",
			logger.String("site", siteID),
			logger.String("message", result.Message))
	}

	return SiteResult{SiteID: siteID, SiteName: name, CheckinResult: result}, nil
}

// runConnector invokes the connector and converts a panic into a failed
// result so one misbehaving site can never abort a batch.
func (e *Engine) runConnector(ctx context.Context, c sites.Connector, credential string) (result sites.CheckinResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("connector panicked",
				logger.String("site", c.ID()),
				logger.String("panic", fmt.Sprint(r)))
			result = sites.Failure(time.Now(), fmt.Sprintf("connector panic: %v", r))
		}
	}()
	return c.Checkin(ctx, credential)
}

// CheckinAll sequentially checks in every enabled site that has a
// credential, pausing a randomized delay between sites to avoid
// bot-like bursts against upstream services. Enabled sites without a
// credential are skipped entirely: no connector call, no record write,
// no report entry.
func (e *Engine) CheckinAll(ctx context.Context, credentials map[string]string) (*Report, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrBatchRunning
	}
	defer e.running.Store(false)

	var targets []string
	for _, id := range e.order {
		if !e.registry[id].enabled {
			continue
		}
		if _, ok := credentials[id]; !ok {
			e.log.Warn("no credential configured, skipping site", logger.String("site", id))
			continue
		}
		targets = append(targets, id)
	}

	e.log.Info("starting batch check-in", logger.Int("sites", len(targets)))

	report := newReport()
	for i, id := range targets {
		result, err := e.CheckinSite(ctx, id, credentials[id])
		if err != nil {
			return nil, err
		}
		report.add(result)

		if i < len(targets)-1 {
			e.sleep(e.delay())
		}
	}

	report.finalize()
	e.logReport(report)
	return report, nil
}

// Statistics combines registry metadata with persisted per-site streaks
// and counters. Pure read: no network calls.
func (e *Engine) Statistics(ctx context.Context) (*Statistics, error) {
	records, err := e.records.All(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		TotalSites: len(e.order),
		Sites:      make(map[string]SiteStats, len(records)),
	}
	for _, id := range e.order {
		if e.registry[id].enabled {
			stats.ActiveSites++
		}
	}

	for id, rec := range records {
		name := id
		if reg, ok := e.registry[id]; ok {
			name = reg.connector.Name()
		}
		stats.Sites[id] = SiteStats{
			Name:          name,
			TotalCheckins: rec.TotalCheckins,
			Streak:        rec.Streak,
			LastCheckin:   rec.LastCheckin,
		}
	}

	return stats, nil
}

// CheckLoginStatus probes a site's credential without performing the
// check-in side effect and without touching any record.
func (e *Engine) CheckLoginStatus(ctx context.Context, siteID, credential string) sites.LoginStatus {
	reg, ok := e.registry[siteID]
	if !ok {
		return sites.LoginStatus{LoggedIn: false, Error: "site not found"}
	}
	return reg.connector.CheckLogin(ctx, credential)
}

func (e *Engine) delay() time.Duration {
	d := e.delayBase
	if e.delayJitter > 0 {
		d += time.Duration(rand.Int64N(int64(e.delayJitter)))
	}
	return d
}

func (e *Engine) logReport(r *Report) {
	e.log.Info("batch check-in finished",
		logger.String("report_id", r.ID),
		logger.Int("total", r.Summary.Total),
		logger.Int("success", r.Summary.Success),
		logger.Int("failed", r.Summary.Failed),
		logger.Int("skipped", r.Summary.Skipped))
}
