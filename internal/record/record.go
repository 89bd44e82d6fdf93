// Package record owns per-site check-in history and streak arithmetic.
// Records are persisted as one structured document under a single key of
// the injected store backend; nothing else mutates them.
package record

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/MrSnakeDoc/checkin/internal/sites"
	"github.com/MrSnakeDoc/checkin/internal/store"
)

const (
	recordsKey = "records"
	dateLayout = "2006-01-02"

	// MaxHistory bounds per-site history; the oldest entries are evicted first.
	MaxHistory = 30
)

// Entry is one attempted check-in in a site's history.
type Entry struct {
	Date      string              `json:"date"`
	Result    sites.CheckinResult `json:"result"`
	Timestamp time.Time           `json:"timestamp"`
}

// SiteRecord is the persisted state for one site.
type SiteRecord struct {
	History       []Entry              `json:"history"`
	Streak        int                  `json:"streak"`
	TotalCheckins int                  `json:"total_checkins"`
	LastCheckin   string               `json:"last_checkin,omitempty"`
	LastResult    *sites.CheckinResult `json:"last_result,omitempty"`
}

// Store reads and writes SiteRecords through a pluggable backend.
type Store struct {
	backend store.Backend
	now     func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithNow overrides the clock. Used by tests to drive streak arithmetic
// across calendar days.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a record store over the given backend.
func New(backend store.Backend, opts ...Option) *Store {
	s := &Store{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record returns the record for siteID, or nil when none exists.
func (s *Store) Record(ctx context.Context, siteID string) (*SiteRecord, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return records[siteID], nil
}

// All returns every persisted site record keyed by site ID.
func (s *Store) All(ctx context.Context) (map[string]*SiteRecord, error) {
	return s.load(ctx)
}

// HasCheckedInToday reports whether siteID already has a successful
// result recorded for the current calendar date. A failed attempt today
// does not count, so a later retry is not blocked.
func (s *Store) HasCheckedInToday(ctx context.Context, siteID string) (bool, error) {
	rec, err := s.Record(ctx, siteID)
	if err != nil {
		return false, err
	}
	if rec == nil || rec.LastCheckin != s.today() {
		return false, nil
	}
	return rec.LastResult != nil && rec.LastResult.Success, nil
}

// Save appends result to siteID's history, truncates the history to the
// most recent MaxHistory entries, bumps the attempt counter, and
// recomputes the streak. Write failures are fatal to the caller: silently
// losing a record would corrupt streak accounting.
func (s *Store) Save(ctx context.Context, siteID string, result sites.CheckinResult) (*SiteRecord, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	rec := records[siteID]
	if rec == nil {
		rec = &SiteRecord{}
		records[siteID] = rec
	}

	now := s.now()
	today := now.Format(dateLayout)

	last := result
	rec.LastCheckin = today
	rec.LastResult = &last
	rec.TotalCheckins++
	rec.History = append(rec.History, Entry{Date: today, Result: result, Timestamp: now})
	if len(rec.History) > MaxHistory {
		rec.History = rec.History[len(rec.History)-MaxHistory:]
	}
	rec.Streak = streak(rec.History, now)

	if err := s.persist(ctx, records); err != nil {
		return nil, err
	}
	return rec, nil
}

// Clear drops all persisted records.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Remove(ctx, recordsKey); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	return nil
}

func (s *Store) today() string {
	return s.now().Format(dateLayout)
}

func (s *Store) load(ctx context.Context) (map[string]*SiteRecord, error) {
	raw, err := s.backend.Get(ctx, recordsKey)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	records := map[string]*SiteRecord{}
	if len(raw) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	return records, nil
}

func (s *Store) persist(ctx context.Context, records map[string]*SiteRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := s.backend.Set(ctx, recordsKey, raw); err != nil {
		return fmt.Errorf("persist records: %w", err)
	}
	return nil
}

// streak computes the length of the maximal trailing run of consecutive
// calendar days with a successful result, ending today or yesterday.
// Multiple entries on the same date count once. A failed attempt on a
// date newer than the last success breaks the chain outright.
func streak(history []Entry, now time.Time) int {
	successDates := map[string]bool{}
	lastFailure := ""
	for _, entry := range history {
		if entry.Result.Success {
			successDates[entry.Date] = true
		} else if entry.Date > lastFailure {
			lastFailure = entry.Date
		}
	}
	if len(successDates) == 0 {
		return 0
	}

	dates := make([]string, 0, len(successDates))
	for date := range successDates {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	// A failure recorded after the most recent success means the chain is
	// already broken, whatever the grace window says.
	if lastFailure > dates[0] {
		return 0
	}

	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	if dates[0] != today && dates[0] != yesterday {
		return 0
	}

	count := 1
	for i := 1; i < len(dates); i++ {
		cur, err := time.Parse(dateLayout, dates[i-1])
		if err != nil {
			break
		}
		prev, err := time.Parse(dateLayout, dates[i])
		if err != nil {
			break
		}
		if cur.Sub(prev) != 24*time.Hour {
			break
		}
		count++
	}
	return count
}
