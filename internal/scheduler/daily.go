// Package scheduler runs the daily check-in batch at a fixed local time.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/checkin/internal/logger"
)

// BatchFunc is the work the scheduler triggers once per day.
type BatchFunc func(ctx context.Context) error

// Daily fires a batch run at the same wall-clock time every day.
type Daily struct {
	at       string // "HH:MM" local time
	run      BatchFunc
	logger   logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewDaily creates a scheduler firing at the given "HH:MM" local time.
func NewDaily(at string, run BatchFunc, log logger.Logger) (*Daily, error) {
	if _, err := parseClock(at); err != nil {
		return nil, err
	}
	return &Daily{
		at:     at,
		run:    run,
		logger: log,
		stopCh: make(chan struct{}),
		now:    time.Now,
	}, nil
}

// Start begins the daily loop. It returns immediately; the first run
// happens at the next occurrence of the configured time, never on start.
func (d *Daily) Start(ctx context.Context) error {
	go func() {
		for {
			wait := time.Until(nextRun(d.now(), d.at))
			d.logger.Info("next scheduled batch run",
				logger.String("at", d.at),
				logger.Duration("in", wait))

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
				if err := d.run(ctx); err != nil {
					d.logger.Error("scheduled batch run failed", logger.Error(err))
				}
			case <-d.stopCh:
				timer.Stop()
				return
			case <-ctx.Done():
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop stops the scheduler. Safe to call more than once.
func (d *Daily) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
}

// nextRun returns the next occurrence of the "HH:MM" local time strictly
// after now. A run time earlier today rolls over to tomorrow.
func nextRun(now time.Time, at string) time.Time {
	clock, err := parseClock(at)
	if err != nil {
		// Validated in NewDaily; unreachable for a constructed Daily.
		return now.Add(24 * time.Hour)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), clock.hour, clock.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

type clockTime struct {
	hour, minute int
}

func parseClock(at string) (clockTime, error) {
	parts := strings.SplitN(at, ":", 2)
	if len(parts) != 2 {
		return clockTime{}, fmt.Errorf("invalid schedule time %q, want HH:MM", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return clockTime{}, fmt.Errorf("invalid schedule hour in %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return clockTime{}, fmt.Errorf("invalid schedule minute in %q", at)
	}
	return clockTime{hour: hour, minute: minute}, nil
}
