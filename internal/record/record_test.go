package record

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/checkin/internal/sites"
	"github.com/MrSnakeDoc/checkin/internal/store/memory"
)

// clock is a settable fake time source.
type clock struct {
	current time.Time
}

func (c *clock) now() time.Time { return c.current }

func (c *clock) advanceDays(n int) { c.current = c.current.AddDate(0, 0, n) }

func newTestStore() (*Store, *clock) {
	c := &clock{current: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)}
	return New(memory.New(), WithNow(c.now)), c
}

func success(msg string) sites.CheckinResult {
	return sites.CheckinResult{Success: true, Message: msg}
}

func failure(msg string) sites.CheckinResult {
	return sites.CheckinResult{Success: false, Message: msg}
}

func TestSaveCreatesRecord(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	rec, err := s.Save(ctx, "alpha", success("got 5 points"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if rec.TotalCheckins != 1 {
		t.Errorf("TotalCheckins = %d, want 1", rec.TotalCheckins)
	}
	if rec.Streak != 1 {
		t.Errorf("Streak = %d, want 1", rec.Streak)
	}
	if len(rec.History) != 1 {
		t.Errorf("history length = %d, want 1", len(rec.History))
	}
	if rec.LastResult == nil || !rec.LastResult.Success {
		t.Error("LastResult should be the saved success")
	}
}

func TestHasCheckedInToday(t *testing.T) {
	ctx := context.Background()

	t.Run("no record", func(t *testing.T) {
		s, _ := newTestStore()
		got, err := s.HasCheckedInToday(ctx, "alpha")
		if err != nil || got {
			t.Errorf("HasCheckedInToday() = %v, %v; want false, nil", got, err)
		}
	})

	t.Run("success today", func(t *testing.T) {
		s, _ := newTestStore()
		_, _ = s.Save(ctx, "alpha", success("ok"))
		got, _ := s.HasCheckedInToday(ctx, "alpha")
		if !got {
			t.Error("HasCheckedInToday() = false after successful save today")
		}
	})

	t.Run("failure today does not block retry", func(t *testing.T) {
		s, _ := newTestStore()
		_, _ = s.Save(ctx, "alpha", failure("bad cookie"))
		got, _ := s.HasCheckedInToday(ctx, "alpha")
		if got {
			t.Error("HasCheckedInToday() = true after failed attempt today")
		}
	})

	t.Run("success yesterday", func(t *testing.T) {
		s, c := newTestStore()
		_, _ = s.Save(ctx, "alpha", success("ok"))
		c.advanceDays(1)
		got, _ := s.HasCheckedInToday(ctx, "alpha")
		if got {
			t.Error("HasCheckedInToday() = true for yesterday's success")
		}
	})
}

func TestStreakContinuity(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore()

	// Successful check-ins on days D, D+1, D+2.
	var rec *SiteRecord
	for i := 0; i < 3; i++ {
		var err error
		rec, err = s.Save(ctx, "alpha", success("ok"))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		c.advanceDays(1)
	}
	if rec.Streak != 3 {
		t.Errorf("Streak after 3 consecutive days = %d, want 3", rec.Streak)
	}

	// Nothing on D+3; a success on D+4 starts over.
	c.advanceDays(1)
	rec, _ = s.Save(ctx, "alpha", success("ok"))
	if rec.Streak != 1 {
		t.Errorf("Streak after a 2-day gap = %d, want 1", rec.Streak)
	}
}

func TestStreakResetOnFailure(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore()

	for i := 0; i < 3; i++ {
		_, _ = s.Save(ctx, "alpha", success("ok"))
		c.advanceDays(1)
	}

	rec, _ := s.Save(ctx, "alpha", failure("bad cookie"))
	if rec.Streak != 0 {
		t.Errorf("Streak after failure on the next day = %d, want 0", rec.Streak)
	}
}

func TestStreakSameDayRetry(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore()

	_, _ = s.Save(ctx, "alpha", success("ok"))
	c.advanceDays(1)

	// Failed attempt in the morning, successful retry later the same day.
	_, _ = s.Save(ctx, "alpha", failure("upstream hiccup"))
	rec, _ := s.Save(ctx, "alpha", success("ok"))

	if rec.Streak != 2 {
		t.Errorf("Streak with same-day retry = %d, want 2", rec.Streak)
	}
	if rec.TotalCheckins != 3 {
		t.Errorf("TotalCheckins = %d, want 3", rec.TotalCheckins)
	}
}

func TestStreakDuplicateSuccessSameDate(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore()

	_, _ = s.Save(ctx, "alpha", success("ok"))
	c.advanceDays(1)
	_, _ = s.Save(ctx, "alpha", success("ok"))
	rec, _ := s.Save(ctx, "alpha", success("ok again"))

	// Two successes on the same date count as one day.
	if rec.Streak != 2 {
		t.Errorf("Streak with duplicate same-date successes = %d, want 2", rec.Streak)
	}
}

func TestHistoryBound(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore()

	for i := 0; i < 35; i++ {
		if _, err := s.Save(ctx, "alpha", success("ok")); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		c.advanceDays(1)
	}

	rec, err := s.Record(ctx, "alpha")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(rec.History) != MaxHistory {
		t.Fatalf("history length = %d, want %d", len(rec.History), MaxHistory)
	}
	if rec.TotalCheckins != 35 {
		t.Errorf("TotalCheckins = %d, want 35", rec.TotalCheckins)
	}

	// The retained entries are the most recent ones: the first five days
	// were evicted.
	first := rec.History[0].Date
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local).Format("2006-01-02")
	if first != want {
		t.Errorf("oldest retained entry = %s, want %s", first, want)
	}
}

func TestRecordsSurviveReload(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	c := &clock{current: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)}

	first := New(backend, WithNow(c.now))
	_, _ = first.Save(ctx, "alpha", success("ok"))

	second := New(backend, WithNow(c.now))
	rec, err := second.Record(ctx, "alpha")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if rec == nil || rec.TotalCheckins != 1 {
		t.Errorf("record not visible through a fresh store: %+v", rec)
	}

	all, err := second.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("All() returned %d records, want 1", len(all))
	}
}
