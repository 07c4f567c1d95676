package timerules

import (
	"testing"
	"time"
)

// at returns rules frozen at the given local (UTC+10) wall time.
func at(year int, month time.Month, day, hour, minute int) *Rules {
	loc := time.FixedZone("UTC+10", 10*3600)
	now := time.Date(year, month, day, hour, minute, 0, 0, loc)
	return New(10, WithClock(func() time.Time { return now.UTC() }))
}

func TestNowUsesOperatingZone(t *testing.T) {
	r := New(10, WithClock(func() time.Time {
		return time.Date(2026, 10, 18, 20, 30, 0, 0, time.UTC)
	}))

	now := r.Now()
	if now.Day() != 19 || now.Hour() != 6 || now.Minute() != 30 {
		t.Fatalf("unexpected zoned now: %s", now)
	}
	if _, off := now.Zone(); off != 10*3600 {
		t.Errorf("offset = %d, want %d", off, 10*3600)
	}
}

func TestIsBeforeDeadline(t *testing.T) {
	r := at(2026, 10, 18, 14, 59)
	now := r.Now()

	if !r.IsBeforeDeadline(now, 15, 0) {
		t.Error("14:59 should be before 15:00")
	}
	if r.IsBeforeDeadline(now, 14, 59) {
		t.Error("14:59 is not strictly before 14:59")
	}
	if r.IsBeforeDeadline(now.AddDate(0, 0, 1), 23, 0) {
		t.Error("another day must never be before the deadline")
	}
	if r.IsBeforeDeadline(now.AddDate(0, 0, -1), 23, 0) {
		t.Error("yesterday must never be before the deadline")
	}
}

func TestCanModify(t *testing.T) {
	tests := []struct {
		name     string
		rules    *Rules
		delivery func(r *Rules) time.Time
		want     bool
	}{
		{
			name:     "today before cutoff",
			rules:    at(2026, 10, 18, 14, 59),
			delivery: func(r *Rules) time.Time { return r.DayStart(0) },
			want:     true,
		},
		{
			name:     "today at cutoff",
			rules:    at(2026, 10, 18, 15, 0),
			delivery: func(r *Rules) time.Time { return r.DayStart(0) },
			want:     false,
		},
		{
			name:     "today after cutoff",
			rules:    at(2026, 10, 18, 22, 0),
			delivery: func(r *Rules) time.Time { return r.DayStart(0) },
			want:     false,
		},
		{
			name:     "tomorrow after cutoff",
			rules:    at(2026, 10, 18, 22, 0),
			delivery: func(r *Rules) time.Time { return r.DayStart(1) },
			want:     true,
		},
		{
			name:     "next week",
			rules:    at(2026, 10, 18, 23, 59),
			delivery: func(r *Rules) time.Time { return r.DayStart(7) },
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rules.CanModify(tt.delivery(tt.rules).UTC()); got != tt.want {
				t.Errorf("CanModify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextEligibleEatingWindow(t *testing.T) {
	before := at(2026, 10, 18, 8, 59)
	delivery, eating := before.NextEligibleEatingWindow(9)
	if delivery.Day() != 18 || eating.Day() != 19 {
		t.Errorf("before cutoff: got delivery %s eating %s", delivery, eating)
	}

	after := at(2026, 10, 18, 9, 0)
	delivery, eating = after.NextEligibleEatingWindow(9)
	if delivery.Day() != 19 || eating.Day() != 20 {
		t.Errorf("after cutoff: got delivery %s eating %s", delivery, eating)
	}
	if !eating.Equal(delivery.AddDate(0, 0, 1)) {
		t.Error("eating day must follow delivery day")
	}
}

func TestEatingMonthsAndDays(t *testing.T) {
	r := at(2026, 10, 18, 12, 0)

	months := r.EatingMonths()
	if len(months) != 2 {
		t.Fatalf("got %d months, want 2", len(months))
	}
	if months[0].Month() != time.October || months[1].Month() != time.November {
		t.Errorf("unexpected months: %v", months)
	}

	october := r.EatingDays(months[0])
	if len(october) == 0 || october[0].Day() != 20 {
		t.Fatalf("october should start at the 20th, got %v", october)
	}
	if last := october[len(october)-1]; last.Day() != 31 {
		t.Errorf("october should end at the 31st, got %d", last.Day())
	}
	if november := r.EatingDays(months[1]); len(november) != 30 {
		t.Errorf("november: got %d days, want 30", len(november))
	}

	september := time.Date(2026, 9, 1, 0, 0, 0, 0, r.Location())
	if days := r.EatingDays(september); days != nil {
		t.Errorf("elapsed month must be skipped, got %v", days)
	}
}

func TestEatingMonthsRollOverAtMonthEnd(t *testing.T) {
	// 30 Oct after the accept cutoff: delivery 31 Oct, first eating day 1 Nov.
	r := at(2026, 10, 30, 10, 0)

	months := r.EatingMonths()
	if months[0].Month() != time.November || months[1].Month() != time.December {
		t.Errorf("unexpected months: %v", months)
	}
}

func TestIsEligibleEatingDay(t *testing.T) {
	r := at(2026, 10, 18, 12, 0)

	if r.IsEligibleEatingDay(r.DayStart(1)) {
		t.Error("tomorrow is a delivery day after the accept cutoff, not eligible for eating")
	}
	if !r.IsEligibleEatingDay(r.DayStart(2)) {
		t.Error("day after tomorrow should be eligible")
	}
}

func TestActiveOn(t *testing.T) {
	r := at(2026, 10, 18, 12, 0)
	yesterday := r.DayStart(-1)

	tests := []struct {
		name     string
		delivery time.Time
		duration int
		offset   int
		want     bool
	}{
		{"multi-day order started yesterday, today", yesterday, 3, 0, true},
		{"multi-day order started yesterday, last day", yesterday, 3, 1, true},
		{"multi-day order started yesterday, after window", yesterday, 3, 2, false},
		{"single day order on its day", r.DayStart(1), 1, 1, true},
		{"single day order next day", r.DayStart(1), 1, 2, false},
		{"future order not yet started", r.DayStart(2), 5, 0, false},
		{"bad duration still reported on delivery day", r.DayStart(0), 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ActiveOn(tt.delivery.UTC(), tt.duration, r.DayStart(tt.offset)); got != tt.want {
				t.Errorf("ActiveOn() = %v, want %v", got, tt.want)
			}
		})
	}
}
