// Package timerules holds every date decision of the ordering flow: what
// "today" is in the operating zone, whether the kitchen still accepts or
// changes orders, which eating days can be offered and which orders are in
// effect on a given day.
//
// All calculations go through one fixed-offset location, so the day picker
// and the deadline checks always agree on what "today" means.
package timerules

import (
	"fmt"
	"time"
)

const (
	DefaultUTCOffsetHours   = 10
	DefaultAcceptCutoffHour = 9
	DefaultChangeCutoffHour = 15
)

type Rules struct {
	loc              *time.Location
	now              func() time.Time
	acceptCutoffHour int
	changeCutoffHour int
}

type Option func(*Rules)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Rules) { r.now = now }
}

func WithCutoffs(acceptHour, changeHour int) Option {
	return func(r *Rules) {
		r.acceptCutoffHour = acceptHour
		r.changeCutoffHour = changeHour
	}
}

// New returns rules for a fixed UTC offset without daylight saving.
func New(utcOffsetHours int, opts ...Option) *Rules {
	r := &Rules{
		loc:              time.FixedZone(fmt.Sprintf("UTC%+d", utcOffsetHours), utcOffsetHours*3600),
		now:              time.Now,
		acceptCutoffHour: DefaultAcceptCutoffHour,
		changeCutoffHour: DefaultChangeCutoffHour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Rules) Location() *time.Location { return r.loc }

func (r *Rules) AcceptCutoffHour() int { return r.acceptCutoffHour }

func (r *Rules) ChangeCutoffHour() int { return r.changeCutoffHour }

// Now is the current instant in the operating zone.
func (r *Rules) Now() time.Time {
	return r.now().In(r.loc)
}

// Midnight returns the start of t's calendar day in the operating zone.
func (r *Rules) Midnight(t time.Time) time.Time {
	t = t.In(r.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.loc)
}

func (r *Rules) SameDay(a, b time.Time) bool {
	return r.Midnight(a).Equal(r.Midnight(b))
}

// IsBeforeDeadline reports whether date is today and the clock has not yet
// reached hour:minute. Any other day yields false.
func (r *Rules) IsBeforeDeadline(date time.Time, hour, minute int) bool {
	now := r.Now()
	if !r.SameDay(date, now) {
		return false
	}
	deadline := r.Midnight(now).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	return now.Before(deadline)
}

// CanModify reports whether an order delivered on deliveryDate may still be
// changed. Orders for today lock at the change cutoff.
func (r *Rules) CanModify(deliveryDate time.Time) bool {
	now := r.Now()
	if !r.SameDay(deliveryDate, now) {
		return true
	}
	return r.IsBeforeDeadline(now, r.changeCutoffHour, 0)
}

// NextEligibleEatingWindow returns the earliest delivery day the kitchen can
// still serve and the eating day that follows it, both as local midnights.
func (r *Rules) NextEligibleEatingWindow(acceptCutoffHour int) (delivery, eating time.Time) {
	now := r.Now()
	delivery = r.Midnight(now)
	if !r.IsBeforeDeadline(now, acceptCutoffHour, 0) {
		delivery = delivery.AddDate(0, 0, 1)
	}
	return delivery, delivery.AddDate(0, 0, 1)
}

// FirstEatingDay is the first eating day offered to users.
func (r *Rules) FirstEatingDay() time.Time {
	_, eating := r.NextEligibleEatingWindow(r.acceptCutoffHour)
	return eating
}

// EatingMonths returns the first day of the two nearest months that still
// contain an eligible eating day.
func (r *Rules) EatingMonths() []time.Time {
	first := r.FirstEatingDay()
	month := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, r.loc)
	return []time.Time{month, month.AddDate(0, 1, 0)}
}

// EatingDays lists every eligible eating day of month. Months that already
// elapsed yield nil.
func (r *Rules) EatingDays(month time.Time) []time.Time {
	month = month.In(r.loc)
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, r.loc)
	first := r.FirstEatingDay()

	var days []time.Time
	for d := start; d.Month() == start.Month(); d = d.AddDate(0, 0, 1) {
		if d.Before(first) {
			continue
		}
		days = append(days, d)
	}
	return days
}

// IsEligibleEatingDay re-checks a previously offered day against the clock.
func (r *Rules) IsEligibleEatingDay(day time.Time) bool {
	return !r.Midnight(day).Before(r.FirstEatingDay())
}

// DayStart returns local midnight of today shifted by offset days.
func (r *Rules) DayStart(offset int) time.Time {
	return r.Midnight(r.Now()).AddDate(0, 0, offset)
}

// ActiveOn reports whether an order delivered on delivery for duration days
// is in effect on day. Both ends of the window are inclusive.
func (r *Rules) ActiveOn(delivery time.Time, duration int, day time.Time) bool {
	first := r.Midnight(delivery)
	target := r.Midnight(day)
	if target.Equal(first) {
		return true
	}
	last := first.AddDate(0, 0, duration-1)
	return !target.Before(first) && !target.After(last)
}
