package rrule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/hray3182/calendar/internal/models"
)

// InvalidRecurrenceError rejects a repeat definition the expander cannot run.
type InvalidRecurrenceError struct {
	Reason string
}

func (e *InvalidRecurrenceError) Error() string {
	return "invalid recurrence: " + e.Reason
}

func (e *InvalidRecurrenceError) Is(target error) bool {
	return target == models.ErrInvalid
}

// ErrUnbounded is returned for a series without end date when the caller
// supplied no horizon either.
var ErrUnbounded = errors.New("recurrence has no end date and no horizon")

// Horizon bounds an expansion. The caller owns it; a zero field means no
// bound on that axis, but at least one bound must exist when the repeat has
// no end date.
type Horizon struct {
	Until    time.Time // inclusive last date
	MaxCount int
}

var freqs = map[models.RepeatType]rrule.Frequency{
	models.RepeatDaily:   rrule.DAILY,
	models.RepeatWeekly:  rrule.WEEKLY,
	models.RepeatMonthly: rrule.MONTHLY,
	models.RepeatYearly:  rrule.YEARLY,
}

// ROption translates a repeat definition anchored at anchor into rrule-go
// options. Monthly and yearly rules inherit the anchor's day (and month), so
// target months lacking that day are skipped, never clamped.
func ROption(anchor time.Time, r models.Repeat) (*rrule.ROption, error) {
	freq, ok := freqs[r.Type]
	if !ok {
		return nil, &InvalidRecurrenceError{Reason: fmt.Sprintf("unknown repeat type %q", r.Type)}
	}
	if r.Interval < 1 {
		return nil, &InvalidRecurrenceError{Reason: fmt.Sprintf("interval %d is below 1", r.Interval)}
	}

	opt := &rrule.ROption{
		Freq:     freq,
		Interval: r.Interval,
		Dtstart:  midnight(anchor),
	}
	if r.EndDate != "" {
		end, err := models.ParseDate(r.EndDate)
		if err != nil {
			return nil, &InvalidRecurrenceError{Reason: fmt.Sprintf("invalid end date %q", r.EndDate)}
		}
		opt.Until = end
	}
	return opt, nil
}

// Iterator returns a bounded lazy sequence of occurrence dates (midnight
// UTC). Each call restarts nothing; build a new iterator to restart.
func Iterator(anchor time.Time, r models.Repeat, h Horizon) (func() (time.Time, bool), error) {
	anchor = midnight(anchor)
	if r.Type == models.RepeatNone {
		done := false
		return func() (time.Time, bool) {
			if done {
				return time.Time{}, false
			}
			done = true
			return anchor, true
		}, nil
	}

	opt, err := ROption(anchor, r)
	if err != nil {
		return nil, err
	}
	if !h.Until.IsZero() {
		until := midnight(h.Until)
		if opt.Until.IsZero() || until.Before(opt.Until) {
			opt.Until = until
		}
	}
	if opt.Until.IsZero() && h.MaxCount <= 0 {
		return nil, ErrUnbounded
	}

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, &InvalidRecurrenceError{Reason: err.Error()}
	}

	next := rule.Iterator()
	count := 0
	return func() (time.Time, bool) {
		if h.MaxCount > 0 && count >= h.MaxCount {
			return time.Time{}, false
		}
		t, ok := next()
		if !ok {
			return time.Time{}, false
		}
		count++
		return t, true
	}, nil
}

// Expand collects every occurrence date of r anchored at anchor.
func Expand(anchor time.Time, r models.Repeat, h Horizon) ([]time.Time, error) {
	next, err := Iterator(anchor, r, h)
	if err != nil {
		return nil, err
	}

	var results []time.Time
	for {
		t, ok := next()
		if !ok {
			break
		}
		results = append(results, t)
	}
	return results, nil
}

// ExpandDates is Expand over YYYY-MM-DD strings.
func ExpandDates(anchorDate string, r models.Repeat, h Horizon) ([]string, error) {
	anchor, err := models.ParseDate(anchorDate)
	if err != nil {
		return nil, &InvalidRecurrenceError{Reason: fmt.Sprintf("invalid anchor date %q", anchorDate)}
	}
	dates, err := Expand(anchor, r, h)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = models.FormatDate(d)
	}
	return out, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Builder creates an RFC 5545 RRULE string from a repeat definition
type Builder struct {
	Freq     rrule.Frequency
	Interval int
	Until    *time.Time
	Count    int
}

// NewBuilder returns nil for a non-repeating definition.
func NewBuilder(r models.Repeat) (*Builder, error) {
	if r.Type == models.RepeatNone {
		return nil, nil
	}
	opt, err := ROption(time.Time{}, r)
	if err != nil {
		return nil, err
	}
	b := &Builder{Freq: opt.Freq, Interval: opt.Interval}
	if !opt.Until.IsZero() {
		// UNTIL covers the whole last day.
		until := opt.Until.Add(24*time.Hour - time.Second)
		b.Until = &until
	}
	return b, nil
}

func (b *Builder) String() string {
	var parts []string

	freqMap := map[rrule.Frequency]string{
		rrule.DAILY:   "DAILY",
		rrule.WEEKLY:  "WEEKLY",
		rrule.MONTHLY: "MONTHLY",
		rrule.YEARLY:  "YEARLY",
	}
	parts = append(parts, fmt.Sprintf("FREQ=%s", freqMap[b.Freq]))

	if b.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", b.Interval))
	}
	if b.Count > 0 {
		parts = append(parts, fmt.Sprintf("COUNT=%d", b.Count))
	}
	if b.Until != nil {
		parts = append(parts, fmt.Sprintf("UNTIL=%s", b.Until.UTC().Format("20060102T150405Z")))
	}

	return strings.Join(parts, ";")
}

// HumanReadable describes a repeat definition, e.g. "every 2 weeks until 2025-12-31".
func HumanReadable(r models.Repeat) string {
	unit := map[models.RepeatType]string{
		models.RepeatDaily:   "day",
		models.RepeatWeekly:  "week",
		models.RepeatMonthly: "month",
		models.RepeatYearly:  "year",
	}[r.Type]
	if unit == "" || r.Interval < 1 {
		return "once"
	}

	var result strings.Builder
	if r.Interval == 1 {
		result.WriteString("every " + unit)
	} else {
		result.WriteString(fmt.Sprintf("every %d %ss", r.Interval, unit))
	}
	if r.EndDate != "" {
		result.WriteString(" until " + r.EndDate)
	}
	return result.String()
}
