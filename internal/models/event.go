package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type RepeatType string

const (
	RepeatNone    RepeatType = "none"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatYearly  RepeatType = "yearly"
)

// Valid reports whether t is one of the five recognized repeat types.
func (t RepeatType) Valid() bool {
	switch t {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	}
	return false
}

type Repeat struct {
	Type     RepeatType `json:"type"`
	Interval int        `json:"interval"`
	EndDate  string     `json:"endDate,omitempty"` // inclusive, YYYY-MM-DD
	ID       string     `json:"id,omitempty"`      // series identifier shared by materialized occurrences
}

// NoRepeat is the repeat value of a standalone occurrence.
func NoRepeat() Repeat {
	return Repeat{Type: RepeatNone, Interval: 0}
}

type Event struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Date             string `json:"date"`      // YYYY-MM-DD
	StartTime        string `json:"startTime"` // HH:MM
	EndTime          string `json:"endTime"`   // HH:MM
	Description      string `json:"description"`
	Location         string `json:"location"`
	Category         string `json:"category"`
	Repeat           Repeat `json:"repeat"`
	NotificationTime int    `json:"notificationTime"` // minutes before start, 0 disables
}

// IsRecurring returns true if this event belongs to a recurrence definition
func (e *Event) IsRecurring() bool {
	return e.Repeat.Type != RepeatNone && e.Repeat.Type != "" && e.Repeat.Interval > 0
}

// Start returns the local wall-clock start of the event.
func (e *Event) Start() (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+e.StartTime, time.Local)
}

// End returns the local wall-clock end of the event.
func (e *Event) End() (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+e.EndTime, time.Local)
}

// Normalize trims free-text fields and collapses a non-repeating definition
// to {type: none, interval: 0}.
func (e *Event) Normalize() {
	e.Title = strings.TrimSpace(e.Title)
	e.Date = strings.TrimSpace(e.Date)
	e.StartTime = strings.TrimSpace(e.StartTime)
	e.EndTime = strings.TrimSpace(e.EndTime)
	if e.Repeat.Type == "" || e.Repeat.Type == RepeatNone {
		e.Repeat = NoRepeat()
	}
}

// Validate checks the event invariants. It does not normalize.
func (e *Event) Validate() error {
	if e.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if _, err := ParseDate(e.Date); err != nil {
		return &ValidationError{Field: "date", Message: fmt.Sprintf("invalid date %q", e.Date)}
	}
	if !validClock(e.StartTime) {
		return &ValidationError{Field: "startTime", Message: fmt.Sprintf("invalid start time %q", e.StartTime)}
	}
	if !validClock(e.EndTime) {
		return &ValidationError{Field: "endTime", Message: fmt.Sprintf("invalid end time %q", e.EndTime)}
	}
	// Zero-padded HH:MM compares correctly as strings.
	if e.StartTime >= e.EndTime {
		return &ValidationError{Field: "endTime", Message: "start time must be before end time"}
	}
	if e.NotificationTime < 0 {
		return &ValidationError{Field: "notificationTime", Message: "notification time must not be negative"}
	}
	return e.Repeat.Validate(e.Date)
}

// Validate checks the repeat definition against the anchor date it belongs to.
func (r Repeat) Validate(anchor string) error {
	if !r.Type.Valid() {
		return &ValidationError{Field: "repeat.type", Message: fmt.Sprintf("unknown repeat type %q", r.Type)}
	}
	if r.Type == RepeatNone {
		if r.Interval != 0 || r.EndDate != "" || r.ID != "" {
			return &ValidationError{Field: "repeat", Message: "a non-repeating event carries no interval, end date or series id"}
		}
		return nil
	}
	if r.Interval < 1 {
		return &ValidationError{Field: "repeat.interval", Message: "interval must be at least 1"}
	}
	if r.EndDate != "" {
		end, err := ParseDate(r.EndDate)
		if err != nil {
			return &ValidationError{Field: "repeat.endDate", Message: fmt.Sprintf("invalid end date %q", r.EndDate)}
		}
		if start, err := ParseDate(anchor); err == nil && end.Before(start) {
			return &ValidationError{Field: "repeat.endDate", Message: "end date is before the event date"}
		}
	}
	return nil
}

func validClock(s string) bool {
	if len(s) != len(TimeLayout) {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC, so day
// arithmetic never crosses a DST transition.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts a calendar date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns to - from in whole days.
func DaysBetween(from, to string) (int, error) {
	f, err := ParseDate(from)
	if err != nil {
		return 0, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return 0, err
	}
	return int(t.Sub(f).Hours() / 24), nil
}

// Less orders events by date, then start time, then id.
func Less(a, b Event) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if a.StartTime != b.StartTime {
		return a.StartTime < b.StartTime
	}
	return a.ID < b.ID
}
