package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/hray3182/calendar/internal/models"
	"github.com/hray3182/calendar/internal/overlap"
	"github.com/hray3182/calendar/internal/rrule"
	"github.com/hray3182/calendar/internal/series"
)

// DefaultMaxOccurrences caps the expansion of a series without an end date.
const DefaultMaxOccurrences = 366

// Service holds the in-memory event list and applies every mutation through
// the store. The list only changes on a successful reload.
type Service struct {
	store Store

	mu     sync.RWMutex
	events []models.Event

	maxOccurrences int
	onChange       func()
}

type Option func(*Service)

// WithMaxOccurrences sets the cap handed to the expander for open-ended series.
func WithMaxOccurrences(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxOccurrences = n
		}
	}
}

// WithOnChange registers fn to run after every successful reload.
func WithOnChange(fn func()) Option {
	return func(s *Service) {
		s.onChange = fn
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:          store,
		maxOccurrences: DefaultMaxOccurrences,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reload replaces the in-memory list with a full snapshot from the store.
// On failure the previous list is kept.
func (s *Service) Reload(ctx context.Context) error {
	events, err := s.store.List(ctx)
	if err != nil {
		return classify("list events", err)
	}
	sort.SliceStable(events, func(i, j int) bool { return models.Less(events[i], events[j]) })

	s.mu.Lock()
	s.events = events
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange()
	}
	return nil
}

// refresh reloads after a committed write. The write already succeeded, so a
// failed reload is logged and the caller still gets the write's result.
func (s *Service) refresh(ctx context.Context) {
	if err := s.Reload(ctx); err != nil {
		log.Printf("Failed to reload events after write: %v", err)
	}
}

// Events returns a copy of the current list.
func (s *Service) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Service) Find(id string) (models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.ID == id {
			return e, true
		}
	}
	return models.Event{}, false
}

// Related returns the series members of the event with id, itself included.
// It is empty when the event is standalone.
func (s *Service) Related(id string) ([]models.Event, error) {
	target, ok := s.Find(id)
	if !ok {
		return nil, models.EventNotFound(id)
	}
	return series.FindRelated(target, s.Events()), nil
}

// Series groups the current list by series identity.
func (s *Service) Series() []series.Series {
	return series.Group(s.Events())
}

// Expand returns the occurrence dates of r anchored at date. A zero horizon
// falls back to the configured occurrence cap.
func (s *Service) Expand(date string, r models.Repeat, h rrule.Horizon) ([]string, error) {
	if h.Until.IsZero() && h.MaxCount <= 0 {
		h.MaxCount = s.maxOccurrences
	}
	return rrule.ExpandDates(date, r, h)
}

// Materialize turns a recurring definition into one event per occurrence
// date. A non-recurring event materializes to itself.
func (s *Service) Materialize(e models.Event) ([]models.Event, error) {
	if !e.IsRecurring() {
		return []models.Event{e}, nil
	}
	dates, err := s.Expand(e.Date, e.Repeat, rrule.Horizon{})
	if err != nil {
		return nil, err
	}
	out := make([]models.Event, len(dates))
	for i, d := range dates {
		occ := e
		occ.Date = d
		out[i] = occ
	}
	return out, nil
}

// Overlaps returns the current events that overlap candidate. A recurring
// candidate is checked occurrence by occurrence.
func (s *Service) Overlaps(candidate models.Event) ([]models.Event, error) {
	candidate.Normalize()
	occurrences, err := s.Materialize(candidate)
	if err != nil {
		return nil, err
	}
	if len(occurrences) == 1 {
		return overlap.Find(occurrences[0], s.Events()), nil
	}
	return overlap.FindAll(occurrences, s.Events()), nil
}

// Search matches query case-insensitively against title, description and
// location. An empty query returns everything.
func (s *Service) Search(query string) []models.Event {
	events := s.Events()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return events
	}

	var out []models.Event
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Title), query) ||
			strings.Contains(strings.ToLower(e.Description), query) ||
			strings.Contains(strings.ToLower(e.Location), query) {
			out = append(out, e)
		}
	}
	return out
}

// Week returns the events of the Sunday-to-Saturday week containing date.
func (s *Service) Week(date string) ([]models.Event, error) {
	day, err := models.ParseDate(date)
	if err != nil {
		return nil, &models.ValidationError{Field: "date", Message: "invalid date " + date}
	}
	first := day.AddDate(0, 0, -int(day.Weekday()))
	return s.between(models.FormatDate(first), models.FormatDate(first.AddDate(0, 0, 6))), nil
}

// Month returns the events of the calendar month containing date.
func (s *Service) Month(date string) ([]models.Event, error) {
	day, err := models.ParseDate(date)
	if err != nil {
		return nil, &models.ValidationError{Field: "date", Message: "invalid date " + date}
	}
	first := day.AddDate(0, 0, 1-day.Day())
	return s.between(models.FormatDate(first), models.FormatDate(first.AddDate(0, 1, -1))), nil
}

func (s *Service) between(from, to string) []models.Event {
	var out []models.Event
	for _, e := range s.Events() {
		if e.Date >= from && e.Date <= to {
			out = append(out, e)
		}
	}
	return out
}
