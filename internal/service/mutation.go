package service

import (
	"context"
	"fmt"

	"github.com/hray3182/calendar/internal/models"
	"github.com/hray3182/calendar/internal/overlap"
	"github.com/hray3182/calendar/internal/series"
)

// Scope selects whether an edit, move or delete touches one occurrence or
// the whole series.
type Scope string

const (
	ScopeSingle Scope = "single"
	ScopeSeries Scope = "series"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeSingle:
		return ScopeSingle, nil
	case ScopeSeries:
		return ScopeSeries, nil
	}
	return "", &models.ValidationError{Field: "scope", Message: fmt.Sprintf("unknown scope %q", s)}
}

type Options struct {
	Scope Scope
	// Force commits even when the result overlaps existing events.
	Force bool
}

// OverlapError reports the events a create or edit would overlap.
type OverlapError struct {
	Conflicts []models.Event
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("event overlaps %d existing event(s)", len(e.Conflicts))
}

func (s *Service) checkOverlap(candidates []models.Event, force bool) error {
	if force {
		return nil
	}
	var conflicts []models.Event
	if len(candidates) == 1 {
		conflicts = overlap.Find(candidates[0], s.Events())
	} else {
		conflicts = overlap.FindAll(candidates, s.Events())
	}
	if len(conflicts) > 0 {
		return &OverlapError{Conflicts: conflicts}
	}
	return nil
}

// Create validates e and persists it. A recurring e is materialized into one
// event per occurrence and submitted as one batch sharing a series id.
func (s *Service) Create(ctx context.Context, e models.Event, opts Options) ([]models.Event, error) {
	e.Normalize()
	e.ID = ""
	e.Repeat.ID = ""
	if err := e.Validate(); err != nil {
		return nil, err
	}

	occurrences, err := s.Materialize(e)
	if err != nil {
		return nil, err
	}
	if err := s.checkOverlap(occurrences, opts.Force); err != nil {
		return nil, err
	}

	var created []models.Event
	if e.IsRecurring() {
		created, err = s.store.CreateBatch(ctx, occurrences)
		if err != nil {
			return nil, classify("create series", err)
		}
	} else {
		one, err := s.store.Create(ctx, e)
		if err != nil {
			return nil, classify("create event", err)
		}
		created = []models.Event{one}
	}

	s.refresh(ctx)
	return created, nil
}

// Edit applies updated to the stored event with the same id. Single scope,
// or an event without a series, detaches the occurrence by stripping its
// repeat. Series scope applies the changed fields and any date shift to
// every member.
func (s *Service) Edit(ctx context.Context, updated models.Event, opts Options) ([]models.Event, error) {
	updated.Normalize()
	original, ok := s.Find(updated.ID)
	if !ok {
		return nil, models.EventNotFound(updated.ID)
	}

	related := series.FindRelated(original, s.Events())
	if opts.Scope != ScopeSeries || len(related) == 0 {
		return s.editSingle(ctx, updated, opts)
	}
	return s.editSeries(ctx, original, updated, related, opts)
}

func (s *Service) editSingle(ctx context.Context, updated models.Event, opts Options) ([]models.Event, error) {
	updated.Repeat = models.NoRepeat()
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkOverlap([]models.Event{updated}, opts.Force); err != nil {
		return nil, err
	}

	saved, err := s.store.Update(ctx, updated)
	if err != nil {
		return nil, classify("update event", err)
	}
	s.refresh(ctx)
	return []models.Event{saved}, nil
}

func (s *Service) editSeries(ctx context.Context, original, updated models.Event, related []models.Event, opts Options) ([]models.Event, error) {
	// The repeat definition is not part of a series edit; members keep theirs.
	check := updated
	check.Repeat = models.NoRepeat()
	if err := check.Validate(); err != nil {
		return nil, err
	}

	patch := models.SeriesPatch{
		Title:            &updated.Title,
		Description:      &updated.Description,
		Location:         &updated.Location,
		Category:         &updated.Category,
		NotificationTime: &updated.NotificationTime,
	}
	if updated.Date != original.Date {
		patch.Date = &updated.Date
		patch.ReferenceID = original.ID
	}

	members, err := patch.Apply(related)
	if err != nil {
		return nil, err
	}
	if err := s.checkOverlap(members, opts.Force); err != nil {
		return nil, err
	}

	var saved []models.Event
	if seriesID := original.Repeat.ID; seriesID != "" {
		saved, err = s.store.UpdateSeries(ctx, seriesID, patch)
		if err != nil {
			return nil, classify("update series", err)
		}
	} else {
		saved, err = s.store.UpdateBatch(ctx, members)
		if err != nil {
			return nil, classify("update events", err)
		}
	}

	s.refresh(ctx)
	return saved, nil
}

// Move changes only the date of the event with id, with the same scope rules
// as Edit. In series scope every member shifts by the same number of days.
func (s *Service) Move(ctx context.Context, id, date string, opts Options) ([]models.Event, error) {
	current, ok := s.Find(id)
	if !ok {
		return nil, models.EventNotFound(id)
	}
	if _, err := models.ParseDate(date); err != nil {
		return nil, &models.ValidationError{Field: "date", Message: "invalid date " + date}
	}
	current.Date = date
	return s.Edit(ctx, current, opts)
}

// Delete removes the event with id, or its whole series in series scope.
// Series scope on a standalone event is a single delete.
func (s *Service) Delete(ctx context.Context, id string, opts Options) error {
	target, ok := s.Find(id)

	var related []models.Event
	if ok && opts.Scope == ScopeSeries {
		related = series.FindRelated(target, s.Events())
	}

	var err error
	switch {
	case len(related) == 0:
		if err = s.store.Delete(ctx, id); err != nil {
			return classify("delete event", err)
		}
	case target.Repeat.ID != "":
		if err = s.store.DeleteSeries(ctx, target.Repeat.ID); err != nil {
			return classify("delete series", err)
		}
	default:
		ids := make([]string, len(related))
		for i, e := range related {
			ids[i] = e.ID
		}
		if err = s.store.DeleteBatch(ctx, ids); err != nil {
			return classify("delete events", err)
		}
	}

	s.refresh(ctx)
	return nil
}
