package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/hray3182/calendar/internal/models"
)

const DefaultCheckInterval = time.Second

// EventSource yields the latest in-memory event list. It is read on every
// check; the scheduler never caches a snapshot across checks.
type EventSource interface {
	Events() []models.Event
}

// Notifier delivers a fired notification somewhere a user will see it.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

type Scheduler struct {
	source        EventSource
	notifiers     []Notifier
	notified      *NotifiedSet
	checkInterval time.Duration
	notifyCh      chan struct{}
	now           func() time.Time
}

// New builds a scheduler over source. notified is owned by the caller so the
// presentation layer can read it; pass NewNotifiedSet() for a fresh session.
func New(source EventSource, notified *NotifiedSet, notifiers ...Notifier) *Scheduler {
	if notified == nil {
		notified = NewNotifiedSet()
	}
	return &Scheduler{
		source:        source,
		notifiers:     notifiers,
		notified:      notified,
		checkInterval: DefaultCheckInterval,
		notifyCh:      make(chan struct{}, 1),
		now:           time.Now,
	}
}

func (s *Scheduler) SetCheckInterval(d time.Duration) {
	if d > 0 {
		s.checkInterval = d
	}
}

func (s *Scheduler) Notified() *NotifiedSet {
	return s.notified
}

// Notify triggers an immediate check. Non-blocking if a check is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel already has a pending notification, skip
	}
}

// Start runs the check loop until ctx is canceled. The ticker is released on
// return, so canceling ctx leaves no timer behind.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("Scheduler started (interval %s)", s.checkInterval)
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	s.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.Check(ctx)
		case <-s.notifyCh:
			s.Check(ctx)
		}
	}
}

// Check polls the current event list once and delivers every notification
// that fired. It returns the fired notifications.
func (s *Scheduler) Check(ctx context.Context) []models.Notification {
	fired := Poll(s.now(), s.source.Events(), s.notified)

	for _, n := range fired {
		for _, notifier := range s.notifiers {
			if err := notifier.Notify(ctx, n); err != nil {
				log.Printf("Failed to deliver notification for event %s: %v", n.EventID, err)
			}
		}
	}
	return fired
}

// Due reports whether e is inside its notification window at now:
// 0 < start - now <= notificationTime minutes.
func Due(e models.Event, now time.Time) (time.Time, bool) {
	if e.NotificationTime <= 0 {
		return time.Time{}, false
	}
	start, err := e.Start()
	if err != nil {
		return time.Time{}, false
	}
	until := start.Sub(now)
	return start, until > 0 && until <= time.Duration(e.NotificationTime)*time.Minute
}

// Poll marks every event that has entered its window and has not fired yet,
// and returns the newly fired notifications. An id fires at most once per
// set, whatever the clock does afterwards.
func Poll(now time.Time, events []models.Event, notified *NotifiedSet) []models.Notification {
	var fired []models.Notification
	for i := range events {
		e := &events[i]
		if e.ID == "" || notified.Has(e.ID) {
			continue
		}
		start, due := Due(*e, now)
		if !due {
			continue
		}
		if !notified.Mark(e.ID, now) {
			continue
		}
		fired = append(fired, models.NewNotification(e, start, now))
	}
	return fired
}
