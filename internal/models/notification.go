package models

import (
	"fmt"
	"time"
)

// Notification records a one-time alert fired for an upcoming event.
// It lives only in process memory.
type Notification struct {
	EventID       string    `json:"eventId"`
	Title         string    `json:"title"`
	StartsAt      time.Time `json:"startsAt"`
	MinutesBefore int       `json:"minutesBefore"` // the event's notificationTime
	Location      string    `json:"location,omitempty"`
	Repeat        Repeat    `json:"repeat"`
	FiredAt       time.Time `json:"firedAt"`
}

func NewNotification(e *Event, start, firedAt time.Time) Notification {
	return Notification{
		EventID:       e.ID,
		Title:         e.Title,
		StartsAt:      start,
		MinutesBefore: e.NotificationTime,
		Location:      e.Location,
		Repeat:        e.Repeat,
		FiredAt:       firedAt,
	}
}

// Message is the user-facing alert text.
func (n Notification) Message() string {
	return fmt.Sprintf("%s starts in %d minutes", n.Title, n.MinutesBefore)
}
