package ical

import (
	"fmt"
	"slices"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/hray3182/calendar/internal/models"
	"github.com/hray3182/calendar/internal/rrule"
	"github.com/hray3182/calendar/internal/series"
)

const (
	ProductID = "-//hray3182//calendar//EN"

	// floating local wall time, no TZID
	localLayout = "20060102T150405"
)

var propertyRelatedTo = ics.ComponentProperty("RELATED-TO")

// Export renders events as an iCalendar document. A series whose stored
// occurrences are exactly what its rule produces becomes one VEVENT with an
// RRULE; any other series is written occurrence by occurrence, each linked to
// the series with RELATED-TO.
func Export(events []models.Event, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName("Calendar")

	grouped := make(map[string]bool)
	for _, s := range series.Group(events) {
		for _, m := range s.Members {
			grouped[m.ID] = true
		}

		rule, ok := collapsible(s.Members)
		if ok {
			ve := addEvent(cal, s.Members[0], "series-"+s.ID, stamp)
			ve.AddRrule(rule)
			continue
		}
		for _, m := range s.Members {
			ve := addEvent(cal, m, m.ID, stamp)
			ve.AddProperty(propertyRelatedTo, s.ID)
		}
	}

	for _, e := range events {
		if grouped[e.ID] {
			continue
		}
		addEvent(cal, e, e.ID, stamp)
	}

	return cal.Serialize()
}

func addEvent(cal *ics.Calendar, e models.Event, uid string, stamp time.Time) *ics.VEvent {
	ve := cal.AddEvent(uid)
	ve.SetDtStampTime(stamp)
	ve.SetSummary(e.Title)
	ve.SetProperty(ics.ComponentPropertyDtStart, wallTime(e.Date, e.StartTime))
	ve.SetProperty(ics.ComponentPropertyDtEnd, wallTime(e.Date, e.EndTime))
	if e.Description != "" {
		ve.SetDescription(e.Description)
	}
	if e.Location != "" {
		ve.SetLocation(e.Location)
	}
	if e.Category != "" {
		ve.AddProperty(ics.ComponentPropertyCategories, e.Category)
	}
	if e.NotificationTime > 0 {
		alarm := ve.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger(fmt.Sprintf("-PT%dM", e.NotificationTime))
		alarm.SetProperty(ics.ComponentPropertyDescription, e.Title)
	}
	return ve
}

// collapsible returns the RRULE for members when they are field-identical and
// their dates are exactly the expansion of the earliest member's rule.
func collapsible(members []models.Event) (string, bool) {
	first := members[0]
	key := series.KeyOf(first)
	dates := make([]string, len(members))
	for i, m := range members {
		if series.KeyOf(m) != key || m.Repeat.EndDate != first.Repeat.EndDate || m.NotificationTime != first.NotificationTime {
			return "", false
		}
		dates[i] = m.Date
	}

	// one extra occurrence shows whether the rule runs past the stored members
	expected, err := rrule.ExpandDates(first.Date, first.Repeat, rrule.Horizon{MaxCount: len(members) + 1})
	if err != nil {
		return "", false
	}

	b, err := rrule.NewBuilder(first.Repeat)
	if err != nil || b == nil {
		return "", false
	}
	if b.Until == nil {
		if len(expected) <= len(members) {
			return "", false
		}
		expected = expected[:len(members)]
		b.Count = len(members)
	}
	if !slices.Equal(expected, dates) {
		return "", false
	}
	return b.String(), true
}

func wallTime(date, clock string) string {
	t, err := time.Parse(models.DateLayout+" "+models.TimeLayout, date+" "+clock)
	if err != nil {
		return ""
	}
	return t.Format(localLayout)
}
