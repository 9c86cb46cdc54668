package overlap

import (
	"github.com/hray3182/calendar/internal/models"
)

// Overlaps reports whether a and b fall on the same date and their
// [startTime, endTime) ranges intersect. Back-to-back events do not overlap.
func Overlaps(a, b models.Event) bool {
	return a.Date == b.Date && a.StartTime < b.EndTime && a.EndTime > b.StartTime
}

// Find returns the events of pool that overlap candidate. An event with the
// candidate's own id is the candidate being edited and is skipped.
func Find(candidate models.Event, pool []models.Event) []models.Event {
	var conflicts []models.Event
	for _, other := range pool {
		if candidate.ID != "" && other.ID == candidate.ID {
			continue
		}
		if Overlaps(candidate, other) {
			conflicts = append(conflicts, other)
		}
	}
	return conflicts
}

// FindAll checks every materialized occurrence in candidates against pool
// and returns each conflicting pool event once, in pool order. Pool events
// whose id belongs to one of the candidates are skipped.
func FindAll(candidates []models.Event, pool []models.Event) []models.Event {
	own := make(map[string]struct{}, len(candidates))
	byDate := make(map[string][]models.Event)
	for _, c := range candidates {
		if c.ID != "" {
			own[c.ID] = struct{}{}
		}
		byDate[c.Date] = append(byDate[c.Date], c)
	}

	var conflicts []models.Event
	for _, other := range pool {
		if _, skip := own[other.ID]; skip && other.ID != "" {
			continue
		}
		for _, c := range byDate[other.Date] {
			if Overlaps(c, other) {
				conflicts = append(conflicts, other)
				break
			}
		}
	}
	return conflicts
}
