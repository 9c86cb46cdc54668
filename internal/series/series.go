package series

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hray3182/calendar/internal/models"
)

// Key is the structural identity of a series for occurrences that carry no
// explicit series id. Date and id are not part of it.
type Key struct {
	Type        models.RepeatType
	Interval    int
	Title       string
	StartTime   string
	EndTime     string
	Description string
	Location    string
	Category    string
}

func KeyOf(e models.Event) Key {
	return Key{
		Type:        e.Repeat.Type,
		Interval:    e.Repeat.Interval,
		Title:       e.Title,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Description: e.Description,
		Location:    e.Location,
		Category:    e.Category,
	}
}

var keyNamespace = uuid.MustParse("6f1c3c2e-5b7a-4d0e-9a43-2f8a4c1d7e55")

// UID is a stable hash of the key, usable as an external series identifier.
func (k Key) UID() string {
	fields := []string{
		string(k.Type), strconv.Itoa(k.Interval), k.Title, k.StartTime,
		k.EndTime, k.Description, k.Location, k.Category,
	}
	return uuid.NewSHA1(keyNamespace, []byte(strings.Join(fields, "\x1f"))).String()
}

// SameSeries is the structural fallback match.
func SameSeries(a, b models.Event) bool {
	return KeyOf(a) == KeyOf(b)
}

// FindRelated returns every pool member of target's series, target's own
// pool entry included. A non-recurring target, or a series with fewer than
// two members, yields nothing: the caller treats target as standalone.
func FindRelated(target models.Event, pool []models.Event) []models.Event {
	if !target.IsRecurring() {
		return nil
	}

	var members []models.Event
	for _, candidate := range pool {
		if !candidate.IsRecurring() {
			continue
		}
		if target.Repeat.ID != "" {
			if candidate.Repeat.ID == target.Repeat.ID {
				members = append(members, candidate)
			}
			continue
		}
		if candidate.Repeat.ID == "" && SameSeries(candidate, target) {
			members = append(members, candidate)
		}
	}

	if len(members) <= 1 {
		return nil
	}
	return members
}

// Series is one group produced by Group.
type Series struct {
	// ID is the explicit series id, or the structural key's UID.
	ID       string
	Explicit bool
	Members  []models.Event
}

// Group partitions the recurring events of pool by series identity.
// Groups formed by the structural fallback with a single member are
// standalone occurrences and are left out. Groups are ordered by their
// first member's date.
func Group(pool []models.Event) []Series {
	index := make(map[string]int)
	var groups []Series

	for _, e := range pool {
		if !e.IsRecurring() {
			continue
		}
		id, explicit := e.Repeat.ID, true
		if id == "" {
			id, explicit = KeyOf(e).UID(), false
		}
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, Series{ID: id, Explicit: explicit})
		}
		groups[i].Members = append(groups[i].Members, e)
	}

	out := groups[:0]
	for _, g := range groups {
		if !g.Explicit && len(g.Members) < 2 {
			continue
		}
		sort.SliceStable(g.Members, func(a, b int) bool { return models.Less(g.Members[a], g.Members[b]) })
		out = append(out, g)
	}
	sort.SliceStable(out, func(a, b int) bool { return models.Less(out[a].Members[0], out[b].Members[0]) })
	return out
}
