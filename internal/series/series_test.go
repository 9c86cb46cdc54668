package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/calendar/internal/models"
)

func occurrence(id, date string, r models.Repeat) models.Event {
	return models.Event{
		ID:        id,
		Title:     "Daily sync",
		Date:      date,
		StartTime: "09:00",
		EndTime:   "09:15",
		Category:  "work",
		Repeat:    r,
	}
}

var daily = models.Repeat{Type: models.RepeatDaily, Interval: 1}

func TestFindRelated_NonRecurring(t *testing.T) {
	target := occurrence("a", "2025-11-25", models.NoRepeat())
	pool := []models.Event{target, occurrence("b", "2025-11-26", models.NoRepeat())}

	assert.Empty(t, FindRelated(target, pool))
}

func TestFindRelated_ZeroIntervalIsNotRecurring(t *testing.T) {
	target := occurrence("a", "2025-11-25", models.Repeat{Type: models.RepeatDaily})
	pool := []models.Event{target, occurrence("b", "2025-11-26", models.Repeat{Type: models.RepeatDaily})}

	assert.Empty(t, FindRelated(target, pool))
}

func TestFindRelated_LoneMemberIsStandalone(t *testing.T) {
	target := occurrence("a", "2025-11-25", daily)
	assert.Empty(t, FindRelated(target, []models.Event{target}))

	other := occurrence("b", "2025-11-26", daily)
	other.Title = "Something else"
	assert.Empty(t, FindRelated(target, []models.Event{target, other}))
}

func TestFindRelated_Structural(t *testing.T) {
	pool := []models.Event{
		occurrence("a", "2025-11-25", daily),
		occurrence("b", "2025-11-26", daily),
		occurrence("c", "2025-11-27", daily),
		occurrence("d", "2025-11-27", models.Repeat{Type: models.RepeatDaily, Interval: 2}),
	}
	related := FindRelated(pool[1], pool)
	require.Len(t, related, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(related))
}

func TestFindRelated_PrefersExplicitID(t *testing.T) {
	withID := daily
	withID.ID = "series-1"
	pool := []models.Event{
		occurrence("a", "2025-11-25", withID),
		occurrence("b", "2025-11-26", withID),
		// structurally identical but not part of series-1
		occurrence("c", "2025-11-27", daily),
	}
	// edited member of series-1: structure differs but id matches
	edited := occurrence("x", "2025-11-28", withID)
	edited.Title = "Renamed"
	pool = append(pool, edited)

	related := FindRelated(pool[0], pool)
	assert.Equal(t, []string{"a", "b", "x"}, ids(related))
}

func TestGroup(t *testing.T) {
	withID := daily
	withID.ID = "s1"
	lone := occurrence("z", "2025-11-20", models.Repeat{Type: models.RepeatWeekly, Interval: 1})
	lone.Title = "Lone"
	pool := []models.Event{
		occurrence("b2", "2025-11-26", daily),
		occurrence("a1", "2025-12-01", withID),
		occurrence("b1", "2025-11-25", daily),
		lone,
		occurrence("n", "2025-11-22", models.NoRepeat()),
	}

	groups := Group(pool)
	require.Len(t, groups, 2)

	assert.False(t, groups[0].Explicit)
	assert.Equal(t, KeyOf(pool[0]).UID(), groups[0].ID)
	assert.Equal(t, []string{"b1", "b2"}, ids(groups[0].Members))

	assert.True(t, groups[1].Explicit)
	assert.Equal(t, "s1", groups[1].ID)
}

func TestKeyUIDIsStable(t *testing.T) {
	a := occurrence("a", "2025-11-25", daily)
	b := occurrence("b", "2026-01-01", daily)
	assert.Equal(t, KeyOf(a).UID(), KeyOf(b).UID())

	b.Location = "Room 2"
	assert.NotEqual(t, KeyOf(a).UID(), KeyOf(b).UID())
}

func ids(events []models.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}
