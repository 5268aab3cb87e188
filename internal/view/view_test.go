package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tiertrack/internal/task"
	"tiertrack/internal/urgency"
)

var now = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func mk(id int64, days int, done bool) task.Task {
	return task.Task{
		ID:    id,
		Title: "task",
		Due:   time.Date(2026, 10, 17+days, 0, 0, 0, 0, time.UTC),
		Done:  done,
	}
}

func ids(ts []task.Task) []int64 {
	out := make([]int64, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("all")
	require.NoError(t, err)
	require.Equal(t, All, f)

	f, err = ParseFilter(" 3 ")
	require.NoError(t, err)
	require.Equal(t, Filter(3), f)
	require.Equal(t, "3", f.String())

	_, err = ParseFilter("5")
	require.Error(t, err)
	_, err = ParseFilter("urgent")
	require.Error(t, err)
}

func TestVisibleSortsByTierThenDue(t *testing.T) {
	all := []task.Task{
		mk(1, 12, false), // tier 4
		mk(2, 5, false),  // tier 2
		mk(3, 1, false),  // tier 1
		mk(4, -2, false), // tier 1, earlier
		mk(5, 8, false),  // tier 3
	}
	got := Visible(all, State{}, now)
	require.Equal(t, []int64{4, 3, 2, 5, 1}, ids(got))
	require.Equal(t, []int64{1, 2, 3, 4, 5}, ids(all), "input must not be reordered")
}

func TestVisibleIsStable(t *testing.T) {
	all := []task.Task{mk(7, 2, false), mk(3, 2, false), mk(9, 2, false), mk(1, 0, false)}
	got := Visible(all, State{}, now)
	require.Equal(t, []int64{1, 7, 3, 9}, ids(got))
}

func TestVisibleCompletedOnly(t *testing.T) {
	all := []task.Task{mk(1, 1, true), mk(2, 1, false), mk(3, 20, true)}
	got := Visible(all, State{CompletedOnly: true}, now)
	require.Equal(t, []int64{1, 3}, ids(got))
}

func TestVisibleTierFilter(t *testing.T) {
	all := []task.Task{mk(1, 1, false), mk(2, 5, false), mk(3, 6, true), mk(4, 8, false)}

	got := Visible(all, State{Filter: Filter(urgency.Important)}, now)
	require.Equal(t, []int64{2, 3}, ids(got))

	got = Visible(all, State{Filter: Filter(urgency.Important), CompletedOnly: true}, now)
	require.Equal(t, []int64{3}, ids(got))
}

func TestVisibleEmptyWhenFilterMatchesNothing(t *testing.T) {
	all := []task.Task{mk(1, 0, false), mk(2, 8, false)}
	got := Visible(all, State{Filter: Filter(urgency.Important)}, now)
	require.Empty(t, got)
	require.Len(t, all, 2)
}

func TestVisibleIdempotent(t *testing.T) {
	all := []task.Task{mk(1, 9, false), mk(2, 1, true), mk(3, 7, false), mk(4, 2, false)}
	for _, f := range Filters {
		for _, completed := range []bool{false, true} {
			s := State{Filter: f, CompletedOnly: completed}
			once := Visible(all, s, now)
			twice := Visible(once, s, now)
			require.Equal(t, once, twice, "filter %s completed %t", f, completed)
		}
	}
}

func TestStateTransitions(t *testing.T) {
	s := State{}
	s = s.WithFilter(Filter(2))
	require.Equal(t, Filter(2), s.Filter)
	require.False(t, s.CompletedOnly)
	require.Equal(t, "View Completed", CompletedToggleLabel(s))

	s = s.ToggleCompleted()
	require.True(t, s.CompletedOnly)
	require.Equal(t, Filter(2), s.Filter)
	require.Equal(t, "View All", CompletedToggleLabel(s))

	_, hint := EmptyState(s)
	require.Equal(t, "No completed tasks yet!", hint)
	_, hint = EmptyState(s.ToggleCompleted())
	require.Equal(t, "Add a task to get started!", hint)
}

func TestCards(t *testing.T) {
	overdue := mk(1, -1, false)
	reflected := mk(2, -1, false)
	reflected.Reflection = &task.Reflection{Text: "late", RecordedAt: now}
	safe := mk(3, 10, false)

	cards := Cards([]task.Task{overdue, reflected, safe}, now)
	require.Len(t, cards, 3)

	require.True(t, cards[0].Overdue)
	require.True(t, cards[0].NeedsReflection)
	require.Equal(t, "Add", cards[0].ReflectionAction())
	require.Equal(t, "Level 1 (OVERDUE by 1 days)", cards[0].Label)

	require.True(t, cards[1].Overdue)
	require.False(t, cards[1].NeedsReflection)
	require.Equal(t, "Edit", cards[1].ReflectionAction())

	require.Equal(t, urgency.Low, cards[2].Tier)
	require.Equal(t, "Level 4 (Low)", cards[2].Label)
	require.Equal(t, urgency.StyleSafe, cards[2].CountdownStyle)
	require.Equal(t, "", cards[2].ReflectionAction())
}
