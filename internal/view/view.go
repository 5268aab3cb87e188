// Package view turns the task collection into the ordered, filtered
// sequence that is shown to the user.
package view

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"tiertrack/internal/task"
	"tiertrack/internal/urgency"
)

// Filter selects a single tier, or every tier when All.
type Filter int

const All Filter = 0

// Filters lists every selectable filter in display order.
var Filters = []Filter{All, Filter(urgency.Critical), Filter(urgency.Important), Filter(urgency.Urgent), Filter(urgency.Low)}

func ParseFilter(v string) (Filter, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == "all" {
		return All, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || !urgency.Tier(n).Valid() {
		return All, fmt.Errorf("invalid tier filter %q: want all or 1-4", v)
	}
	return Filter(n), nil
}

func (f Filter) String() string {
	if f == All {
		return "all"
	}
	return strconv.Itoa(int(f))
}

// State is the view configuration. Every combination is valid.
type State struct {
	Filter        Filter
	CompletedOnly bool
}

func (s State) WithFilter(f Filter) State {
	s.Filter = f
	return s
}

func (s State) ToggleCompleted() State {
	s.CompletedOnly = !s.CompletedOnly
	return s
}

// Visible filters all by state and orders the result by tier, then due
// date. Tasks with equal keys keep their relative order from all.
func Visible(all []task.Task, s State, now time.Time) []task.Task {
	out := make([]task.Task, 0, len(all))
	for _, t := range all {
		if s.CompletedOnly && !t.Done {
			continue
		}
		if s.Filter != All && Filter(urgency.TierOf(t, now)) != s.Filter {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, func(a, b task.Task) int {
		if ta, tb := urgency.TierOf(a, now), urgency.TierOf(b, now); ta != tb {
			return int(ta) - int(tb)
		}
		return a.Due.Compare(b.Due)
	})
	return out
}

// Card is the render data for one task.
type Card struct {
	Task            task.Task
	Tier            urgency.Tier
	Label           string
	Countdown       string
	CountdownStyle  urgency.Style
	Overdue         bool
	NeedsReflection bool
}

// ReflectionAction returns "Add" or "Edit" for overdue tasks and "" when
// no reflection can be recorded.
func (c Card) ReflectionAction() string {
	if !c.Overdue {
		return ""
	}
	if c.Task.HasReflection() {
		return "Edit"
	}
	return "Add"
}

func Cards(tasks []task.Task, now time.Time) []Card {
	cards := make([]Card, 0, len(tasks))
	for _, t := range tasks {
		text, style := urgency.Countdown(t, now)
		cards = append(cards, Card{
			Task:            t,
			Tier:            urgency.TierOf(t, now),
			Label:           urgency.Label(t, now),
			Countdown:       text,
			CountdownStyle:  style,
			Overdue:         urgency.IsOverdue(t, now),
			NeedsReflection: urgency.NeedsReflection(t, now),
		})
	}
	return cards
}

// EmptyState returns the heading and hint shown when nothing is visible.
func EmptyState(s State) (title, hint string) {
	if s.CompletedOnly {
		return "No tasks found", "No completed tasks yet!"
	}
	return "No tasks found", "Add a task to get started!"
}

// CompletedToggleLabel names the action the completed-view toggle performs next.
func CompletedToggleLabel(s State) string {
	if s.CompletedOnly {
		return "View All"
	}
	return "View Completed"
}
