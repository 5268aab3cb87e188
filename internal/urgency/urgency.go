// Package urgency classifies tasks into urgency tiers by their due date.
//
// Tier, Label and Countdown compare the due date against the current instant
// without normalising the time of day. IsOverdue compares calendar days.
// The two rules can disagree on the day a task falls due and are kept apart
// on purpose.
package urgency

import (
	"fmt"
	"math"
	"time"

	"tiertrack/internal/task"
)

const day = 24 * time.Hour

// Tier is an urgency level from 1 (most urgent) to 4 (least urgent).
type Tier int

const (
	Critical  Tier = 1
	Important Tier = 2
	Urgent    Tier = 3
	Low       Tier = 4
)

func (t Tier) Valid() bool {
	return t >= Critical && t <= Low
}

func (t Tier) Name() string {
	switch t {
	case Critical:
		return "Critical"
	case Important:
		return "Important"
	case Urgent:
		return "Urgent"
	case Low:
		return "Low"
	default:
		return "Unknown"
	}
}

// Style hints how a countdown should be presented.
type Style int

const (
	StyleUrgent Style = iota
	StyleSafe
	StyleOverdue
)

func (s Style) String() string {
	switch s {
	case StyleSafe:
		return "safe"
	case StyleOverdue:
		return "overdue"
	default:
		return "urgent"
	}
}

// DaysUntilDue is ceil((due - now) / 24h).
func DaysUntilDue(due, now time.Time) int {
	d := math.Ceil(float64(due.Sub(now)) / float64(day))
	return int(d)
}

func TierFor(days int) Tier {
	switch {
	case days <= 3:
		return Critical
	case days <= 6:
		return Important
	case days <= 9:
		return Urgent
	default:
		return Low
	}
}

// TierOf classifies t relative to now.
func TierOf(t task.Task, now time.Time) Tier {
	return TierFor(DaysUntilDue(t.Due, now))
}

// Label returns the display label for t, e.g. "Level 2 (Important)".
func Label(t task.Task, now time.Time) string {
	days := DaysUntilDue(t.Due, now)
	if days < 0 {
		return fmt.Sprintf("Level 1 (OVERDUE by %d days)", -days)
	}
	tier := TierFor(days)
	return fmt.Sprintf("Level %d (%s)", tier, tier.Name())
}

// Countdown returns the countdown text for t and how to present it.
func Countdown(t task.Task, now time.Time) (string, Style) {
	days := DaysUntilDue(t.Due, now)
	switch {
	case days < 0:
		return fmt.Sprintf("OVERDUE by %d day(s)", -days), StyleOverdue
	case days == 0:
		return "DUE TODAY!", StyleUrgent
	case days <= 3:
		return fmt.Sprintf("Due in %d day(s)", days), StyleUrgent
	default:
		return fmt.Sprintf("Due in %d day(s)", days), StyleSafe
	}
}

// IsOverdue reports whether t is not done and falls due on an earlier
// calendar day than now.
func IsOverdue(t task.Task, now time.Time) bool {
	if t.Done {
		return false
	}
	due := task.Midnight(t.Due.In(now.Location()))
	return due.Before(task.Midnight(now))
}

// NeedsReflection reports whether t is overdue and has no reflection yet.
func NeedsReflection(t task.Task, now time.Time) bool {
	return IsOverdue(t, now) && !t.HasReflection()
}
