package task

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for input and storage.
const DateLayout = "2006-01-02"

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrDueDateRequired = errors.New("due date is required")
	ErrInvalidDueDate  = errors.New("due date must be YYYY-MM-DD")
)

// Reflection is a note recorded against an overdue task.
type Reflection struct {
	Text       string
	RecordedAt time.Time
}

type Task struct {
	ID          int64
	Title       string
	Description string
	// Due is a calendar date at midnight in the user's location.
	Due        time.Time
	Done       bool
	Reflection *Reflection
	// CreatedBy is the user name at creation time, empty when nobody had joined a team.
	CreatedBy string
}

// HasReflection reports whether a reflection has been recorded.
func (t Task) HasReflection() bool {
	return t.Reflection != nil
}

// Draft carries the user-supplied fields for creating or editing a task.
type Draft struct {
	Title       string
	Description string
	Due         string
}

// Fields is a validated Draft.
type Fields struct {
	Title       string
	Description string
	Due         time.Time
}

// Validate trims the draft and parses the due date in loc.
func (d Draft) Validate(loc *time.Location) (Fields, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return Fields{}, ErrTitleRequired
	}
	due, err := ParseDue(d.Due, loc)
	if err != nil {
		return Fields{}, err
	}
	return Fields{
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Due:         due,
	}, nil
}

// ParseDue parses a YYYY-MM-DD date at midnight in loc.
func ParseDue(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, ErrDueDateRequired
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, v, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDueDate
	}
	return t, nil
}

// Midnight returns the start of the calendar day of t in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatDate renders a due date for display and storage.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
