package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tiertrack/internal/task"
)

// Keys used in the KV store.
const (
	KeyTasks       = "tasks"
	KeyCurrentUser = "currentUser"
	KeyCurrentTeam = "currentTeam"
)

type taskRecord struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Desc           string  `json:"desc"`
	Date           string  `json:"date"`
	Done           bool    `json:"done"`
	Reflection     *string `json:"reflection"`
	ReflectionDate *string `json:"reflectionDate"`
	CreatedBy      *string `json:"createdBy"`
}

// EncodeTasks renders tasks as the JSON array stored under KeyTasks.
func EncodeTasks(tasks []task.Task) (string, error) {
	recs := make([]taskRecord, 0, len(tasks))
	for _, t := range tasks {
		rec := taskRecord{
			ID:    t.ID,
			Title: t.Title,
			Desc:  t.Description,
			Date:  task.FormatDate(t.Due),
			Done:  t.Done,
		}
		if t.Reflection != nil {
			text := t.Reflection.Text
			at := t.Reflection.RecordedAt.UTC().Format(time.RFC3339Nano)
			rec.Reflection = &text
			rec.ReflectionDate = &at
		}
		if t.CreatedBy != "" {
			by := t.CreatedBy
			rec.CreatedBy = &by
		}
		recs = append(recs, rec)
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeTasks parses a KeyTasks value. Due dates are placed in loc.
func DecodeTasks(raw string, loc *time.Location) ([]task.Task, error) {
	if loc == nil {
		loc = time.Local
	}
	var recs []taskRecord
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	tasks := make([]task.Task, 0, len(recs))
	for _, rec := range recs {
		due, err := parseStoredDate(rec.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", rec.ID, err)
		}
		t := task.Task{
			ID:          rec.ID,
			Title:       rec.Title,
			Description: rec.Desc,
			Due:         due,
			Done:        rec.Done,
		}
		r, err := decodeReflection(rec)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", rec.ID, err)
		}
		t.Reflection = r
		if rec.CreatedBy != nil {
			t.CreatedBy = *rec.CreatedBy
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// decodeReflection requires reflection and reflectionDate to be both set
// or both null.
func decodeReflection(rec taskRecord) (*task.Reflection, error) {
	switch {
	case rec.Reflection == nil && rec.ReflectionDate == nil:
		return nil, nil
	case rec.Reflection == nil:
		return nil, fmt.Errorf("reflectionDate %q without reflection", *rec.ReflectionDate)
	case rec.ReflectionDate == nil:
		return nil, errors.New("reflection without reflectionDate")
	}
	at, err := time.Parse(time.RFC3339Nano, *rec.ReflectionDate)
	if err != nil {
		return nil, fmt.Errorf("invalid reflectionDate %q", *rec.ReflectionDate)
	}
	return &task.Reflection{Text: *rec.Reflection, RecordedAt: at}, nil
}

// parseStoredDate accepts a plain date or a full ISO timestamp.
func parseStoredDate(v string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(task.DateLayout, v, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", v)
	}
	return task.Midnight(t.In(loc)), nil
}

// LoadTasks reads the task collection. A missing key yields no tasks.
func LoadTasks(ctx context.Context, kv KV, loc *time.Location) ([]task.Task, error) {
	raw, ok, err := kv.Get(ctx, KeyTasks)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	return DecodeTasks(raw, loc)
}

func SaveTasks(ctx context.Context, kv KV, tasks []task.Task) error {
	raw, err := EncodeTasks(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := kv.Set(ctx, KeyTasks, raw); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// LoadIdentity reads the current user and team. Empty means absent.
func LoadIdentity(ctx context.Context, kv KV) (user, team string, err error) {
	user, _, err = kv.Get(ctx, KeyCurrentUser)
	if err != nil {
		return "", "", fmt.Errorf("load current user: %w", err)
	}
	team, _, err = kv.Get(ctx, KeyCurrentTeam)
	if err != nil {
		return "", "", fmt.Errorf("load current team: %w", err)
	}
	return user, team, nil
}

func SaveIdentity(ctx context.Context, kv KV, user, team string) error {
	if err := kv.Set(ctx, KeyCurrentUser, user); err != nil {
		return fmt.Errorf("save current user: %w", err)
	}
	if err := kv.Set(ctx, KeyCurrentTeam, team); err != nil {
		return fmt.Errorf("save current team: %w", err)
	}
	return nil
}
