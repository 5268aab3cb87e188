package app

import (
	"errors"
	"slices"
	"strings"
	"time"

	"tiertrack/internal/task"
	"tiertrack/internal/view"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrReflectionRequired = errors.New("reflection text is required")
	ErrIdentityRequired   = errors.New("user name and team name are required")
)

// Identity is the current user and team. Both are empty when nobody has joined.
type Identity struct {
	User string
	Team string
}

func (i Identity) Joined() bool {
	return i.User != "" && i.Team != ""
}

// State is the whole application state. Operations return a new State and
// never modify the receiver's task slice.
type State struct {
	Tasks    []task.Task
	Identity Identity
	View     view.State
	// Loc is where due dates typed by the user are placed.
	Loc    *time.Location
	nextID int64
}

// NewState builds a State around a loaded collection. Ids continue after
// the largest one present.
func NewState(tasks []task.Task, id Identity, vs view.State, loc *time.Location) State {
	var maxID int64
	for _, t := range tasks {
		maxID = max(maxID, t.ID)
	}
	if loc == nil {
		loc = time.Local
	}
	return State{
		Tasks:    tasks,
		Identity: id,
		View:     vs,
		Loc:      loc,
		nextID:   maxID + 1,
	}
}

// NextID is the id the next created task will receive.
func (s State) NextID() int64 {
	if s.nextID == 0 {
		return 1
	}
	return s.nextID
}

func (s State) index(id int64) int {
	return slices.IndexFunc(s.Tasks, func(t task.Task) bool { return t.ID == id })
}

// Find returns the task with id.
func (s State) Find(id int64) (task.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return task.Task{}, false
	}
	return s.Tasks[i], true
}

// update applies fn to a copy of the task with id.
func (s State) update(id int64, fn func(*task.Task)) (State, task.Task, error) {
	i := s.index(id)
	if i < 0 {
		return s, task.Task{}, ErrTaskNotFound
	}
	tasks := slices.Clone(s.Tasks)
	fn(&tasks[i])
	s.Tasks = tasks
	return s, tasks[i], nil
}

func (s State) AddTask(d task.Draft) (State, task.Task, error) {
	f, err := d.Validate(s.Loc)
	if err != nil {
		return s, task.Task{}, err
	}
	t := task.Task{
		ID:          s.NextID(),
		Title:       f.Title,
		Description: f.Description,
		Due:         f.Due,
		CreatedBy:   s.Identity.User,
	}
	tasks := make([]task.Task, 0, len(s.Tasks)+1)
	tasks = append(tasks, s.Tasks...)
	s.Tasks = append(tasks, t)
	s.nextID = t.ID + 1
	return s, t, nil
}

// EditTask replaces the title, description and due date of a task.
func (s State) EditTask(id int64, d task.Draft) (State, task.Task, error) {
	if _, ok := s.Find(id); !ok {
		return s, task.Task{}, ErrTaskNotFound
	}
	f, err := d.Validate(s.Loc)
	if err != nil {
		return s, task.Task{}, err
	}
	return s.update(id, func(t *task.Task) {
		t.Title = f.Title
		t.Description = f.Description
		t.Due = f.Due
	})
}

func (s State) DeleteTask(id int64) (State, error) {
	i := s.index(id)
	if i < 0 {
		return s, ErrTaskNotFound
	}
	s.Tasks = slices.Delete(slices.Clone(s.Tasks), i, i+1)
	return s, nil
}

func (s State) ToggleDone(id int64) (State, task.Task, error) {
	return s.update(id, func(t *task.Task) {
		t.Done = !t.Done
	})
}

// SubmitReflection records text against a task. The timestamp is replaced
// on every submission.
func (s State) SubmitReflection(id int64, text string, now time.Time) (State, task.Task, error) {
	text = strings.TrimSpace(text)
	if _, ok := s.Find(id); !ok {
		return s, task.Task{}, ErrTaskNotFound
	}
	if text == "" {
		return s, task.Task{}, ErrReflectionRequired
	}
	return s.update(id, func(t *task.Task) {
		t.Reflection = &task.Reflection{Text: text, RecordedAt: now}
	})
}

func (s State) JoinTeam(user, team string) (State, error) {
	user, team = strings.TrimSpace(user), strings.TrimSpace(team)
	if user == "" || team == "" {
		return s, ErrIdentityRequired
	}
	s.Identity = Identity{User: user, Team: team}
	return s, nil
}

func (s State) LeaveTeam() State {
	s.Identity = Identity{}
	return s
}

func (s State) WithFilter(f view.Filter) State {
	s.View = s.View.WithFilter(f)
	return s
}

func (s State) ToggleCompleted() State {
	s.View = s.View.ToggleCompleted()
	return s
}

// Visible is the ordered, filtered task sequence at now.
func (s State) Visible(now time.Time) []task.Task {
	return view.Visible(s.Tasks, s.View, now)
}

// PendingReflections returns overdue tasks that have no reflection.
func (s State) PendingReflections(now time.Time) []task.Task {
	var out []task.Task
	for _, c := range view.Cards(s.Tasks, now) {
		if c.NeedsReflection {
			out = append(out, c.Task)
		}
	}
	return out
}
