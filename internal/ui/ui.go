package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tiertrack/internal/app"
	"tiertrack/internal/config"
	"tiertrack/internal/task"
	"tiertrack/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
)

type formKind int

const (
	formAdd formKind = iota
	formEdit
	formReflect
	formTeam
)

// formState holds the fields of a multi-field input form.
type formState struct {
	kind   formKind
	taskID int64
	labels []string
	values []string
	index  int
}

type confirmKind int

const (
	confirmDelete confirmKind = iota
	confirmLeave
)

type confirmState struct {
	kind   confirmKind
	taskID int64
}

type Model struct {
	ctrl    *app.Controller
	cfg     config.Config
	cards   []view.Card
	cursor  int
	mode    mode
	input   textinput.Model
	status  string
	form    *formState
	confirm *confirmState
}

func Run(ctrl *app.Controller, cfg config.Config) error {
	program := tea.NewProgram(New(ctrl, cfg))
	_, err := program.Run()
	return err
}

func New(ctrl *app.Controller, cfg config.Config) Model {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 40

	m := Model{
		ctrl:   ctrl,
		cfg:    cfg,
		input:  ti,
		mode:   modeList,
		status: fmt.Sprintf("Press '%s' to add, '%s' to toggle, '%s' to delete.", cfg.Keys.Add, keyName(cfg.Keys.Toggle), cfg.Keys.Delete),
	}
	m.refresh()
	return m
}

// refreshInterval keeps countdowns and overdue banners current while the
// program stays open across midnight.
const refreshInterval = time.Minute

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirm != nil {
			return m.updateConfirm(msg.String())
		}
		if m.form != nil {
			return m.updateForm(msg.String(), msg)
		}
		return m.updateListMode(msg.String())
	case tickMsg:
		m.refresh()
		return m, tick()
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

// refresh recomputes the visible cards and keeps the cursor in range.
func (m *Model) refresh() {
	m.cards = m.ctrl.Cards()
	m.cursor = clampCursor(m.cursor, len(m.cards))
}

// focus moves the cursor to the task with id if it is visible.
func (m *Model) focus(id int64) {
	for i, c := range m.cards {
		if c.Task.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m Model) selected() (view.Card, bool) {
	if len(m.cards) == 0 {
		return view.Card{}, false
	}
	return m.cards[clampCursor(m.cursor, len(m.cards))], true
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		if len(m.cards) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.cards))
	case k.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.cards))
		}
	case k.Add:
		return m.startForm(&formState{
			kind:   formAdd,
			labels: []string{"title", "description", "due date (YYYY-MM-DD)"},
			values: []string{"", "", ""},
		})
	case k.Edit:
		c, ok := m.selected()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startForm(&formState{
			kind:   formEdit,
			taskID: c.Task.ID,
			labels: []string{"title", "description", "due date (YYYY-MM-DD)"},
			values: []string{c.Task.Title, c.Task.Description, task.FormatDate(c.Task.Due)},
		})
	case k.Reflect:
		c, ok := m.selected()
		if !ok {
			m.status = "No tasks"
			return m, nil
		}
		if !c.Overdue {
			m.status = "Reflections can only be added to overdue tasks"
			return m, nil
		}
		text := ""
		if c.Task.Reflection != nil {
			text = c.Task.Reflection.Text
		}
		return m.startForm(&formState{
			kind:   formReflect,
			taskID: c.Task.ID,
			labels: []string{fmt.Sprintf("reflection on %q (due %s)", c.Task.Title, task.FormatDate(c.Task.Due))},
			values: []string{text},
		})
	case k.Team:
		id := m.ctrl.State().Identity
		return m.startForm(&formState{
			kind:   formTeam,
			labels: []string{"your name", "team name"},
			values: []string{id.User, id.Team},
		})
	case k.Leave:
		if !m.ctrl.State().Identity.Joined() {
			m.status = "Not currently in a team"
			return m, nil
		}
		m.confirm = &confirmState{kind: confirmLeave}
		m.mode = modeConfirm
		m.status = "Leave the team? y/n"
	case k.Toggle:
		c, ok := m.selected()
		if !ok {
			return m, nil
		}
		t, err := m.ctrl.ToggleDone(ctx, c.Task.ID)
		if err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.status = fmt.Sprintf("Marked %q %s", t.Title, humanDone(t.Done))
	case k.Delete:
		c, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirm = &confirmState{kind: confirmDelete, taskID: c.Task.ID}
		m.mode = modeConfirm
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", c.Task.Title)
	case k.Detail:
		c, ok := m.selected()
		if !ok {
			m.status = "No tasks"
			return m, nil
		}
		info := fmt.Sprintf("Task #%d • %s • %s • %s", c.Task.ID, c.Task.Title, humanDone(c.Task.Done), c.Label)
		if c.Task.CreatedBy != "" {
			info += " • by:" + c.Task.CreatedBy
		}
		m.status = info
	case k.FilterAll, k.Filter1, k.Filter2, k.Filter3, k.Filter4:
		f := filterForKey(k, key)
		m.ctrl.SetFilter(f)
		m.refresh()
		m.status = "Filter: " + filterName(f)
	case k.Completed:
		m.ctrl.ToggleCompleted()
		m.refresh()
		if m.ctrl.State().View.CompletedOnly {
			m.status = "Showing completed tasks"
		} else {
			m.status = "Showing all tasks"
		}
	}
	return m, nil
}

func filterForKey(k config.Keymap, key string) view.Filter {
	switch key {
	case k.Filter1:
		return 1
	case k.Filter2:
		return 2
	case k.Filter3:
		return 3
	case k.Filter4:
		return 4
	default:
		return view.All
	}
}

func filterName(f view.Filter) string {
	if f == view.All {
		return "all levels"
	}
	return fmt.Sprintf("level %d", f)
}

func (m Model) startForm(f *formState) (tea.Model, tea.Cmd) {
	m.form = f
	m.mode = modeForm
	m.input.SetValue(f.values[0])
	m.input.Placeholder = f.labels[0]
	m.status = m.formPrompt()
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateForm(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.closeForm()
		m.status = "Cancelled"
		return m, nil
	case "tab", "down":
		m.form.values[m.form.index] = m.input.Value()
		m.form.index = wrapIndex(m.form.index+1, len(m.form.labels))
		m.loadField()
		return m, nil
	case "shift+tab", "up":
		m.form.values[m.form.index] = m.input.Value()
		m.form.index = wrapIndex(m.form.index-1, len(m.form.labels))
		m.loadField()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.values[m.form.index] = m.input.Value()
		if m.form.index >= len(m.form.labels)-1 {
			return m.submitForm()
		}
		m.form.index++
		m.loadField()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) loadField() {
	m.input.SetValue(m.form.values[m.form.index])
	m.input.Placeholder = m.form.labels[m.form.index]
	m.status = m.formPrompt()
}

func (m *Model) closeForm() {
	m.form = nil
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
}

// submitForm applies the form. On a validation error the form stays open
// and nothing changes.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	ctx := context.Background()
	f := m.form
	var (
		id  int64
		msg string
		err error
	)
	switch f.kind {
	case formAdd, formEdit:
		d := task.Draft{Title: f.values[0], Description: f.values[1], Due: f.values[2]}
		var t task.Task
		if f.kind == formAdd {
			t, err = m.ctrl.AddTask(ctx, d)
			msg = "Added task"
		} else {
			t, err = m.ctrl.EditTask(ctx, f.taskID, d)
			msg = "Saved task"
		}
		id = t.ID
	case formReflect:
		id = f.taskID
		_, err = m.ctrl.SubmitReflection(ctx, f.taskID, f.values[0])
		msg = "Reflection saved!"
	case formTeam:
		var ident app.Identity
		ident, err = m.ctrl.JoinTeam(ctx, f.values[0], f.values[1])
		msg = fmt.Sprintf("Welcome %s! You've joined team: %s", ident.User, ident.Team)
	}
	if err != nil {
		m.status = formError(err)
		return m, nil
	}
	m.closeForm()
	m.refresh()
	if id != 0 {
		m.focus(id)
	}
	m.status = msg
	return m, nil
}

func formError(err error) string {
	switch {
	case errors.Is(err, task.ErrTitleRequired), errors.Is(err, task.ErrDueDateRequired):
		return "Please fill in title and due date."
	case errors.Is(err, task.ErrInvalidDueDate):
		return "Due date must be YYYY-MM-DD."
	case errors.Is(err, app.ErrReflectionRequired):
		return "Please write a reflection."
	case errors.Is(err, app.ErrIdentityRequired):
		return "Please fill in both your name and team name."
	default:
		return fmt.Sprintf("save failed: %v", err)
	}
}

func (m Model) updateConfirm(key string) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	answer := strings.ToLower(key)
	if answer != "y" && answer != "n" {
		return m, nil
	}
	c := m.confirm
	m.confirm = nil
	m.mode = modeList
	confirm := func(string) bool { return answer == "y" }

	switch c.kind {
	case confirmDelete:
		deleted, err := m.ctrl.DeleteTask(ctx, c.taskID, confirm)
		switch {
		case err != nil:
			m.status = fmt.Sprintf("delete failed: %v", err)
		case deleted:
			m.refresh()
			m.status = "Deleted task"
		default:
			m.status = "Delete cancelled"
		}
	case confirmLeave:
		left, err := m.ctrl.LeaveTeam(ctx, confirm)
		switch {
		case err != nil:
			m.status = fmt.Sprintf("leave failed: %v", err)
		case left:
			m.status = "You have left the team."
		default:
			m.status = "Still in the team"
		}
	}
	return m, nil
}

func (m Model) formPrompt() string {
	if m.form == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		m.form.labels[m.form.index], m.form.index+1, len(m.form.labels))
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
