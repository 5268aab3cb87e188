// Package app owns the application state and applies user operations to it,
// saving the result after every mutation.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"tiertrack/internal/storage"
	"tiertrack/internal/task"
	"tiertrack/internal/view"
)

// Confirmer asks a yes/no question and reports the answer.
type Confirmer func(prompt string) bool

// Yes confirms without asking.
func Yes(string) bool { return true }

// Options configures a Controller.
type Options struct {
	Clock    func() time.Time
	Logger   *slog.Logger
	Location *time.Location
	View     view.State
}

type Controller struct {
	kv     storage.KV
	state  State
	clock  func() time.Time
	logger *slog.Logger
}

// Load reads tasks and identity from kv and returns a Controller over them.
func Load(ctx context.Context, kv storage.KV, opts Options) (*Controller, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	tasks, err := storage.LoadTasks(ctx, kv, opts.Location)
	if err != nil {
		return nil, err
	}
	user, team, err := storage.LoadIdentity(ctx, kv)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		kv:     kv,
		state:  NewState(tasks, Identity{User: user, Team: team}, opts.View, opts.Location),
		clock:  opts.Clock,
		logger: opts.Logger,
	}
	c.logger.Info("loaded tasks", "count", len(tasks), "user", user, "team", team)
	c.checkOverdue()
	return c, nil
}

// checkOverdue looks for overdue tasks without a reflection. Nothing is
// done with them beyond a debug line.
func (c *Controller) checkOverdue() {
	pending := c.state.PendingReflections(c.clock())
	if len(pending) > 0 {
		c.logger.Debug("overdue tasks without reflection", "count", len(pending))
	}
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Now() time.Time {
	return c.clock()
}

func (c *Controller) Visible() []task.Task {
	return c.state.Visible(c.clock())
}

// Cards reads the clock once so ordering and labels agree on the day.
func (c *Controller) Cards() []view.Card {
	now := c.clock()
	return view.Cards(c.state.Visible(now), now)
}

func (c *Controller) saveTasks(ctx context.Context, next State) error {
	if err := storage.SaveTasks(ctx, c.kv, next.Tasks); err != nil {
		c.logger.Error("persist tasks", "error", err)
		return err
	}
	c.state = next
	return nil
}

func (c *Controller) AddTask(ctx context.Context, d task.Draft) (task.Task, error) {
	next, t, err := c.state.AddTask(d)
	if err != nil {
		return task.Task{}, err
	}
	if err := c.saveTasks(ctx, next); err != nil {
		return task.Task{}, err
	}
	c.logger.Debug("task added", "task_id", t.ID, "due", task.FormatDate(t.Due))
	return t, nil
}

func (c *Controller) EditTask(ctx context.Context, id int64, d task.Draft) (task.Task, error) {
	next, t, err := c.state.EditTask(id, d)
	if err != nil {
		return task.Task{}, err
	}
	if err := c.saveTasks(ctx, next); err != nil {
		return task.Task{}, err
	}
	c.logger.Debug("task edited", "task_id", id)
	return t, nil
}

// DeleteTask removes a task once confirm agrees. It reports whether the task
// was deleted.
func (c *Controller) DeleteTask(ctx context.Context, id int64, confirm Confirmer) (bool, error) {
	t, ok := c.state.Find(id)
	if !ok {
		return false, ErrTaskNotFound
	}
	if !confirm(fmt.Sprintf("Delete %q?", t.Title)) {
		return false, nil
	}
	next, err := c.state.DeleteTask(id)
	if err != nil {
		return false, err
	}
	if err := c.saveTasks(ctx, next); err != nil {
		return false, err
	}
	c.logger.Debug("task deleted", "task_id", id)
	return true, nil
}

func (c *Controller) ToggleDone(ctx context.Context, id int64) (task.Task, error) {
	next, t, err := c.state.ToggleDone(id)
	if err != nil {
		return task.Task{}, err
	}
	if err := c.saveTasks(ctx, next); err != nil {
		return task.Task{}, err
	}
	c.logger.Debug("task toggled", "task_id", id, "done", t.Done)
	return t, nil
}

func (c *Controller) SubmitReflection(ctx context.Context, id int64, text string) (task.Task, error) {
	next, t, err := c.state.SubmitReflection(id, text, c.clock())
	if err != nil {
		return task.Task{}, err
	}
	if err := c.saveTasks(ctx, next); err != nil {
		return task.Task{}, err
	}
	c.logger.Debug("reflection saved", "task_id", id)
	return t, nil
}

func (c *Controller) JoinTeam(ctx context.Context, user, team string) (Identity, error) {
	next, err := c.state.JoinTeam(user, team)
	if err != nil {
		return Identity{}, err
	}
	if err := storage.SaveIdentity(ctx, c.kv, next.Identity.User, next.Identity.Team); err != nil {
		c.logger.Error("persist identity", "error", err)
		return Identity{}, err
	}
	c.state = next
	c.logger.Info("joined team", "user", next.Identity.User, "team", next.Identity.Team)
	return next.Identity, nil
}

// LeaveTeam clears the identity once confirm agrees. It reports whether the
// identity was cleared.
func (c *Controller) LeaveTeam(ctx context.Context, confirm Confirmer) (bool, error) {
	if !confirm("Leave the team?") {
		return false, nil
	}
	next := c.state.LeaveTeam()
	if err := storage.SaveIdentity(ctx, c.kv, "", ""); err != nil {
		c.logger.Error("persist identity", "error", err)
		return false, err
	}
	c.state = next
	c.logger.Info("left team")
	return true, nil
}

func (c *Controller) SetFilter(f view.Filter) {
	c.state = c.state.WithFilter(f)
}

func (c *Controller) ToggleCompleted() {
	c.state = c.state.ToggleCompleted()
}
