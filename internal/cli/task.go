package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"tiertrack/internal/app"
	"tiertrack/internal/task"
	"tiertrack/internal/urgency"
	"tiertrack/internal/view"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func newAddCmd(configPath *string) *cobra.Command {
	var d task.Draft
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task (--title and --due are required)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := e.ctrl.AddTask(cmd.Context(), d)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added task #%d %q due %s\n", t.ID, t.Title, task.FormatDate(t.Due))
			return nil
		},
	}
	cmd.Flags().StringVar(&d.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&d.Description, "desc", "", "Task description")
	cmd.Flags().StringVar(&d.Due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newListCmd(configPath *string) *cobra.Command {
	var tier string
	var completed bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks ordered by urgency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			if cmd.Flags().Changed("tier") {
				f, err := view.ParseFilter(tier)
				if err != nil {
					return err
				}
				e.ctrl.SetFilter(f)
			}
			if cmd.Flags().Changed("completed") && completed != e.ctrl.State().View.CompletedOnly {
				e.ctrl.ToggleCompleted()
			}
			printCards(cmd.OutOrStdout(), e.ctrl.Cards(), e.ctrl.State().View)
			return nil
		},
	}
	cmd.Flags().StringVar(&tier, "tier", "all", "Only show one level: all or 1-4")
	cmd.Flags().BoolVar(&completed, "completed", false, "Only show completed tasks")
	return cmd
}

func printCards(w io.Writer, cards []view.Card, vs view.State) {
	if len(cards) == 0 {
		title, hint := view.EmptyState(vs)
		_, _ = fmt.Fprintf(w, "%s\n%s\n", title, hint)
		return
	}
	for _, c := range cards {
		mark := " "
		if c.Task.Done {
			mark = "x"
		}
		_, _ = fmt.Fprintf(w, "#%-4d [%s] %s — %s — due %s (%s)\n",
			c.Task.ID, mark, c.Task.Title, c.Label, task.FormatDate(c.Task.Due), c.Countdown)
		if c.Task.Description != "" {
			_, _ = fmt.Fprintf(w, "      %s\n", c.Task.Description)
		}
		if c.Task.CreatedBy != "" {
			_, _ = fmt.Fprintf(w, "      Created by: %s\n", c.Task.CreatedBy)
		}
		if c.NeedsReflection {
			_, _ = fmt.Fprintln(w, "      This task is overdue. Please add a reflection.")
		}
		if r := c.Task.Reflection; r != nil {
			_, _ = fmt.Fprintf(w, "      Reflection (%s): %s\n", task.FormatDate(r.RecordedAt.Local()), r.Text)
		}
	}
}

func newEditCmd(configPath *string) *cobra.Command {
	var d task.Draft
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a task's title, description or due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			cur, ok := e.ctrl.State().Find(id)
			if !ok {
				return fmt.Errorf("task #%d: %w", id, app.ErrTaskNotFound)
			}
			// Unset flags keep the current values.
			if !cmd.Flags().Changed("title") {
				d.Title = cur.Title
			}
			if !cmd.Flags().Changed("desc") {
				d.Description = cur.Description
			}
			if !cmd.Flags().Changed("due") {
				d.Due = task.FormatDate(cur.Due)
			}
			t, err := e.ctrl.EditTask(cmd.Context(), id, d)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved task #%d %q due %s\n", t.ID, t.Title, task.FormatDate(t.Due))
			return nil
		},
	}
	cmd.Flags().StringVar(&d.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&d.Description, "desc", "", "Task description")
	cmd.Flags().StringVar(&d.Due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newDoneCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Toggle a task between done and pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := e.ctrl.ToggleDone(cmd.Context(), id)
			if err != nil {
				return err
			}
			state := "pending"
			if t.Done {
				state = "done"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Task #%d is now %s\n", t.ID, state)
			return nil
		},
	}
}

func newRemoveCmd(configPath *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			deleted, err := e.ctrl.DeleteTask(cmd.Context(), id, confirmer(cmd, yes))
			if err != nil {
				return err
			}
			if deleted {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Delete cancelled")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newReflectCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reflect ID TEXT",
		Short: "Record a reflection on an overdue task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			cur, ok := e.ctrl.State().Find(id)
			if !ok {
				return fmt.Errorf("task #%d: %w", id, app.ErrTaskNotFound)
			}
			if !urgency.IsOverdue(cur, e.ctrl.Now()) {
				return fmt.Errorf("task #%d is not overdue", id)
			}
			t, err := e.ctrl.SubmitReflection(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reflection saved on task #%d\n", t.ID)
			return nil
		},
	}
}
