package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tiertrack/internal/task"
	"tiertrack/internal/view"
)

func emptyState() State {
	return NewState(nil, Identity{}, view.State{}, time.UTC)
}

func TestNewStateContinuesIDs(t *testing.T) {
	s := NewState([]task.Task{{ID: 4}, {ID: 1700000000000}, {ID: 9}}, Identity{}, view.State{}, time.UTC)
	require.Equal(t, int64(1700000000001), s.NextID())
	require.Equal(t, int64(1), emptyState().NextID())
	require.Equal(t, int64(1), State{}.NextID())
}

func TestAddTaskAssignsUniqueIDs(t *testing.T) {
	s := emptyState()
	seen := map[int64]bool{}
	for range 5 {
		var created task.Task
		var err error
		s, created, err = s.AddTask(task.Draft{Title: "same", Due: "2026-10-17"})
		require.NoError(t, err)
		require.False(t, seen[created.ID], "duplicate id %d", created.ID)
		seen[created.ID] = true
	}
	require.Len(t, s.Tasks, 5)
}

func TestAddTaskStampsCreator(t *testing.T) {
	s, err := emptyState().JoinTeam(" sam ", " blue ")
	require.NoError(t, err)
	s, created, err := s.AddTask(task.Draft{Title: "Pay rent", Due: "2026-10-17"})
	require.NoError(t, err)
	require.Equal(t, "sam", created.CreatedBy)

	s = s.LeaveTeam()
	require.Equal(t, "sam", s.Tasks[0].CreatedBy)
	_, other, err := s.AddTask(task.Draft{Title: "later", Due: "2026-10-18"})
	require.NoError(t, err)
	require.Equal(t, "", other.CreatedBy)
}

func TestAddTaskValidationLeavesStateUntouched(t *testing.T) {
	s, _, err := emptyState().AddTask(task.Draft{Title: "keep", Due: "2026-10-17"})
	require.NoError(t, err)

	next, _, err := s.AddTask(task.Draft{Title: "", Due: "2026-10-17"})
	require.ErrorIs(t, err, task.ErrTitleRequired)
	require.Equal(t, s, next)

	next, _, err = s.AddTask(task.Draft{Title: "x"})
	require.ErrorIs(t, err, task.ErrDueDateRequired)
	require.Equal(t, s, next)
}

func TestOperationsDoNotMutateReceiver(t *testing.T) {
	s, created, err := emptyState().AddTask(task.Draft{Title: "a", Due: "2026-10-17"})
	require.NoError(t, err)

	toggled, _, err := s.ToggleDone(created.ID)
	require.NoError(t, err)
	require.False(t, s.Tasks[0].Done)
	require.True(t, toggled.Tasks[0].Done)

	deleted, err := s.DeleteTask(created.ID)
	require.NoError(t, err)
	require.Len(t, s.Tasks, 1)
	require.Empty(t, deleted.Tasks)
}

func TestEditTaskKeepsOtherFields(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	s, err := emptyState().JoinTeam("sam", "blue")
	require.NoError(t, err)
	s, created, err := s.AddTask(task.Draft{Title: "a", Due: "2026-10-10"})
	require.NoError(t, err)
	s, _, err = s.ToggleDone(created.ID)
	require.NoError(t, err)
	s, _, err = s.SubmitReflection(created.ID, "late", now)
	require.NoError(t, err)

	s, edited, err := s.EditTask(created.ID, task.Draft{Title: " b ", Description: "more", Due: "2026-10-20"})
	require.NoError(t, err)
	require.Equal(t, created.ID, edited.ID)
	require.Equal(t, "b", edited.Title)
	require.Equal(t, "more", edited.Description)
	require.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), edited.Due)
	require.True(t, edited.Done)
	require.Equal(t, "late", edited.Reflection.Text)
	require.Equal(t, "sam", edited.CreatedBy)
	require.Equal(t, edited, s.Tasks[0])

	_, _, err = s.EditTask(created.ID, task.Draft{Title: "b", Due: ""})
	require.ErrorIs(t, err, task.ErrDueDateRequired)
	_, _, err = s.EditTask(999, task.Draft{Title: "b", Due: "2026-10-20"})
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestSubmitReflection(t *testing.T) {
	first := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)
	s, created, err := emptyState().AddTask(task.Draft{Title: "a", Due: "2026-10-15"})
	require.NoError(t, err)

	_, _, err = s.SubmitReflection(created.ID, "   ", first)
	require.ErrorIs(t, err, ErrReflectionRequired)
	_, _, err = s.SubmitReflection(42, "text", first)
	require.ErrorIs(t, err, ErrTaskNotFound)

	s, got, err := s.SubmitReflection(created.ID, " ran out of time ", first)
	require.NoError(t, err)
	require.Equal(t, "ran out of time", got.Reflection.Text)
	require.Equal(t, first, got.Reflection.RecordedAt)

	_, got, err = s.SubmitReflection(created.ID, "revised", second)
	require.NoError(t, err)
	require.Equal(t, "revised", got.Reflection.Text)
	require.Equal(t, second, got.Reflection.RecordedAt)
}

func TestJoinAndLeaveTeam(t *testing.T) {
	_, err := emptyState().JoinTeam("sam", " ")
	require.ErrorIs(t, err, ErrIdentityRequired)

	s, err := emptyState().JoinTeam("sam", "blue")
	require.NoError(t, err)
	require.True(t, s.Identity.Joined())
	require.False(t, s.LeaveTeam().Identity.Joined())
}

func TestUnknownTaskOperations(t *testing.T) {
	s := emptyState()
	_, err := s.DeleteTask(1)
	require.ErrorIs(t, err, ErrTaskNotFound)
	_, _, err = s.ToggleDone(1)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestViewTransitions(t *testing.T) {
	s := emptyState().WithFilter(view.Filter(3)).ToggleCompleted()
	require.Equal(t, view.State{Filter: 3, CompletedOnly: true}, s.View)
}

func TestPendingReflections(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	s := emptyState()
	s, late, err := s.AddTask(task.Draft{Title: "late", Due: "2026-10-16"})
	require.NoError(t, err)
	s, _, err = s.AddTask(task.Draft{Title: "fine", Due: "2026-10-17"})
	require.NoError(t, err)

	pending := s.PendingReflections(now)
	require.Len(t, pending, 1)
	require.Equal(t, late.ID, pending[0].ID)

	s, _, err = s.SubmitReflection(late.ID, "noted", now)
	require.NoError(t, err)
	require.Empty(t, s.PendingReflections(now))
}
