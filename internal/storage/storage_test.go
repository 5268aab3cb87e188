package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tiertrack/internal/task"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "tiertrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleTasks() []task.Task {
	return []task.Task{
		{
			ID:          3,
			Title:       "Pay rent",
			Description: "landlord",
			Due:         time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:    1,
			Title: "File taxes",
			Due:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			Done:  true,
			Reflection: &task.Reflection{
				Text:       "started too late",
				RecordedAt: time.Date(2026, 10, 5, 14, 30, 15, 123000000, time.UTC),
			},
			CreatedBy: "sam",
		},
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}

func TestStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyCurrentUser, "sam"))
	require.NoError(t, s.Set(ctx, KeyCurrentUser, "alex"))
	v, ok, err := s.Get(ctx, KeyCurrentUser)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alex", v)

	require.NoError(t, s.Set(ctx, KeyCurrentTeam, ""))
	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv;`).Scan(&n))
	require.Equal(t, 2, n)
}

func TestStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tiertrack.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, SaveTasks(ctx, s, sampleTasks()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := LoadTasks(ctx, s, time.UTC)
	require.NoError(t, err)
	require.Equal(t, sampleTasks(), got)
}

func TestTasksRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, SaveTasks(ctx, kv, sampleTasks()))

	got, err := LoadTasks(ctx, kv, time.UTC)
	require.NoError(t, err)
	require.Equal(t, sampleTasks(), got)
}

func TestLoadTasksMissingKey(t *testing.T) {
	got, err := LoadTasks(context.Background(), NewMemory(), time.UTC)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestEncodeTasksWireFormat(t *testing.T) {
	raw, err := EncodeTasks(sampleTasks()[:1])
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":3,"title":"Pay rent","desc":"landlord","date":"2026-10-17","done":false,"reflection":null,"reflectionDate":null,"createdBy":null}]`, raw)
}

func TestDecodeTasksAcceptsTimestamps(t *testing.T) {
	raw := `[{"id":1700000000000,"title":"old","desc":"","date":"2026-10-20T00:00:00.000Z","done":false,"reflection":"x","reflectionDate":"2026-10-21T08:00:00Z","createdBy":null}]`
	got, err := DecodeTasks(raw, time.UTC)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(1700000000000), got[0].ID)
	require.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), got[0].Due)
	require.NotNil(t, got[0].Reflection)
	require.Equal(t, "x", got[0].Reflection.Text)
	require.Equal(t, "", got[0].CreatedBy)
}

func TestDecodeTasksRejectsBadDate(t *testing.T) {
	_, err := DecodeTasks(`[{"id":1,"title":"t","date":"soon"}]`, time.UTC)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "task 1"))
}

func TestDecodeTasksRejectsBrokenReflection(t *testing.T) {
	cases := map[string]string{
		"missing timestamp": `[{"id":4,"title":"late","date":"2026-10-01","reflection":"late","reflectionDate":null}]`,
		"bad timestamp":     `[{"id":4,"title":"late","date":"2026-10-01","reflection":"x","reflectionDate":"garbage"}]`,
		"timestamp only":    `[{"id":4,"title":"late","date":"2026-10-01","reflection":null,"reflectionDate":"2026-10-02T08:00:00Z"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeTasks(raw, time.UTC)
			require.Error(t, err)
			require.Contains(t, err.Error(), "task 4")
			require.Nil(t, got)
		})
	}
}

func TestTasksRoundTripInLocalZone(t *testing.T) {
	ctx := context.Background()
	est := time.FixedZone("EST", -5*3600)
	recorded := time.Date(2026, 10, 16, 22, 15, 0, 0, est)
	tasks := []task.Task{{
		ID:         9,
		Title:      "Call the bank",
		Due:        time.Date(2026, 10, 16, 0, 0, 0, 0, est),
		Reflection: &task.Reflection{Text: "forgot", RecordedAt: recorded},
	}}

	kv := NewMemory()
	require.NoError(t, SaveTasks(ctx, kv, tasks))
	raw, _, err := kv.Get(ctx, KeyTasks)
	require.NoError(t, err)
	require.Contains(t, raw, `"date":"2026-10-16"`)
	require.Contains(t, raw, `"reflectionDate":"2026-10-17T03:15:00Z"`)

	got, err := LoadTasks(ctx, kv, est)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, tasks[0].Due, got[0].Due)
	require.NotNil(t, got[0].Reflection)
	require.True(t, recorded.Equal(got[0].Reflection.RecordedAt))
}

func TestIdentityRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	user, team, err := LoadIdentity(ctx, kv)
	require.NoError(t, err)
	require.Empty(t, user)
	require.Empty(t, team)

	require.NoError(t, SaveIdentity(ctx, kv, "sam", "blue"))
	user, team, err = LoadIdentity(ctx, kv)
	require.NoError(t, err)
	require.Equal(t, "sam", user)
	require.Equal(t, "blue", team)

	require.NoError(t, SaveIdentity(ctx, kv, "", ""))
	raw, ok, err := kv.Get(ctx, KeyCurrentUser)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "", raw)
}
