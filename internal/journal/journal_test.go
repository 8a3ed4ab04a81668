package journal

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
)

func TestRunLifecycle(t *testing.T) {
	store := newMemoryStore(t)
	j := New(store)
	ctx := t.Context()

	run := j.Start(ctx, "fixture", map[string]string{"dir": "/tmp/x"})
	_, err := uuid.Parse(run.ID())
	require.NoError(t, err)

	run.Step(ctx, "commit", map[string]string{"hash": "abc"})
	run.Succeed(ctx, map[string]string{"hash": "abc"})
	run.Fail(ctx, "late", errors.New("ignored once finished"))

	events, err := store.ByRun(ctx, run.ID())
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []string{TypeRunStarted, TypeStep, TypeRunSucceeded},
		[]string{events[0].Type, events[1].Type, events[2].Type})
	assert.True(t, events[2].Terminal())
	assert.Equal(t, "fixture", events[0].Metadata["command"])
}

func TestDisabledJournalRecordsNothing(t *testing.T) {
	var j *Journal
	run := j.Start(context.Background(), "publish", nil)
	assert.Empty(t, run.ID())
	run.Step(context.Background(), "build", nil)
	run.Finish(context.Background(), errors.New("boom"), nil)
	assert.Nil(t, j.Store())
	assert.NoError(t, j.Close())
}

func TestRunRecordsOnCancelledContext(t *testing.T) {
	store := newMemoryStore(t)
	j := New(store)

	ctx, cancel := context.WithCancel(t.Context())
	run := j.Start(ctx, "fetch", nil)
	cancel()
	run.Fail(ctx, "fetch", context.Canceled)

	events, err := store.ByRun(t.Context(), run.ID())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, TypeRunFailed, events[1].Type)
}

func TestHistory(t *testing.T) {
	store := newMemoryStore(t)
	j := New(store)
	n := 0
	j.newID = func() string { n++; return fmt.Sprintf("run-%d", n) }
	ctx := t.Context()

	j.Start(ctx, "fixture", nil).Succeed(ctx, map[string]string{"hash": "abc"})
	j.Start(ctx, "publish", nil).Skip(ctx, "branch \"dev\" is not \"master\"")
	failed := j.Start(ctx, "publish", nil)
	failed.Step(ctx, "build", nil)
	failed.Fail(ctx, "push", ferrors.AuthError("no push credentials").Build())
	j.Start(ctx, "fetch", nil)

	all, err := History(ctx, store, HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"run-4", "run-3", "run-2", "run-1"},
		[]string{all[0].RunID, all[1].RunID, all[2].RunID, all[3].RunID})

	assert.Equal(t, StatusRunning, all[0].Status)
	assert.Nil(t, all[0].FinishedAt)

	assert.Equal(t, StatusFailed, all[1].Status)
	assert.Equal(t, "push", all[1].FailedStep)
	assert.Equal(t, string(ferrors.CategoryAuth), all[1].Category)
	assert.Equal(t, []string{"build"}, all[1].Steps)

	assert.Equal(t, StatusSkipped, all[2].Status)
	assert.Contains(t, all[2].Detail["reason"], "dev")

	assert.Equal(t, StatusSucceeded, all[3].Status)
	assert.Equal(t, "fixture", all[3].Command)
	require.NotNil(t, all[3].FinishedAt)

	publishes, err := History(ctx, store, HistoryFilter{Command: "publish", Limit: 1})
	require.NoError(t, err)
	require.Len(t, publishes, 1)
	assert.Equal(t, "run-3", publishes[0].RunID)

	succeeded, err := History(ctx, store, HistoryFilter{Status: StatusSucceeded})
	require.NoError(t, err)
	require.Len(t, succeeded, 1)
	assert.Equal(t, "run-1", succeeded[0].RunID)
}
