package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"task-manager/internal/domain"
	"task-manager/internal/repository/sqlite"
	"task-manager/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) *StoreTaskRepository {
	t.Helper()
	rows, err := sqlite.New(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)

	s := store.New(store.NewSQLiteBackend(rows))
	t.Cleanup(func() { s.Close() })
	return New(s)
}

func first(t *testing.T, sub *store.Subscription, err error) []domain.Task {
	t.Helper()
	require.NoError(t, err)
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, ok := sub.Next(ctx)
	require.True(t, ok)
	require.NoError(t, res.Err)
	return res.Tasks
}

func TestTaskRepository_CRUD(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	id, err := repo.InsertTask(ctx, domain.NewTask("Plan trip", "", domain.PriorityHigh))
	require.NoError(t, err)

	got, err := repo.GetTaskByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Plan trip", got.Title)

	got.IsCompleted = true
	require.NoError(t, repo.UpdateTask(ctx, *got))

	updated, err := repo.GetTaskByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)

	require.NoError(t, repo.DeleteTask(ctx, *updated))

	gone, err := repo.GetTaskByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestTaskRepository_Queries(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, tk := range []domain.Task{
		{Title: "alpha", Priority: domain.PriorityHigh},
		{Title: "beta", Priority: domain.PriorityLow, IsCompleted: true},
		{Title: "gamma", Priority: domain.PriorityHigh, IsCompleted: true},
	} {
		tk.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := repo.InsertTask(ctx, tk)
		require.NoError(t, err)
	}

	titles := func(tasks []domain.Task) []string {
		var out []string
		for _, tk := range tasks {
			out = append(out, tk.Title)
		}
		return out
	}

	sub, err := repo.GetAllTasks(ctx)
	assert.Equal(t, []string{"gamma", "beta", "alpha"}, titles(first(t, sub, err)))

	sub, err = repo.GetTasksByPriority(ctx, domain.PriorityHigh)
	assert.Equal(t, []string{"gamma", "alpha"}, titles(first(t, sub, err)))

	sub, err = repo.GetCompletedTasks(ctx)
	assert.Equal(t, []string{"gamma", "beta"}, titles(first(t, sub, err)))

	sub, err = repo.GetPendingTasks(ctx)
	assert.Equal(t, []string{"alpha"}, titles(first(t, sub, err)))

	sub, err = repo.SearchTasks(ctx, "ET")
	assert.Equal(t, []string{"beta"}, titles(first(t, sub, err)))
}
