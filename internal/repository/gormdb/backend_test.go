package gormdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var baseTime = time.Date(2024, 5, 20, 8, 30, 0, 0, time.UTC)

func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := OpenSQLite(filepath.Join(t.TempDir(), "gorm.db"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func newTask(title string, p domain.Priority, completed bool, minutes int) domain.Task {
	return domain.Task{
		Title:       title,
		Priority:    p,
		IsCompleted: completed,
		CreatedAt:   baseTime.Add(time.Duration(minutes) * time.Minute),
	}
}

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestInsertAndGetByID(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	task := newTask("gorm task", domain.PriorityHigh, false, 0)
	task.Description = "via gorm"
	require.NoError(t, b.Insert(ctx, &task))
	require.NotZero(t, task.ID)

	got, err := b.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, task.Equal(*got), "got %v want %v", got, task)
}

func TestGetByID_Missing(t *testing.T) {
	b := setupBackend(t)

	got, err := b.GetByID(context.Background(), 31337)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestInsert_Upsert(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	task := newTask("v1", domain.PriorityLow, false, 0)
	require.NoError(t, b.Insert(ctx, &task))

	replacement := newTask("v2", domain.PriorityHigh, true, 1)
	replacement.ID = task.ID
	require.NoError(t, b.Insert(ctx, &replacement))
	assert.Equal(t, task.ID, replacement.ID)

	all, err := b.Query(ctx, domain.AllTasks())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, replacement.Equal(all[0]))
}

func TestCreateStatement_UpsertOnlyWithExplicitID(t *testing.T) {
	b := setupBackend(t)
	dry := b.db.Session(&gorm.Session{DryRun: true})

	fresh := toRecord(newTask("fresh", domain.PriorityLow, false, 0))
	sql := createStatement(dry, &fresh).Statement.SQL.String()
	assert.Contains(t, sql, "INSERT INTO")
	assert.NotContains(t, sql, "ON CONFLICT")

	explicit := toRecord(newTask("explicit", domain.PriorityLow, false, 0))
	explicit.ID = 5
	sql = createStatement(dry, &explicit).Statement.SQL.String()
	assert.Contains(t, sql, "ON CONFLICT")
}

func TestInsert_ExplicitIDThenGeneratedIDs(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	pinned := newTask("pinned", domain.PriorityHigh, false, 0)
	pinned.ID = 3
	require.NoError(t, b.Insert(ctx, &pinned))

	seen := map[int64]bool{3: true}
	for i := 1; i <= 5; i++ {
		task := newTask("generated", domain.PriorityLow, false, i)
		require.NoError(t, b.Insert(ctx, &task))
		assert.False(t, seen[task.ID], "id %d assigned twice", task.ID)
		seen[task.ID] = true
	}

	got, err := b.GetByID(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "pinned", got.Title)

	all, err := b.Query(ctx, domain.AllTasks())
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestTimeouts(t *testing.T) {
	b, err := OpenSQLite(filepath.Join(t.TempDir(), "gorm.db"), Options{
		QueryTimeout: time.Nanosecond,
		WriteTimeout: time.Nanosecond,
	})
	require.NoError(t, err)
	defer b.Close()
	ctx := context.Background()

	task := newTask("slow", domain.PriorityLow, false, 0)
	err = b.Insert(ctx, &task)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeTimeout), "got %v", err)

	_, err = b.Query(ctx, domain.AllTasks())
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeTimeout), "got %v", err)
}

func TestUpdate(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	task := newTask("draft", domain.PriorityLow, false, 0)
	require.NoError(t, b.Insert(ctx, &task))

	edited := newTask("final", domain.PriorityMedium, true, 60)
	edited.ID = task.ID
	ok, err := b.Update(ctx, edited)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := b.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.True(t, got.IsCompleted)
	assert.True(t, got.CreatedAt.Equal(task.CreatedAt), "created_at is immutable")

	ok, err = b.Update(ctx, domain.Task{ID: 999, Title: "ghost", Priority: domain.PriorityLow})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	task := newTask("bye", domain.PriorityLow, false, 0)
	require.NoError(t, b.Insert(ctx, &task))

	ok, err := b.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQuery(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	for _, task := range []domain.Task{
		newTask("Buy milk", domain.PriorityHigh, false, 1),
		newTask("Walk dog", domain.PriorityLow, true, 2),
		newTask("buy bread", domain.PriorityMedium, true, 3),
		newTask("50% off", domain.PriorityLow, false, 4),
	} {
		require.NoError(t, b.Insert(ctx, &task))
	}

	tests := []struct {
		name     string
		filter   domain.Filter
		expected []string
	}{
		{"all", domain.AllTasks(), []string{"50% off", "buy bread", "Walk dog", "Buy milk"}},
		{"priority", domain.ByPriority(domain.PriorityLow), []string{"50% off", "Walk dog"}},
		{"completed", domain.ByCompletion(true), []string{"buy bread", "Walk dog"}},
		{"pending", domain.ByCompletion(false), []string{"50% off", "Buy milk"}},
		{"title", domain.ByTitle("buy"), []string{"buy bread", "Buy milk"}},
		{"empty title", domain.ByTitle(""), []string{"50% off", "buy bread", "Walk dog", "Buy milk"}},
		{"literal percent", domain.ByTitle("%"), []string{"50% off"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := b.Query(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, titles(tasks))
		})
	}
}

func TestBackendDrivesStore(t *testing.T) {
	s := store.New(setupBackend(t))
	ctx := context.Background()

	sub, err := s.QueryByCompletion(ctx, false)
	require.NoError(t, err)
	defer sub.Close()

	first, ok := sub.Next(ctx)
	require.True(t, ok)
	assert.Empty(t, first.Tasks)

	_, err = s.Insert(ctx, newTask("live", domain.PriorityMedium, false, 0))
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	res, ok := sub.Next(waitCtx)
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"live"}, titles(res.Tasks))
}
