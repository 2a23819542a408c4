package controller

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/repository"
	"task-manager/internal/repository/sqlite"
	"task-manager/internal/services"
	"task-manager/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 3 * time.Second
	tick    = 10 * time.Millisecond
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setupStack(t *testing.T) (*store.Store, *services.Container) {
	t.Helper()
	rows, err := sqlite.New(filepath.Join(t.TempDir(), "controller.db"))
	require.NoError(t, err)

	s := store.New(store.NewSQLiteBackend(rows))
	t.Cleanup(func() { s.Close() })
	return s, services.NewContainer(repository.New(s))
}

func seed(t *testing.T, s *store.Store, tasks ...domain.Task) []int64 {
	t.Helper()
	ids := make([]int64, len(tasks))
	for i, tk := range tasks {
		if tk.CreatedAt.IsZero() {
			tk.CreatedAt = baseTime.Add(time.Duration(i) * time.Minute)
		}
		id, err := s.Insert(context.Background(), tk)
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, tk := range tasks {
		out[i] = tk.Title
	}
	return out
}

func TestScope_RecoversPanics(t *testing.T) {
	var buf bytes.Buffer
	scope := NewScope(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	require.True(t, scope.Go("explode", func(context.Context) { panic("kaboom") }))

	ran := make(chan struct{})
	require.True(t, scope.Go("survivor", func(context.Context) { close(ran) }))
	<-ran

	scope.Close()
	assert.Contains(t, buf.String(), "kaboom")
	assert.Contains(t, buf.String(), "explode")
	assert.False(t, scope.Go("late", func(context.Context) {}))
}

func TestScope_CloseCancelsContext(t *testing.T) {
	scope := NewScope(context.Background(), slog.Default())

	exited := make(chan struct{})
	scope.Go("blocker", func(ctx context.Context) {
		<-ctx.Done()
		close(exited)
	})

	scope.Close()
	select {
	case <-exited:
	default:
		t.Fatal("Close returned before the goroutine exited")
	}
}

func TestObservable_Watch(t *testing.T) {
	o := NewObservable(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := o.Watch(ctx)
	assert.Equal(t, 1, <-ch)

	o.Update(func(v int) int { return v + 1 })
	require.Eventually(t, func() bool {
		select {
		case v := <-ch:
			return v == 2
		default:
			return false
		}
	}, waitFor, tick)

	o.Close()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, waitFor, tick)
	assert.Equal(t, 2, o.Get())
}

func TestListController_InitialLoad(t *testing.T) {
	s, uc := setupStack(t)
	seed(t, s,
		domain.Task{Title: "older", Priority: domain.PriorityLow},
		domain.Task{Title: "newer", Priority: domain.PriorityHigh},
	)

	c := NewListController(context.Background(), uc, WithViewMode(domain.ViewGrid))
	defer c.Close()

	require.Eventually(t, func() bool { return !c.State().IsLoading }, waitFor, tick)
	state := c.State()
	assert.Equal(t, []string{"newer", "older"}, titles(state.Tasks))
	assert.Equal(t, domain.FilterAll, state.FilterMode)
	assert.Equal(t, domain.ViewGrid, state.ViewMode)
	assert.Empty(t, state.Error)
}

func TestListController_FilterPending(t *testing.T) {
	s, uc := setupStack(t)
	seed(t, s,
		domain.Task{Title: "A", Priority: domain.PriorityMedium, IsCompleted: true},
		domain.Task{Title: "B", Priority: domain.PriorityMedium},
	)

	c := NewListController(context.Background(), uc)
	defer c.Close()
	require.Eventually(t, func() bool { return len(c.State().Tasks) == 2 }, waitFor, tick)

	c.Filter(domain.FilterPending)

	require.Eventually(t, func() bool {
		st := c.State()
		return !st.IsLoading && len(st.Tasks) == 1 && st.Tasks[0].Title == "B"
	}, waitFor, tick)
	assert.Equal(t, domain.FilterPending, c.State().FilterMode)
}

func TestListController_LiveUpdates(t *testing.T) {
	s, uc := setupStack(t)

	c := NewListController(context.Background(), uc)
	defer c.Close()
	require.Eventually(t, func() bool { return !c.State().IsLoading }, waitFor, tick)
	assert.Empty(t, c.State().Tasks)

	seed(t, s, domain.Task{Title: "X", Priority: domain.PriorityMedium})

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"X"}, titles(c.State().Tasks))
	}, waitFor, tick)
}

func TestListController_Search(t *testing.T) {
	s, uc := setupStack(t)
	seed(t, s,
		domain.Task{Title: "Buy milk", Priority: domain.PriorityLow},
		domain.Task{Title: "Call mom", Priority: domain.PriorityLow},
	)

	c := NewListController(context.Background(), uc)
	defer c.Close()
	require.Eventually(t, func() bool { return len(c.State().Tasks) == 2 }, waitFor, tick)

	c.Search("milk")
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"Buy milk"}, titles(c.State().Tasks))
	}, waitFor, tick)
	assert.Equal(t, "milk", c.State().SearchQuery)

	c.Search("   ")
	require.Eventually(t, func() bool { return len(c.State().Tasks) == 2 }, waitFor, tick)
}

func TestListController_FilterByPriority(t *testing.T) {
	s, uc := setupStack(t)
	seed(t, s,
		domain.Task{Title: "urgent", Priority: domain.PriorityHigh},
		domain.Task{Title: "someday", Priority: domain.PriorityLow},
	)

	c := NewListController(context.Background(), uc)
	defer c.Close()

	c.FilterByPriority(domain.PriorityHigh)
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"urgent"}, titles(c.State().Tasks))
	}, waitFor, tick)
	require.NotNil(t, c.State().Priority)
	assert.Equal(t, domain.PriorityHigh, *c.State().Priority)
}

func TestListController_LastIntentWins(t *testing.T) {
	s, uc := setupStack(t)
	seed(t, s,
		domain.Task{Title: "alpha", Priority: domain.PriorityHigh},
		domain.Task{Title: "beta", Priority: domain.PriorityLow, IsCompleted: true},
		domain.Task{Title: "gamma", Priority: domain.PriorityLow},
	)

	c := NewListController(context.Background(), uc)
	defer c.Close()

	c.Search("alpha")
	c.Filter(domain.FilterCompleted)
	c.FilterByPriority(domain.PriorityHigh)
	c.Search("gam")

	require.Eventually(t, func() bool {
		st := c.State()
		return !st.IsLoading && assert.ObjectsAreEqual([]string{"gamma"}, titles(st.Tasks))
	}, waitFor, tick)
	require.Eventually(t, func() bool { return s.Subscriptions() == 1 }, waitFor, tick)

	// Later commits keep flowing to the last query only
	seed(t, s, domain.Task{Title: "gamma ray", Priority: domain.PriorityHigh, CreatedAt: baseTime.Add(time.Hour)})
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"gamma ray", "gamma"}, titles(c.State().Tasks))
	}, waitFor, tick)
}

func TestListController_ToggleView(t *testing.T) {
	_, uc := setupStack(t)

	c := NewListController(context.Background(), uc)
	defer c.Close()

	assert.Equal(t, domain.ViewList, c.State().ViewMode)
	c.ToggleView()
	assert.Equal(t, domain.ViewGrid, c.State().ViewMode)
	c.ToggleView()
	assert.Equal(t, domain.ViewList, c.State().ViewMode)
}

func TestListController_ToggleCompletionAndDelete(t *testing.T) {
	s, uc := setupStack(t)
	ids := seed(t, s, domain.Task{Title: "chore", Priority: domain.PriorityLow})

	c := NewListController(context.Background(), uc)
	defer c.Close()
	c.Filter(domain.FilterPending)
	require.Eventually(t, func() bool { return len(c.State().Tasks) == 1 }, waitFor, tick)

	c.ToggleCompletion(c.State().Tasks[0])
	require.Eventually(t, func() bool {
		st := c.State()
		return !st.IsLoading && len(st.Tasks) == 0
	}, waitFor, tick)

	got, err := s.GetByID(context.Background(), ids[0])
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)

	c.Filter(domain.FilterCompleted)
	require.Eventually(t, func() bool { return len(c.State().Tasks) == 1 }, waitFor, tick)

	c.DeleteTask(c.State().Tasks[0])
	require.Eventually(t, func() bool {
		st := c.State()
		return !st.IsLoading && len(st.Tasks) == 0
	}, waitFor, tick)

	got, err = s.GetByID(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListController_StoreFailureSetsError(t *testing.T) {
	s, uc := setupStack(t)

	c := NewListController(context.Background(), uc)
	defer c.Close()
	require.Eventually(t, func() bool { return !c.State().IsLoading }, waitFor, tick)

	require.NoError(t, s.Close())
	c.Search("anything")

	require.Eventually(t, func() bool { return c.State().Error != "" }, waitFor, tick)
	assert.False(t, c.State().IsLoading)

	c.ClearError()
	assert.Empty(t, c.State().Error)
}

func TestListController_CloseReleasesSubscription(t *testing.T) {
	s, uc := setupStack(t)

	c := NewListController(context.Background(), uc)
	require.Eventually(t, func() bool { return s.Subscriptions() == 1 }, waitFor, tick)

	c.Close()
	assert.Equal(t, 0, s.Subscriptions())
}

func TestDetailController_SaveThenLoad(t *testing.T) {
	_, uc := setupStack(t)

	c := NewDetailController(context.Background(), uc)
	defer c.Close()

	c.Save(domain.Task{Title: "T", Priority: domain.PriorityLow})
	require.Eventually(t, func() bool {
		st := c.State()
		return st.Saved && !st.IsLoading
	}, waitFor, tick)

	savedID := c.State().SavedID
	require.Greater(t, savedID, int64(0))

	c.ResetSaved()
	assert.False(t, c.State().Saved)
	assert.Zero(t, c.State().SavedID)

	c.Load(savedID)
	require.Eventually(t, func() bool {
		st := c.State()
		return !st.IsLoading && st.Task != nil && st.Task.ID == savedID
	}, waitFor, tick)

	task := c.State().Task
	assert.Equal(t, "T", task.Title)
	assert.Equal(t, domain.PriorityLow, task.Priority)
	assert.False(t, task.IsCompleted)
}

func TestDetailController_UpdateExisting(t *testing.T) {
	s, uc := setupStack(t)
	ids := seed(t, s, domain.Task{Title: "old", Priority: domain.PriorityLow})

	c := NewDetailController(context.Background(), uc)
	defer c.Close()

	c.Save(domain.Task{ID: ids[0], Title: "new", Priority: domain.PriorityHigh})
	require.Eventually(t, func() bool { return c.State().Saved }, waitFor, tick)
	assert.Equal(t, ids[0], c.State().SavedID)

	got, err := s.GetByID(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.True(t, got.CreatedAt.Equal(baseTime))
}

func TestDetailController_LoadMissing(t *testing.T) {
	_, uc := setupStack(t)

	c := NewDetailController(context.Background(), uc)
	defer c.Close()

	c.Load(404)
	require.Eventually(t, func() bool { return !c.State().IsLoading }, waitFor, tick)
	assert.Nil(t, c.State().Task)
	assert.Empty(t, c.State().Error)
}

func TestDetailController_Delete(t *testing.T) {
	s, uc := setupStack(t)
	ids := seed(t, s, domain.Task{Title: "gone soon", Priority: domain.PriorityMedium})

	c := NewDetailController(context.Background(), uc)
	defer c.Close()

	c.Load(ids[0])
	c.Delete(domain.Task{ID: ids[0]})
	require.Eventually(t, func() bool {
		st := c.State()
		return st.Deleted && !st.IsLoading
	}, waitFor, tick)

	c.ResetDeleted()
	assert.False(t, c.State().Deleted)

	got, err := s.GetByID(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDetailController_OperationsRunInOrder(t *testing.T) {
	s, uc := setupStack(t)
	ids := seed(t, s, domain.Task{Title: "ordered", Priority: domain.PriorityLow})

	c := NewDetailController(context.Background(), uc)
	defer c.Close()

	c.Load(ids[0])
	require.Eventually(t, func() bool { return c.State().Task != nil }, waitFor, tick)

	// The second load only comes back empty if it ran after the delete
	c.Delete(domain.Task{ID: ids[0]})
	c.Load(ids[0])

	require.Eventually(t, func() bool {
		st := c.State()
		return !st.IsLoading && st.Deleted
	}, waitFor, tick)
	assert.Nil(t, c.State().Task)
}

func TestDetailController_FailureSetsError(t *testing.T) {
	s, uc := setupStack(t)
	require.NoError(t, s.Close())

	c := NewDetailController(context.Background(), uc)
	defer c.Close()

	c.Save(domain.Task{Title: "doomed", Priority: domain.PriorityLow})
	require.Eventually(t, func() bool {
		st := c.State()
		return st.Error != "" && !st.IsLoading
	}, waitFor, tick)
	assert.False(t, c.State().Saved)

	c.ResetError()
	assert.Empty(t, c.State().Error)
}

func TestDetailController_OperationAfterCloseIsDropped(t *testing.T) {
	_, uc := setupStack(t)

	c := NewDetailController(context.Background(), uc)
	c.Close()

	c.Save(domain.Task{Title: "late", Priority: domain.PriorityLow})
	c.Load(1)
	c.Delete(domain.Task{ID: 1})

	st := c.State()
	assert.False(t, st.IsLoading)
	assert.False(t, st.Saved)
	assert.False(t, st.Deleted)
}

func TestDetailController_OperationAfterParentCancelIsDropped(t *testing.T) {
	_, uc := setupStack(t)

	ctx, cancel := context.WithCancel(context.Background())
	c := NewDetailController(ctx, uc)
	defer c.Close()

	cancel()
	c.Save(domain.Task{Title: "late", Priority: domain.PriorityLow})

	assert.Never(t, func() bool { return c.State().IsLoading }, 100*time.Millisecond, tick)
	assert.False(t, c.State().Saved)
}

func TestUserMessage_LogsStorageOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	msg := userMessage(logger, "save", errors.NewStorageError("insert task", assert.AnError))

	assert.NotEmpty(t, msg)
	assert.Contains(t, buf.String(), `storage_op="insert task"`)
	assert.Contains(t, buf.String(), "op=save")
}
