package services

import (
	"context"
	stderrors "errors"
	"testing"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository records which repository method each use case reached
type fakeRepository struct {
	calls []string
	tasks []domain.Task
	ids   []int64
	query string
	prio  domain.Priority
	err   error
}

func (f *fakeRepository) InsertTask(_ context.Context, task domain.Task) (int64, error) {
	f.calls = append(f.calls, "InsertTask")
	f.tasks = append(f.tasks, task)
	return 42, f.err
}

func (f *fakeRepository) UpdateTask(_ context.Context, task domain.Task) error {
	f.calls = append(f.calls, "UpdateTask")
	f.tasks = append(f.tasks, task)
	return f.err
}

func (f *fakeRepository) DeleteTask(_ context.Context, task domain.Task) error {
	f.calls = append(f.calls, "DeleteTask")
	f.tasks = append(f.tasks, task)
	return f.err
}

func (f *fakeRepository) GetTaskByID(_ context.Context, id int64) (*domain.Task, error) {
	f.calls = append(f.calls, "GetTaskByID")
	f.ids = append(f.ids, id)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Task{ID: id, Title: "found", Priority: domain.PriorityLow}, nil
}

func (f *fakeRepository) GetAllTasks(context.Context) (*store.Subscription, error) {
	f.calls = append(f.calls, "GetAllTasks")
	return nil, f.err
}

func (f *fakeRepository) GetTasksByPriority(_ context.Context, p domain.Priority) (*store.Subscription, error) {
	f.calls = append(f.calls, "GetTasksByPriority")
	f.prio = p
	return nil, f.err
}

func (f *fakeRepository) GetCompletedTasks(context.Context) (*store.Subscription, error) {
	f.calls = append(f.calls, "GetCompletedTasks")
	return nil, f.err
}

func (f *fakeRepository) GetPendingTasks(context.Context) (*store.Subscription, error) {
	f.calls = append(f.calls, "GetPendingTasks")
	return nil, f.err
}

func (f *fakeRepository) SearchTasks(_ context.Context, query string) (*store.Subscription, error) {
	f.calls = append(f.calls, "SearchTasks")
	f.query = query
	return nil, f.err
}

func TestCommandsDelegate(t *testing.T) {
	repo := &fakeRepository{}
	uc := NewContainer(repo)
	ctx := context.Background()
	task := domain.Task{ID: 7, Title: "t", Priority: domain.PriorityHigh}

	id, err := uc.AddTask.Execute(ctx, domain.Task{Title: "new", Priority: domain.PriorityLow})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	require.NoError(t, uc.UpdateTask.Execute(ctx, task))
	require.NoError(t, uc.DeleteTask.Execute(ctx, task))

	got, err := uc.GetTaskByID.Execute(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ID)

	assert.Equal(t, []string{"InsertTask", "UpdateTask", "DeleteTask", "GetTaskByID"}, repo.calls)
	assert.Equal(t, "new", repo.tasks[0].Title)
	assert.Equal(t, task, repo.tasks[1])
	assert.Equal(t, task, repo.tasks[2])
	assert.Equal(t, []int64{9}, repo.ids)
}

func TestQueriesDelegate(t *testing.T) {
	repo := &fakeRepository{}
	uc := NewContainer(repo)
	ctx := context.Background()

	_, err := uc.GetAllTasks.Execute(ctx)
	require.NoError(t, err)
	_, err = uc.SearchTasks.Execute(ctx, "milk")
	require.NoError(t, err)
	_, err = uc.GetTasksByPriority.Execute(ctx, domain.PriorityMedium)
	require.NoError(t, err)

	assert.Equal(t, []string{"GetAllTasks", "SearchTasks", "GetTasksByPriority"}, repo.calls)
	assert.Equal(t, "milk", repo.query)
	assert.Equal(t, domain.PriorityMedium, repo.prio)
}

func TestFilterTasks_Dispatch(t *testing.T) {
	tests := []struct {
		mode     domain.FilterMode
		expected string
	}{
		{domain.FilterAll, "GetAllTasks"},
		{domain.FilterCompleted, "GetCompletedTasks"},
		{domain.FilterPending, "GetPendingTasks"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			repo := &fakeRepository{}
			_, err := NewFilterTasks(repo).Execute(context.Background(), tt.mode)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.expected}, repo.calls)
		})
	}
}

func TestFilterTasks_UnknownMode(t *testing.T) {
	repo := &fakeRepository{}

	_, err := NewFilterTasks(repo).Execute(context.Background(), domain.FilterMode("SOMETIMES"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
	assert.Empty(t, repo.calls)
}

func TestErrorsPropagateUnchanged(t *testing.T) {
	boom := stderrors.New("boom")
	repo := &fakeRepository{err: boom}
	uc := NewContainer(repo)
	ctx := context.Background()

	_, err := uc.AddTask.Execute(ctx, domain.Task{})
	assert.Same(t, boom, err)
	assert.Same(t, boom, uc.UpdateTask.Execute(ctx, domain.Task{}))
	assert.Same(t, boom, uc.DeleteTask.Execute(ctx, domain.Task{}))
	_, err = uc.GetTaskByID.Execute(ctx, 1)
	assert.Same(t, boom, err)
	_, err = uc.FilterTasks.Execute(ctx, domain.FilterPending)
	assert.Same(t, boom, err)
}
