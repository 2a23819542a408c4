package repository

import (
	"context"

	"task-manager/internal/domain"
	"task-manager/internal/store"
)

// TaskRepository is the typed access point to persisted tasks. Query methods
// return live subscriptions that re-emit after every relevant commit.
type TaskRepository interface {
	InsertTask(ctx context.Context, task domain.Task) (int64, error)
	UpdateTask(ctx context.Context, task domain.Task) error
	DeleteTask(ctx context.Context, task domain.Task) error
	GetTaskByID(ctx context.Context, id int64) (*domain.Task, error)

	GetAllTasks(ctx context.Context) (*store.Subscription, error)
	GetTasksByPriority(ctx context.Context, priority domain.Priority) (*store.Subscription, error)
	GetCompletedTasks(ctx context.Context) (*store.Subscription, error)
	GetPendingTasks(ctx context.Context) (*store.Subscription, error)
	SearchTasks(ctx context.Context, query string) (*store.Subscription, error)
}

// StoreTaskRepository implements TaskRepository over a Store
type StoreTaskRepository struct {
	store *store.Store
}

// New creates a repository backed by s
func New(s *store.Store) *StoreTaskRepository {
	return &StoreTaskRepository{store: s}
}

func (r *StoreTaskRepository) InsertTask(ctx context.Context, task domain.Task) (int64, error) {
	return r.store.Insert(ctx, task)
}

func (r *StoreTaskRepository) UpdateTask(ctx context.Context, task domain.Task) error {
	return r.store.Update(ctx, task)
}

func (r *StoreTaskRepository) DeleteTask(ctx context.Context, task domain.Task) error {
	return r.store.DeleteTask(ctx, task)
}

func (r *StoreTaskRepository) GetTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	return r.store.GetByID(ctx, id)
}

func (r *StoreTaskRepository) GetAllTasks(ctx context.Context) (*store.Subscription, error) {
	return r.store.QueryAll(ctx)
}

func (r *StoreTaskRepository) GetTasksByPriority(ctx context.Context, priority domain.Priority) (*store.Subscription, error) {
	return r.store.QueryByPriority(ctx, priority)
}

func (r *StoreTaskRepository) GetCompletedTasks(ctx context.Context) (*store.Subscription, error) {
	return r.store.QueryByCompletion(ctx, true)
}

func (r *StoreTaskRepository) GetPendingTasks(ctx context.Context) (*store.Subscription, error) {
	return r.store.QueryByCompletion(ctx, false)
}

func (r *StoreTaskRepository) SearchTasks(ctx context.Context, query string) (*store.Subscription, error) {
	return r.store.QuerySearch(ctx, query)
}
