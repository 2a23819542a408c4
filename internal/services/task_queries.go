package services

import (
	"context"
	"fmt"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/repository"
	"task-manager/internal/store"
)

// GetAllTasks observes every task
type GetAllTasks struct {
	repo repository.TaskRepository
}

func NewGetAllTasks(repo repository.TaskRepository) *GetAllTasks {
	return &GetAllTasks{repo: repo}
}

func (uc *GetAllTasks) Execute(ctx context.Context) (*store.Subscription, error) {
	return uc.repo.GetAllTasks(ctx)
}

// SearchTasks observes tasks whose title contains a query
type SearchTasks struct {
	repo repository.TaskRepository
}

func NewSearchTasks(repo repository.TaskRepository) *SearchTasks {
	return &SearchTasks{repo: repo}
}

func (uc *SearchTasks) Execute(ctx context.Context, query string) (*store.Subscription, error) {
	return uc.repo.SearchTasks(ctx, query)
}

// FilterTasks observes tasks by completion state
type FilterTasks struct {
	repo repository.TaskRepository
}

func NewFilterTasks(repo repository.TaskRepository) *FilterTasks {
	return &FilterTasks{repo: repo}
}

func (uc *FilterTasks) Execute(ctx context.Context, mode domain.FilterMode) (*store.Subscription, error) {
	switch mode {
	case domain.FilterAll:
		return uc.repo.GetAllTasks(ctx)
	case domain.FilterCompleted:
		return uc.repo.GetCompletedTasks(ctx)
	case domain.FilterPending:
		return uc.repo.GetPendingTasks(ctx)
	default:
		return nil, errors.NewInvalidInputError("filter", mode, fmt.Sprintf("unknown filter mode %q", mode))
	}
}

// GetTasksByPriority observes tasks of a single priority
type GetTasksByPriority struct {
	repo repository.TaskRepository
}

func NewGetTasksByPriority(repo repository.TaskRepository) *GetTasksByPriority {
	return &GetTasksByPriority{repo: repo}
}

func (uc *GetTasksByPriority) Execute(ctx context.Context, priority domain.Priority) (*store.Subscription, error) {
	return uc.repo.GetTasksByPriority(ctx, priority)
}
