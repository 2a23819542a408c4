package services

import (
	"context"

	"task-manager/internal/domain"
	"task-manager/internal/repository"
)

// AddTask persists a new task
type AddTask struct {
	repo repository.TaskRepository
}

func NewAddTask(repo repository.TaskRepository) *AddTask {
	return &AddTask{repo: repo}
}

// Execute inserts task and returns the ID the store assigned
func (uc *AddTask) Execute(ctx context.Context, task domain.Task) (int64, error) {
	return uc.repo.InsertTask(ctx, task)
}

// UpdateTask replaces an existing task
type UpdateTask struct {
	repo repository.TaskRepository
}

func NewUpdateTask(repo repository.TaskRepository) *UpdateTask {
	return &UpdateTask{repo: repo}
}

func (uc *UpdateTask) Execute(ctx context.Context, task domain.Task) error {
	return uc.repo.UpdateTask(ctx, task)
}

// DeleteTask removes a task
type DeleteTask struct {
	repo repository.TaskRepository
}

func NewDeleteTask(repo repository.TaskRepository) *DeleteTask {
	return &DeleteTask{repo: repo}
}

func (uc *DeleteTask) Execute(ctx context.Context, task domain.Task) error {
	return uc.repo.DeleteTask(ctx, task)
}

// GetTaskByID looks up a single task
type GetTaskByID struct {
	repo repository.TaskRepository
}

func NewGetTaskByID(repo repository.TaskRepository) *GetTaskByID {
	return &GetTaskByID{repo: repo}
}

// Execute returns nil without error when the task does not exist
func (uc *GetTaskByID) Execute(ctx context.Context, id int64) (*domain.Task, error) {
	return uc.repo.GetTaskByID(ctx, id)
}
