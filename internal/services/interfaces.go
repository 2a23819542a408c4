package services

import (
	"task-manager/internal/repository"
)

// Container holds one use case per user intent, all sharing a repository
type Container struct {
	AddTask            *AddTask
	UpdateTask         *UpdateTask
	DeleteTask         *DeleteTask
	GetTaskByID        *GetTaskByID
	GetAllTasks        *GetAllTasks
	SearchTasks        *SearchTasks
	FilterTasks        *FilterTasks
	GetTasksByPriority *GetTasksByPriority
}

// NewContainer wires every use case to repo
func NewContainer(repo repository.TaskRepository) *Container {
	return &Container{
		AddTask:            NewAddTask(repo),
		UpdateTask:         NewUpdateTask(repo),
		DeleteTask:         NewDeleteTask(repo),
		GetTaskByID:        NewGetTaskByID(repo),
		GetAllTasks:        NewGetAllTasks(repo),
		SearchTasks:        NewSearchTasks(repo),
		FilterTasks:        NewFilterTasks(repo),
		GetTasksByPriority: NewGetTasksByPriority(repo),
	}
}
