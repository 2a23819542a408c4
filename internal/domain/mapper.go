package domain

import (
	"fmt"
	"time"

	"task-manager/internal/repository/sqlite"
)

// TaskMapper handles conversion between domain and database Task models.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToDatabase converts a domain Task to a database Task.
func (m *TaskMapper) ToDatabase(domainTask Task) sqlite.Task {
	return sqlite.Task{
		ID:          domainTask.ID,
		Title:       domainTask.Title,
		Description: domainTask.Description,
		Priority:    string(domainTask.Priority),
		IsCompleted: domainTask.IsCompleted,
		CreatedAt:   domainTask.CreatedAt.UnixMilli(),
	}
}

// FromDatabase converts a database Task to a domain Task.
// It fails if the stored priority is not one of the enumerated values.
func (m *TaskMapper) FromDatabase(dbTask sqlite.Task) (Task, error) {
	priority := Priority(dbTask.Priority)
	if !priority.IsValid() {
		return Task{}, fmt.Errorf("task %d has unknown priority %q", dbTask.ID, dbTask.Priority)
	}
	return Task{
		ID:          dbTask.ID,
		Title:       dbTask.Title,
		Description: dbTask.Description,
		Priority:    priority,
		IsCompleted: dbTask.IsCompleted,
		CreatedAt:   time.UnixMilli(dbTask.CreatedAt),
	}, nil
}

// FromDatabaseSlice converts a slice of database Tasks to domain Tasks.
func (m *TaskMapper) FromDatabaseSlice(dbTasks []*sqlite.Task) ([]Task, error) {
	domainTasks := make([]Task, len(dbTasks))
	for i, task := range dbTasks {
		converted, err := m.FromDatabase(*task)
		if err != nil {
			return nil, err
		}
		domainTasks[i] = converted
	}
	return domainTasks, nil
}

// FilterMapper handles conversion between domain Filters and database SearchOptions.
type FilterMapper struct{}

// NewFilterMapper creates a new FilterMapper instance.
func NewFilterMapper() *FilterMapper {
	return &FilterMapper{}
}

// ToDatabase converts a domain Filter to database SearchOptions.
func (m *FilterMapper) ToDatabase(filter Filter) sqlite.SearchOptions {
	opts := sqlite.SearchOptions{
		Completed:     filter.Completed,
		TitleContains: filter.TitleContains,
	}
	if filter.Priority != nil {
		p := string(*filter.Priority)
		opts.Priority = &p
	}
	return opts
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	Task   *TaskMapper
	Filter *FilterMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		Task:   NewTaskMapper(),
		Filter: NewFilterMapper(),
	}
}
