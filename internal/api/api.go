package api

import (
	"strconv"
	"strings"

	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/validation"
)

// TaskInput is the raw user input for a new task
type TaskInput struct {
	Title       string
	Description string
	Priority    string
}

// TaskEdit holds the fields a user asked to change. Nil fields are left alone.
type TaskEdit struct {
	Title       *string
	Description *string
	Priority    *string
}

// IsEmpty reports whether the edit changes nothing
func (e TaskEdit) IsEmpty() bool {
	return e.Title == nil && e.Description == nil && e.Priority == nil
}

// ListQuery is the raw user input selecting which tasks to show
type ListQuery struct {
	Filter   string
	Search   string
	Priority string
}

// API turns raw user input into validated domain values before it reaches the controllers.
type API interface {
	// Task input
	NewTask(input TaskInput) (domain.Task, error)
	ApplyEdit(task domain.Task, edit TaskEdit) (domain.Task, error)

	// Arguments
	ParseTaskID(arg string) (int64, error)
	ParseListQuery(query ListQuery) (ListSelection, error)
}

// ListSelection is a validated ListQuery. At most one selector is set.
type ListSelection struct {
	Mode     domain.FilterMode
	Search   string
	Priority *domain.Priority
}

type apiImpl struct {
	taskValidator *validation.TaskValidator
}

// New creates a new API instance with default validation limits.
func New() API {
	return &apiImpl{
		taskValidator: validation.NewTaskValidator(),
	}
}

// NewWithConfig creates a new API instance using the validation limits in cfg.
func NewWithConfig(cfg *config.Config) API {
	return &apiImpl{
		taskValidator: validation.NewTaskValidatorWithConfig(cfg),
	}
}

func (a *apiImpl) NewTask(input TaskInput) (domain.Task, error) {
	title, err := a.taskValidator.GetValidTitle(input.Title)
	if err != nil {
		return domain.Task{}, err
	}

	priority := domain.PriorityMedium
	if strings.TrimSpace(input.Priority) != "" {
		if priority, err = a.parsePriority(input.Priority); err != nil {
			return domain.Task{}, err
		}
	}

	task := domain.NewTask(title, strings.TrimSpace(input.Description), priority)
	if err := a.taskValidator.ValidateTask(task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (a *apiImpl) ApplyEdit(task domain.Task, edit TaskEdit) (domain.Task, error) {
	if edit.IsEmpty() {
		return domain.Task{}, errors.NewInvalidInputError("edit", "", "nothing to change")
	}

	if edit.Title != nil {
		title, err := a.taskValidator.GetValidTitle(*edit.Title)
		if err != nil {
			return domain.Task{}, err
		}
		task.Title = title
	}
	if edit.Description != nil {
		task.Description = strings.TrimSpace(*edit.Description)
	}
	if edit.Priority != nil {
		priority, err := a.parsePriority(*edit.Priority)
		if err != nil {
			return domain.Task{}, err
		}
		task.Priority = priority
	}

	if err := a.taskValidator.ValidateTask(task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (a *apiImpl) ParseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, errors.NewInvalidInputError("id", arg, "must be a positive integer")
	}
	if err := a.taskValidator.ValidateTaskID(id); err != nil {
		return 0, err
	}
	return id, nil
}

func (a *apiImpl) ParseListQuery(query ListQuery) (ListSelection, error) {
	selected := 0
	for _, s := range []string{query.Filter, query.Search, query.Priority} {
		if strings.TrimSpace(s) != "" {
			selected++
		}
	}
	if selected > 1 {
		return ListSelection{}, errors.NewInvalidInputError("list", "", "use only one of --filter, --search, --priority")
	}

	sel := ListSelection{Mode: domain.FilterAll}
	switch {
	case strings.TrimSpace(query.Filter) != "":
		mode, err := domain.ParseFilterMode(query.Filter)
		if err != nil {
			return ListSelection{}, errors.NewInvalidInputError("filter", query.Filter, "must be one of ALL, COMPLETED, PENDING")
		}
		sel.Mode = mode
	case strings.TrimSpace(query.Priority) != "":
		priority, err := a.parsePriority(query.Priority)
		if err != nil {
			return ListSelection{}, err
		}
		sel.Priority = &priority
	default:
		sel.Search = strings.TrimSpace(query.Search)
	}
	return sel, nil
}

func (a *apiImpl) parsePriority(name string) (domain.Priority, error) {
	if err := a.taskValidator.ValidatePriority(name); err != nil {
		return "", err
	}
	return domain.ParsePriority(name)
}
