package validation

import (
	"task-manager/internal/config"
	"task-manager/internal/domain"
)

// TaskValidator validates task input before it is saved
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a task validator with default limits
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{
		validator: NewValidator(),
	}
}

// NewTaskValidatorWithConfig creates a task validator with the limits in cfg
func NewTaskValidatorWithConfig(cfg *config.Config) *TaskValidator {
	return &TaskValidator{
		validator: NewValidatorWithConfig(cfg),
	}
}

// ValidateTitle validates a task title
func (tv *TaskValidator) ValidateTitle(title string) error {
	ve := NewValidationError()
	tv.checkTitle(ve, title)
	return ve.orNil()
}

// ValidateDescription validates a task description
func (tv *TaskValidator) ValidateDescription(description string) error {
	ve := NewValidationError()
	tv.checkDescription(ve, description)
	return ve.orNil()
}

// ValidatePriority validates a priority name
func (tv *TaskValidator) ValidatePriority(name string) error {
	ve := NewValidationError()
	if _, err := domain.ParsePriority(name); err != nil {
		ve.AddInvalidValueError("priority", name, "must be one of HIGH, MEDIUM, LOW")
	}
	return ve.orNil()
}

// ValidateTask validates every user-editable field of task
func (tv *TaskValidator) ValidateTask(task domain.Task) error {
	ve := NewValidationError()

	tv.checkTitle(ve, task.Title)
	tv.checkDescription(ve, task.Description)

	if !task.Priority.IsValid() {
		ve.AddInvalidValueError("priority", task.Priority, "must be one of HIGH, MEDIUM, LOW")
	}
	if task.ID < 0 {
		ve.AddInvalidValueError("id", task.ID, "must not be negative")
	}

	return ve.orNil()
}

// ValidateTaskID validates an ID given on the command line
func (tv *TaskValidator) ValidateTaskID(id int64) error {
	ve := NewValidationError()
	if !tv.validator.IsValidTaskID(id) {
		ve.AddInvalidValueError("id", id, "must be a positive integer")
	}
	return ve.orNil()
}

// GetValidTitle returns the trimmed title if it is valid
func (tv *TaskValidator) GetValidTitle(title string) (string, error) {
	if err := tv.ValidateTitle(title); err != nil {
		return "", err
	}
	return tv.validator.TrimAndValidateString(title), nil
}

func (tv *TaskValidator) checkTitle(ve *ValidationError, title string) {
	trimmed := tv.validator.TrimAndValidateString(title)

	if !tv.validator.IsNonEmptyString(trimmed) {
		ve.AddRequiredError("title")
		return
	}
	if max := tv.validator.titleMaxLength(); !tv.validator.IsWithinLength(trimmed, max) {
		ve.AddInvalidLengthError("title", trimmed, max)
	}
	if !tv.validator.HasNoControlCharacters(trimmed, false) {
		ve.AddInvalidCharacterError("title", trimmed)
	}
}

func (tv *TaskValidator) checkDescription(ve *ValidationError, description string) {
	if max := tv.validator.descriptionMaxLength(); !tv.validator.IsWithinLength(description, max) {
		ve.AddInvalidLengthError("description", description, max)
	}
	if !tv.validator.HasNoControlCharacters(description, true) {
		ve.AddInvalidCharacterError("description", description)
	}
}
