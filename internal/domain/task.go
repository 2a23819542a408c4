package domain

import (
	"strings"
	"time"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// Task represents a to-do item in the domain model.
// This is a pure domain model without database-specific concerns.
type Task struct {
	ID          int64
	Title       string
	Description string
	Priority    Priority
	IsCompleted bool
	CreatedAt   time.Time
}

// NewTask creates a new, not yet persisted Task stamped with the current time.
func NewTask(title, description string, priority Priority) Task {
	return Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		CreatedAt:   Now(),
	}
}

// Now returns the current time truncated to the millisecond precision tasks are stored with.
func Now() time.Time {
	return timeNow().Truncate(time.Millisecond)
}

// IsNew reports whether the task has not been assigned an ID by the store yet.
func (t Task) IsNew() bool {
	return t.ID == 0
}

// IsValid checks if the task has valid data.
func (t Task) IsValid() bool {
	return strings.TrimSpace(t.Title) != "" && t.Priority.IsValid()
}

// ToggleCompleted returns a copy of the task with its completion state flipped.
func (t Task) ToggleCompleted() Task {
	t.IsCompleted = !t.IsCompleted
	return t
}

// Equal reports whether both tasks hold the same field values.
func (t Task) Equal(other Task) bool {
	return t.ID == other.ID &&
		t.Title == other.Title &&
		t.Description == other.Description &&
		t.Priority == other.Priority &&
		t.IsCompleted == other.IsCompleted &&
		t.CreatedAt.Equal(other.CreatedAt)
}

// String returns the task title for display purposes.
func (t Task) String() string {
	return t.Title
}

// EqualTasks reports whether two task lists hold equal tasks in the same order.
func EqualTasks(a, b []Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
