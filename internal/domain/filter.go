package domain

import (
	"fmt"
	"strings"
)

// Filter describes which tasks a query returns.
// A nil field does not constrain the result.
type Filter struct {
	Priority      *Priority
	Completed     *bool
	TitleContains *string
}

// AllTasks returns a filter matching every task.
func AllTasks() Filter {
	return Filter{}
}

// ByPriority returns a filter matching tasks with the given priority.
func ByPriority(p Priority) Filter {
	return Filter{Priority: &p}
}

// ByCompletion returns a filter matching tasks with the given completion state.
func ByCompletion(completed bool) Filter {
	return Filter{Completed: &completed}
}

// ByTitle returns a filter matching tasks whose title contains text.
// The empty string matches every task.
func ByTitle(text string) Filter {
	return Filter{TitleContains: &text}
}

// Matches reports whether the task could be returned by a query using this filter.
// Title matching is case-insensitive so the result is a superset of what
// every storage backend returns.
func (f Filter) Matches(t Task) bool {
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Completed != nil && t.IsCompleted != *f.Completed {
		return false
	}
	if f.TitleContains != nil && *f.TitleContains != "" {
		if !strings.Contains(strings.ToLower(t.Title), strings.ToLower(*f.TitleContains)) {
			return false
		}
	}
	return true
}

// String returns a short description used in logs.
func (f Filter) String() string {
	var parts []string
	if f.Priority != nil {
		parts = append(parts, "priority="+f.Priority.String())
	}
	if f.Completed != nil {
		parts = append(parts, fmt.Sprintf("completed=%t", *f.Completed))
	}
	if f.TitleContains != nil {
		parts = append(parts, fmt.Sprintf("title~%q", *f.TitleContains))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ",")
}

// FilterMode selects the completion filter applied by the task list.
type FilterMode string

const (
	FilterAll       FilterMode = "ALL"
	FilterCompleted FilterMode = "COMPLETED"
	FilterPending   FilterMode = "PENDING"
)

// ParseFilterMode parses a filter mode name case-insensitively.
func ParseFilterMode(s string) (FilterMode, error) {
	m := FilterMode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case FilterAll, FilterCompleted, FilterPending:
		return m, nil
	default:
		return "", fmt.Errorf("unknown filter mode %q", s)
	}
}

// ViewMode selects how the task list is laid out.
type ViewMode string

const (
	ViewList ViewMode = "LIST"
	ViewGrid ViewMode = "GRID"
)

// Toggle returns the other view mode.
func (v ViewMode) Toggle() ViewMode {
	if v == ViewGrid {
		return ViewList
	}
	return ViewGrid
}
