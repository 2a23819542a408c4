package sqlite

// Task is a row of the tasks table
type Task struct {
	ID          int64
	Title       string
	Description string
	Priority    string
	IsCompleted bool
	CreatedAt   int64 // milliseconds since the Unix epoch
}

// SearchOptions contains all possible filter parameters for task queries.
// Nil fields do not constrain the result.
type SearchOptions struct {
	Priority      *string
	Completed     *bool
	TitleContains *string
}
