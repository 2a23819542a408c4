package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"task-manager/internal/errors"
	"task-manager/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository defines the interface for task row operations
type Repository interface {
	// InsertTask inserts task, or replaces the row with the same ID when
	// task.ID is non-zero. The assigned ID is written back to task.
	InsertTask(ctx context.Context, task *Task) error

	GetTask(ctx context.Context, id int64) (*Task, error)
	SearchTasks(ctx context.Context, opts SearchOptions) ([]*Task, error)

	// UpdateTask and DeleteTask report the number of rows changed;
	// a missing row is not an error.
	UpdateTask(ctx context.Context, task *Task) (int64, error)
	DeleteTask(ctx context.Context, id int64) (int64, error)

	Close() error
}

// Options tunes per-statement timeouts. Zero values disable the timeout.
type Options struct {
	QueryTimeout time.Duration
	WriteTimeout time.Duration
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db   *sql.DB
	opts Options
}

// New creates a new SQLite repository instance
func New(dbPath string) (*SQLiteRepository, error) {
	return NewWithOptions(dbPath, Options{})
}

// NewWithOptions creates a new SQLite repository with statement timeouts
func NewWithOptions(dbPath string, opts Options) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, errors.NewStorageError("open database", err)
	}

	// A single connection serializes writers and keeps :memory: databases alive
	db.SetMaxOpenConns(1)

	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewStorageError("run migrations", err)
	}

	return &SQLiteRepository{db: db, opts: opts}, nil
}

func dsn(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_pragma=busy_timeout(5000)"
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.QueryTimeout > 0 {
		return context.WithTimeout(ctx, r.opts.QueryTimeout)
	}
	return context.WithCancel(ctx)
}

func (r *SQLiteRepository) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.WriteTimeout > 0 {
		return context.WithTimeout(ctx, r.opts.WriteTimeout)
	}
	return context.WithCancel(ctx)
}

// InsertTask creates a task or replaces the existing row with the same ID
func (r *SQLiteRepository) InsertTask(ctx context.Context, task *Task) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	var id interface{}
	if task.ID != 0 {
		id = task.ID
	}

	query := `
	INSERT OR REPLACE INTO tasks (id, title, description, priority, is_completed, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	newID, err := ExecuteWithLastInsertID(ctx, r.db, query,
		id, task.Title, task.Description, task.Priority, task.IsCompleted, task.CreatedAt)
	if err != nil {
		return err
	}

	task.ID = newID
	return nil
}

// GetTask retrieves a task by ID
func (r *SQLiteRepository) GetTask(ctx context.Context, id int64) (*Task, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanTask, "task", fmt.Sprintf("%d", id), id)
}

// UpdateTask replaces every mutable column of the row matching task.ID.
// created_at is never rewritten.
func (r *SQLiteRepository) UpdateTask(ctx context.Context, task *Task) (int64, error) {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `
	UPDATE tasks
	SET title = ?, description = ?, priority = ?, is_completed = ?
	WHERE id = ?`

	return ExecuteWithRowsAffected(ctx, r.db, query,
		task.Title, task.Description, task.Priority, task.IsCompleted, task.ID)
}

// DeleteTask deletes a task by ID
func (r *SQLiteRepository) DeleteTask(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := `DELETE FROM tasks WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, id)
}

// SearchTasks returns the tasks matching opts ordered by creation time, newest first
func (r *SQLiteRepository) SearchTasks(ctx context.Context, opts SearchOptions) ([]*Task, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var conditions []string
	var args []interface{}

	if opts.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, *opts.Priority)
	}

	if opts.Completed != nil {
		conditions = append(conditions, "is_completed = ?")
		args = append(args, *opts.Completed)
	}

	// An empty needle matches every row
	if opts.TitleContains != nil && *opts.TitleContains != "" {
		conditions = append(conditions, `title LIKE ? ESCAPE '\'`)
		args = append(args, ContainsPattern(*opts.TitleContains))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	return QueryMultiple(ctx, r.db, query, ScanTasks, "tasks", args...)
}
