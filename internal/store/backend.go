package store

import (
	"context"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/repository/sqlite"
)

// Backend is the row storage a Store persists tasks through.
// Implementations report failures as storage errors.
type Backend interface {
	// Insert stores task, replacing any row with the same non-zero ID,
	// and writes the assigned ID back to task.
	Insert(ctx context.Context, task *domain.Task) error

	// Update replaces the mutable fields of the row with task.ID, leaving
	// CreatedAt untouched. It reports whether a row matched.
	Update(ctx context.Context, task domain.Task) (bool, error)

	// Delete removes the row with id and reports whether one existed.
	Delete(ctx context.Context, id int64) (bool, error)

	// GetByID returns nil without error when no row has id.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Query returns the tasks matching filter, newest first.
	Query(ctx context.Context, filter domain.Filter) ([]domain.Task, error)

	Close() error
}

// SQLiteBackend adapts the sqlite row repository to Backend
type SQLiteBackend struct {
	repo   sqlite.Repository
	mapper *domain.Mapper
}

// NewSQLiteBackend wraps repo
func NewSQLiteBackend(repo sqlite.Repository) *SQLiteBackend {
	return &SQLiteBackend{
		repo:   repo,
		mapper: domain.NewMapper(),
	}
}

func (b *SQLiteBackend) Insert(ctx context.Context, task *domain.Task) error {
	row := b.mapper.Task.ToDatabase(*task)
	if err := b.repo.InsertTask(ctx, &row); err != nil {
		return err
	}
	task.ID = row.ID
	return nil
}

func (b *SQLiteBackend) Update(ctx context.Context, task domain.Task) (bool, error) {
	row := b.mapper.Task.ToDatabase(task)
	n, err := b.repo.UpdateTask(ctx, &row)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := b.repo.DeleteTask(ctx, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *SQLiteBackend) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row, err := b.repo.GetTask(ctx, id)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}

	task, err := b.mapper.Task.FromDatabase(*row)
	if err != nil {
		return nil, errors.StorageFailure("decode task", err)
	}
	return &task, nil
}

func (b *SQLiteBackend) Query(ctx context.Context, filter domain.Filter) ([]domain.Task, error) {
	rows, err := b.repo.SearchTasks(ctx, b.mapper.Filter.ToDatabase(filter))
	if err != nil {
		return nil, err
	}

	tasks, err := b.mapper.Task.FromDatabaseSlice(rows)
	if err != nil {
		return nil, errors.StorageFailure("decode tasks", err)
	}
	return tasks, nil
}

func (b *SQLiteBackend) Close() error {
	return b.repo.Close()
}
