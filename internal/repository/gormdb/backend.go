package gormdb

import (
	"context"
	stderrors "errors"
	"time"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/repository/sqlite"
	"task-manager/internal/store"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var _ store.Backend = (*Backend)(nil)

// Options tunes per-statement timeouts. Zero values disable the timeout.
type Options struct {
	QueryTimeout time.Duration
	WriteTimeout time.Duration
}

// Backend stores tasks through GORM
type Backend struct {
	db   *gorm.DB
	opts Options
}

// OpenSQLite opens a GORM backend on the SQLite database at path
func OpenSQLite(path string, opts Options) (*Backend, error) {
	b, err := Open(gormsqlite.Open(path), opts)
	if err != nil {
		return nil, err
	}

	sqlDB, err := b.db.DB()
	if err != nil {
		return nil, errors.NewStorageError("open database", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return b, nil
}

// OpenPostgres opens a GORM backend on the PostgreSQL database at dsn
func OpenPostgres(dsn string, opts Options) (*Backend, error) {
	return Open(postgres.Open(dsn), opts)
}

// Open connects through dialector and migrates the tasks table
func Open(dialector gorm.Dialector, opts Options) (*Backend, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.NewStorageError("open database", err)
	}

	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, errors.NewStorageError("migrate tasks", err)
	}

	return &Backend{db: db, opts: opts}, nil
}

func (b *Backend) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.opts.QueryTimeout > 0 {
		return context.WithTimeout(ctx, b.opts.QueryTimeout)
	}
	return context.WithCancel(ctx)
}

func (b *Backend) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.opts.WriteTimeout > 0 {
		return context.WithTimeout(ctx, b.opts.WriteTimeout)
	}
	return context.WithCancel(ctx)
}

// Insert creates task. A non-zero ID replaces the row with that ID.
func (b *Backend) Insert(ctx context.Context, task *domain.Task) error {
	ctx, cancel := b.writeContext(ctx)
	defer cancel()

	rec := toRecord(*task)

	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createStatement(tx, &rec).Error; err != nil {
			return err
		}
		// PostgreSQL sequences do not move past explicit IDs
		if task.ID != 0 && tx.Dialector.Name() == "postgres" {
			return tx.Exec(`SELECT setval(pg_get_serial_sequence('tasks', 'id'), (SELECT MAX(id) FROM tasks))`).Error
		}
		return nil
	})
	if err != nil {
		return errors.StorageFailure("insert task", err)
	}

	task.ID = rec.ID
	return nil
}

// createStatement inserts rec, upserting on id only when rec carries one.
// A store-assigned ID must never overwrite an existing row.
func createStatement(db *gorm.DB, rec *taskRecord) *gorm.DB {
	if rec.ID != 0 {
		db = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		})
	}
	return db.Create(rec)
}

func (b *Backend) Update(ctx context.Context, task domain.Task) (bool, error) {
	ctx, cancel := b.writeContext(ctx)
	defer cancel()

	res := b.db.WithContext(ctx).
		Model(&taskRecord{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"title":        task.Title,
			"description":  task.Description,
			"priority":     string(task.Priority),
			"is_completed": task.IsCompleted,
		})
	if res.Error != nil {
		return false, errors.StorageFailure("update task", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (b *Backend) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := b.writeContext(ctx)
	defer cancel()

	res := b.db.WithContext(ctx).Delete(&taskRecord{}, id)
	if res.Error != nil {
		return false, errors.StorageFailure("delete task", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (b *Backend) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, cancel := b.queryContext(ctx)
	defer cancel()

	var rec taskRecord
	err := b.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.StorageFailure("get task", err)
	}

	task, err := rec.toDomain()
	if err != nil {
		return nil, errors.StorageFailure("decode task", err)
	}
	return &task, nil
}

func (b *Backend) Query(ctx context.Context, filter domain.Filter) ([]domain.Task, error) {
	ctx, cancel := b.queryContext(ctx)
	defer cancel()

	q := b.db.WithContext(ctx).Model(&taskRecord{})

	if filter.Priority != nil {
		q = q.Where("priority = ?", string(*filter.Priority))
	}
	if filter.Completed != nil {
		q = q.Where("is_completed = ?", *filter.Completed)
	}
	if filter.TitleContains != nil && *filter.TitleContains != "" {
		q = q.Where(`title LIKE ? ESCAPE '\'`, sqlite.ContainsPattern(*filter.TitleContains))
	}

	var recs []taskRecord
	if err := q.Order("created_at DESC").Order("id DESC").Find(&recs).Error; err != nil {
		return nil, errors.StorageFailure("query tasks", err)
	}

	tasks := make([]domain.Task, len(recs))
	for i, rec := range recs {
		task, err := rec.toDomain()
		if err != nil {
			return nil, errors.StorageFailure("decode tasks", err)
		}
		tasks[i] = task
	}
	return tasks, nil
}

func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
