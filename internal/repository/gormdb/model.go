package gormdb

import (
	"time"

	"task-manager/internal/domain"
)

// taskRecord is the GORM model of the tasks table
type taskRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"not null"`
	Description string `gorm:"not null;default:''"`
	Priority    string `gorm:"not null;check:priority IN ('HIGH','MEDIUM','LOW')"`
	IsCompleted bool   `gorm:"not null;default:false"`
	CreatedAt   int64  `gorm:"not null;index;autoCreateTime:false"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

func toRecord(t domain.Task) taskRecord {
	return taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt.UnixMilli(),
	}
}

func (r taskRecord) toDomain() (domain.Task, error) {
	p, err := domain.ParsePriority(r.Priority)
	if err != nil {
		return domain.Task{}, err
	}
	return domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    p,
		IsCompleted: r.IsCompleted,
		CreatedAt:   time.UnixMilli(r.CreatedAt),
	}, nil
}
