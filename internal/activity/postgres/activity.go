package postgres

import (
	"gorm.io/gorm"

	"github.com/taskcore/task-management/internal/activity"
)

// ActivityRepository implements activity.Repository using GORM.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) activity.Repository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(l *activity.Log) error {
	return r.db.Create(l).Error
}

func (r *ActivityRepository) ListByTarget(targetType string, targetID int64) ([]*activity.Log, error) {
	var logs []*activity.Log
	err := r.db.
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

func (r *ActivityRepository) ListRecent(limit int) ([]*activity.Log, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []*activity.Log
	err := r.db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
