package activity

import (
	"encoding/json"
	"time"
)

// Log is one audit trail entry. Entries are written by event subscribers and
// are append-only.
type Log struct {
	ID         int64           `json:"id" gorm:"primaryKey"`
	Action     string          `json:"action" gorm:"not null;index"`
	ActorID    int64           `json:"actor_id" gorm:"column:actor_id;not null"`
	ActorName  string          `json:"actor_name" gorm:"column:actor_name"`
	TargetType string          `json:"target_type" gorm:"column:target_type;not null"`
	TargetID   int64           `json:"target_id" gorm:"column:target_id;not null;index"`
	Details    json.RawMessage `json:"details" gorm:"type:jsonb"`
	CreatedAt  time.Time       `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Log) TableName() string {
	return "activity_logs"
}

// Repository defines the data access methods for activity logs.
type Repository interface {
	Create(l *Log) error
	ListByTarget(targetType string, targetID int64) ([]*Log, error)
	ListRecent(limit int) ([]*Log, error)
}
