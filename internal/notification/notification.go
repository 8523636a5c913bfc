package notification

import (
	"time"
)

const (
	TypeStatusChanged = "task_status_changed"
)

// Notification is one in-app message for a single recipient.
type Notification struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;not null;index"`
	Type      string    `json:"type" gorm:"not null"`
	Title     string    `json:"title" gorm:"not null"`
	Message   string    `json:"message"`
	TaskID    *int64    `json:"task_id,omitempty" gorm:"column:task_id"`
	IsRead    bool      `json:"is_read" gorm:"column:is_read;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Repository defines the data access methods for notifications.
type Repository interface {
	CreateBatch(notifications []*Notification) error
	ListByUser(userID int64, unreadOnly bool) ([]*Notification, error)
	CountUnread(userID int64) (int64, error)
	MarkRead(id, userID int64) error
	MarkAllRead(userID int64) error
}
