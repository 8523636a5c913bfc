package workflow

import (
	"time"

	"github.com/gosimple/slug"
)

// DefaultStatusColor is applied when a status is created without a color.
const DefaultStatusColor = "#6b7280"

// WorkflowStatus is one node of the status graph. At most one active status is
// the default (assigned to newly created tasks), and final statuses stamp a
// task's completion time when reached. Statuses deactivate instead of
// deleting so historical tasks keep resolvable references.
type WorkflowStatus struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	Color       string    `json:"color" gorm:"default:'#6b7280'"`
	Order       int       `json:"order" gorm:"column:display_order;default:0"`
	IsDefault   bool      `json:"is_default" gorm:"column:is_default;default:false"`
	IsFinal     bool      `json:"is_final" gorm:"column:is_final;default:false"`
	IsActive    bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (WorkflowStatus) TableName() string {
	return "workflow_statuses"
}

// StatusSlugFor derives the unique slug for a status name.
func StatusSlugFor(name string) string {
	return slug.Make(name)
}

// StatusRepository defines the data access methods for workflow statuses.
type StatusRepository interface {
	Create(s *WorkflowStatus) error
	GetByID(id int64) (*WorkflowStatus, error)
	GetBySlug(slug string) (*WorkflowStatus, error)
	// GetDefault returns the active default status, or nil when none is set.
	GetDefault() (*WorkflowStatus, error)
	// ClearDefaults unsets is_default on every status except the given one.
	ClearDefaults(exceptID int64) error
	Update(s *WorkflowStatus) error
	Deactivate(id int64) error
	ListActive() ([]*WorkflowStatus, error)
	UpsertBySlug(s *WorkflowStatus) error
}
