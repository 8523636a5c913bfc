package department

import (
	"time"
)

// Department is an organizational unit. The head, when set, is the user
// notified under the department-head recipient strategy. Departments
// deactivate instead of deleting so users and tasks keep resolvable
// references.
type Department struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Code        string    `json:"code" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	HeadID      *int64    `json:"head_id,omitempty" gorm:"column:head_id"`
	ParentID    *int64    `json:"parent_id,omitempty" gorm:"column:parent_id"`
	IsActive    bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Department) TableName() string {
	return "departments"
}

// Repository defines the data access methods for departments.
type Repository interface {
	Create(d *Department) error
	GetByID(id int64) (*Department, error)
	// FindByNameOrCode returns nil without error when neither matches, so the
	// service can use it for conflict checks.
	FindByNameOrCode(name, code string) (*Department, error)
	GetAll() ([]*Department, error)
	Update(d *Department) error
	Deactivate(id int64) error
}
