package permission

import (
	"fmt"
	"time"
)

// Permission is one resource:action capability. The catalog is seeded at
// provisioning time and append-only afterwards; end users never create
// permissions.
type Permission struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Resource    string    `json:"resource" gorm:"not null;uniqueIndex:idx_permissions_resource_action"`
	Action      string    `json:"action" gorm:"not null;uniqueIndex:idx_permissions_resource_action"`
	Description string    `json:"description" gorm:"not null"`
	Group       string    `json:"group" gorm:"column:perm_group;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Permission) TableName() string {
	return "permissions"
}

// PermString returns the resource:action form the authorization gate
// operates on.
func (p Permission) PermString() string {
	return fmt.Sprintf("%s:%s", p.Resource, p.Action)
}

// Repository defines the data access methods for the permission catalog.
type Repository interface {
	GetAll() ([]*Permission, error)
	GetByIDs(ids []int64) ([]*Permission, error)
	Upsert(perm *Permission) error
}
