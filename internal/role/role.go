package role

import (
	"time"

	"github.com/gosimple/slug"

	"github.com/taskcore/task-management/internal/permission"
)

// SuperAdminSlug is the reserved slug that short-circuits permission
// resolution to the full catalog.
const SuperAdminSlug = "super-admin"

// Role is a named bundle of permissions assignable to users. System roles are
// seeded at deploy time and protected from deletion and renaming; unlike most
// entities in this system, non-system roles are hard-deleted.
type Role struct {
	ID          int64                   `json:"id" gorm:"primaryKey"`
	Name        string                  `json:"name" gorm:"uniqueIndex;not null"`
	Slug        string                  `json:"slug" gorm:"uniqueIndex;not null"`
	Description string                  `json:"description"`
	Permissions []permission.Permission `json:"permissions" gorm:"many2many:role_permissions"`
	IsSystem    bool                    `json:"is_system" gorm:"column:is_system;default:false"`
	IsActive    bool                    `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedBy   *int64                  `json:"created_by,omitempty" gorm:"column:created_by"`
	CreatedAt   time.Time               `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time               `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Role) TableName() string {
	return "roles"
}

// PermStrings materializes the role's grant as resource:action strings.
func (r *Role) PermStrings() []string {
	strs := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		strs = append(strs, p.PermString())
	}
	return strs
}

func (r *Role) IsSuperAdmin() bool {
	return r.Slug == SuperAdminSlug
}

// SlugFor derives the unique slug for a role name: lowercased, hyphenated,
// non-alphanumerics stripped.
func SlugFor(name string) string {
	return slug.Make(name)
}
