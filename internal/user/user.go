package user

import (
	"time"

	"github.com/taskcore/task-management/internal/role"
)

// User is an account that can authenticate and hold roles. Authorization
// never reads users directly; it works off the role ids carried by the
// request principal.
type User struct {
	ID           int64       `json:"id" gorm:"primaryKey"`
	Email        string      `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string      `json:"-" gorm:"column:password_hash;not null"`
	FirstName    string      `json:"first_name" gorm:"column:first_name;not null"`
	LastName     string      `json:"last_name" gorm:"column:last_name;not null"`
	Roles        []role.Role `json:"roles" gorm:"many2many:user_roles"`
	IsActive     bool        `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time   `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time   `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Repository defines the data access methods for users.
type Repository interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	GetAll() ([]*User, error)
	Update(u *User) error
	ReplaceRoles(u *User, roles []role.Role) error
	// GetIDsByRoleIDs returns the ids of active users holding any of the
	// given roles. Used to fan notifications out to role-based recipients.
	GetIDsByRoleIDs(roleIDs []int64) ([]int64, error)
	UpsertByEmail(u *User, roles []role.Role) error
}
