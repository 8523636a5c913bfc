package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/role"
	"github.com/taskcore/task-management/internal/user"
)

// UserRepository implements user.Repository using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var found user.User
	err := r.db.Preload("Roles").Where("id = ?", id).First(&found).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("User not found", internal.ErrCodeValidationFailed)
		}
		return nil, err
	}
	return &found, nil
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	var found user.User
	err := r.db.Preload("Roles").Where("email = ?", email).First(&found).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("User not found", internal.ErrCodeValidationFailed)
		}
		return nil, err
	}
	return &found, nil
}

func (r *UserRepository) GetAll() ([]*user.User, error) {
	var users []*user.User
	err := r.db.Preload("Roles").Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(u *user.User) error {
	u.UpdatedAt = time.Now()
	return r.db.Omit("Roles").Save(u).Error
}

func (r *UserRepository) ReplaceRoles(u *user.User, roles []role.Role) error {
	return r.db.Model(u).Association("Roles").Replace(roles)
}

func (r *UserRepository) GetIDsByRoleIDs(roleIDs []int64) ([]int64, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Raw(`
		SELECT DISTINCT u.id
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		WHERE ur.role_id IN ? AND u.is_active = true`, roleIDs).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpsertByEmail inserts or refreshes a user keyed on email, replacing the
// role set. The stored password hash is kept on refresh so reseeding does not
// reset credentials.
func (r *UserRepository) UpsertByEmail(u *user.User, roles []role.Role) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing user.User
		err := tx.Where("email = ?", u.Email).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			u.Roles = roles
			return tx.Create(u).Error
		}
		if err != nil {
			return err
		}

		existing.FirstName = u.FirstName
		existing.LastName = u.LastName
		existing.IsActive = u.IsActive
		if err := tx.Omit("Roles").Save(&existing).Error; err != nil {
			return err
		}
		if err := tx.Model(&existing).Association("Roles").Replace(roles); err != nil {
			return err
		}
		u.ID = existing.ID
		return nil
	})
}
