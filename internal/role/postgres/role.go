package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/permission"
	"github.com/taskcore/task-management/internal/role"
)

// RoleRepository implements role.Repository using GORM.
type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.Repository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(newRole *role.Role) error {
	return r.db.Create(newRole).Error
}

func (r *RoleRepository) GetByID(id int64) (*role.Role, error) {
	var found role.Role
	err := r.db.Preload("Permissions").Where("id = ?", id).First(&found).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, err
	}
	return &found, nil
}

func (r *RoleRepository) GetBySlug(slug string) (*role.Role, error) {
	var found role.Role
	err := r.db.Preload("Permissions").Where("slug = ?", slug).First(&found).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, err
	}
	return &found, nil
}

// GetActiveByIDs returns only active roles; unknown or inactive ids are
// silently absent from the result, which is what the permission resolver
// expects for dangling references.
func (r *RoleRepository) GetActiveByIDs(ids []int64) ([]*role.Role, error) {
	if len(ids) == 0 {
		return []*role.Role{}, nil
	}
	var roles []*role.Role
	err := r.db.Preload("Permissions").
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) GetAll() ([]*role.Role, error) {
	var roles []*role.Role
	err := r.db.Preload("Permissions").Order("created_at DESC").Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) Update(existing *role.Role) error {
	return r.db.Omit("Permissions").Save(existing).Error
}

func (r *RoleRepository) ReplacePermissions(existing *role.Role, perms []permission.Permission) error {
	return r.db.Model(existing).Association("Permissions").Replace(perms)
}

func (r *RoleRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM role_permissions WHERE role_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&role.Role{}, id).Error
	})
}

// UpsertBySlug inserts or refreshes a role keyed on its slug, replacing the
// permission set. Used by the seed command to keep system roles current.
func (r *RoleRepository) UpsertBySlug(seeded *role.Role, perms []permission.Permission) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing role.Role
		err := tx.Where("slug = ?", seeded.Slug).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seeded.Permissions = perms
			return tx.Create(seeded).Error
		}
		if err != nil {
			return err
		}

		existing.Name = seeded.Name
		existing.Description = seeded.Description
		existing.IsSystem = seeded.IsSystem
		existing.IsActive = seeded.IsActive
		if err := tx.Omit("Permissions").Save(&existing).Error; err != nil {
			return err
		}
		if err := tx.Model(&existing).Association("Permissions").Replace(perms); err != nil {
			return err
		}
		seeded.ID = existing.ID
		return nil
	})
}
