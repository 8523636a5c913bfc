package postgres

import (
	"github.com/taskcore/task-management/internal/permission"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PermissionRepository implements permission.Repository using GORM.
type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.Repository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetAll() ([]*permission.Permission, error) {
	var perms []*permission.Permission
	err := r.db.Order("perm_group, resource, action").Find(&perms).Error
	return perms, err
}

func (r *PermissionRepository) GetByIDs(ids []int64) ([]*permission.Permission, error) {
	if len(ids) == 0 {
		return []*permission.Permission{}, nil
	}
	var perms []*permission.Permission
	err := r.db.Where("id IN ?", ids).Find(&perms).Error
	return perms, err
}

// Upsert inserts the permission or refreshes its description/group, keyed on
// the (resource, action) pair. Used only by the seed command.
func (r *PermissionRepository) Upsert(perm *permission.Permission) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource"}, {Name: "action"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "perm_group"}),
	}).Create(perm).Error
}
