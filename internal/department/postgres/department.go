package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/department"
)

// DepartmentRepository implements department.Repository using GORM.
type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.Repository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(d *department.Department) error {
	return r.db.Create(d).Error
}

func (r *DepartmentRepository) GetByID(id int64) (*department.Department, error) {
	var found department.Department
	err := r.db.Where("id = ?", id).First(&found).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &found, nil
}

func (r *DepartmentRepository) FindByNameOrCode(name, code string) (*department.Department, error) {
	var found department.Department
	err := r.db.Where("name = ? OR code = ?", name, code).First(&found).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *DepartmentRepository) GetAll() ([]*department.Department, error) {
	var departments []*department.Department
	err := r.db.Order("name ASC").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) Update(d *department.Department) error {
	d.UpdatedAt = time.Now()
	return r.db.Save(d).Error
}

func (r *DepartmentRepository) Deactivate(id int64) error {
	return r.db.Model(&department.Department{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}
