package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/role"
	"github.com/taskcore/task-management/internal/workflow"
)

// StatusRepository implements workflow.StatusRepository using GORM.
type StatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) workflow.StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) Create(s *workflow.WorkflowStatus) error {
	return r.db.Create(s).Error
}

func (r *StatusRepository) GetByID(id int64) (*workflow.WorkflowStatus, error) {
	var status workflow.WorkflowStatus
	err := r.db.Where("id = ?", id).First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrStatusNotFound
		}
		return nil, err
	}
	return &status, nil
}

// GetBySlug returns nil without error when no status holds the slug, so
// callers can use it for conflict checks.
func (r *StatusRepository) GetBySlug(slug string) (*workflow.WorkflowStatus, error) {
	var status workflow.WorkflowStatus
	err := r.db.Where("slug = ?", slug).First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

func (r *StatusRepository) GetDefault() (*workflow.WorkflowStatus, error) {
	var status workflow.WorkflowStatus
	err := r.db.Where("is_default = ? AND is_active = ?", true, true).First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

func (r *StatusRepository) ClearDefaults(exceptID int64) error {
	return r.db.Model(&workflow.WorkflowStatus{}).
		Where("id <> ? AND is_default = ?", exceptID, true).
		Updates(map[string]interface{}{"is_default": false, "updated_at": time.Now()}).Error
}

func (r *StatusRepository) Update(s *workflow.WorkflowStatus) error {
	s.UpdatedAt = time.Now()
	return r.db.Save(s).Error
}

func (r *StatusRepository) Deactivate(id int64) error {
	return r.db.Model(&workflow.WorkflowStatus{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}

func (r *StatusRepository) ListActive() ([]*workflow.WorkflowStatus, error) {
	var statuses []*workflow.WorkflowStatus
	err := r.db.Where("is_active = ?", true).Order("display_order ASC").Find(&statuses).Error
	return statuses, err
}

// UpsertBySlug inserts or refreshes a status keyed on its slug. Used by the
// seed command; the default flag is left alone on refresh so operator changes
// survive reseeding.
func (r *StatusRepository) UpsertBySlug(s *workflow.WorkflowStatus) error {
	var existing workflow.WorkflowStatus
	err := r.db.Where("slug = ?", s.Slug).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(s).Error
	}
	if err != nil {
		return err
	}

	existing.Name = s.Name
	existing.Description = s.Description
	existing.Color = s.Color
	existing.Order = s.Order
	existing.IsFinal = s.IsFinal
	existing.IsActive = true
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	s.ID = existing.ID
	return nil
}

// TransitionRepository implements workflow.TransitionRepository using GORM.
type TransitionRepository struct {
	db *gorm.DB
}

func NewTransitionRepository(db *gorm.DB) workflow.TransitionRepository {
	return &TransitionRepository{db: db}
}

func (r *TransitionRepository) Create(t *workflow.WorkflowTransition) error {
	return r.db.Create(t).Error
}

func (r *TransitionRepository) GetByID(id int64) (*workflow.WorkflowTransition, error) {
	var transition workflow.WorkflowTransition
	err := r.db.
		Preload("AllowedRoles").
		Preload("ApproverRoles").
		Preload("FromStatus").
		Preload("ToStatus").
		Where("id = ?", id).First(&transition).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("Transition not found", internal.ErrCodeTransitionNotFound)
		}
		return nil, err
	}
	return &transition, nil
}

func (r *TransitionRepository) EdgeExists(fromStatusID, toStatusID int64) (bool, error) {
	var count int64
	err := r.db.Model(&workflow.WorkflowTransition{}).
		Where("from_status_id = ? AND to_status_id = ?", fromStatusID, toStatusID).
		Count(&count).Error
	return count > 0, err
}

func (r *TransitionRepository) FindEdge(fromStatusID, toStatusID int64) (*workflow.WorkflowTransition, error) {
	var transition workflow.WorkflowTransition
	err := r.db.
		Preload("AllowedRoles").
		Preload("ApproverRoles").
		Where("from_status_id = ? AND to_status_id = ? AND is_active = ?", fromStatusID, toStatusID, true).
		First(&transition).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transition, nil
}

func (r *TransitionRepository) ListActive() ([]*workflow.WorkflowTransition, error) {
	var transitions []*workflow.WorkflowTransition
	err := r.db.
		Preload("AllowedRoles").
		Preload("ApproverRoles").
		Preload("FromStatus").
		Preload("ToStatus").
		Where("is_active = ?", true).
		Order("from_status_id ASC, to_status_id ASC").
		Find(&transitions).Error
	return transitions, err
}

func (r *TransitionRepository) Update(t *workflow.WorkflowTransition) error {
	t.UpdatedAt = time.Now()
	return r.db.Omit("AllowedRoles", "ApproverRoles", "FromStatus", "ToStatus").Save(t).Error
}

func (r *TransitionRepository) ReplaceAllowedRoles(t *workflow.WorkflowTransition, roles []role.Role) error {
	return r.db.Model(t).Association("AllowedRoles").Replace(roles)
}

func (r *TransitionRepository) ReplaceApproverRoles(t *workflow.WorkflowTransition, roles []role.Role) error {
	return r.db.Model(t).Association("ApproverRoles").Replace(roles)
}

func (r *TransitionRepository) Deactivate(id int64) error {
	return r.db.Model(&workflow.WorkflowTransition{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}
