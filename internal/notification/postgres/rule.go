package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/notification"
	"github.com/taskcore/task-management/internal/role"
)

// RuleRepository implements notification.RuleRepository using GORM.
type RuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) notification.RuleRepository {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) Create(rule *notification.Rule) error {
	return r.db.Create(rule).Error
}

func (r *RuleRepository) GetByID(id int64) (*notification.Rule, error) {
	var rule notification.Rule
	err := r.db.Preload("RecipientRoles").Where("id = ?", id).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("Notification rule not found", internal.ErrCodeNotificationRuleNotFound)
		}
		return nil, err
	}
	return &rule, nil
}

func (r *RuleRepository) ListByEvent(event string) ([]*notification.Rule, error) {
	var rules []*notification.Rule
	err := r.db.Preload("RecipientRoles").
		Where("event = ? AND is_active = ?", event, true).
		Find(&rules).Error
	return rules, err
}

func (r *RuleRepository) List() ([]*notification.Rule, error) {
	var rules []*notification.Rule
	err := r.db.Preload("RecipientRoles").Order("event ASC").Find(&rules).Error
	return rules, err
}

func (r *RuleRepository) Update(rule *notification.Rule) error {
	rule.UpdatedAt = time.Now()
	return r.db.Omit("RecipientRoles").Save(rule).Error
}

func (r *RuleRepository) ReplaceRecipientRoles(rule *notification.Rule, roles []role.Role) error {
	return r.db.Model(rule).Association("RecipientRoles").Replace(roles)
}

func (r *RuleRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM notification_rule_roles WHERE rule_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&notification.Rule{}, id).Error
	})
}
