package notification

import (
	"time"

	"github.com/taskcore/task-management/internal/role"
)

// Recipient strategies a rule can select.
const (
	StrategyAssignees      = "assignees"
	StrategyCreator        = "creator"
	StrategyDepartmentHead = "department_head"
	StrategySpecificRoles  = "specific_roles"
)

// ValidStrategy reports whether s names a known recipient strategy.
func ValidStrategy(s string) bool {
	switch s {
	case StrategyAssignees, StrategyCreator, StrategyDepartmentHead, StrategySpecificRoles:
		return true
	}
	return false
}

// Rule configures who hears about one event type. Several rules may target
// the same event; the dispatcher unions their recipients. With no active rule
// for an event, the dispatcher falls back to notifying the task's assignees
// and creator.
type Rule struct {
	ID             int64       `json:"id" gorm:"primaryKey"`
	Event          string      `json:"event" gorm:"not null;index"`
	Strategy       string      `json:"strategy" gorm:"not null"`
	RecipientRoles []role.Role `json:"recipient_roles" gorm:"many2many:notification_rule_roles"`
	IsActive       bool        `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt      time.Time   `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time   `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Rule) TableName() string {
	return "notification_rules"
}

// RecipientRoleIDs returns the ids of the rule's recipient roles.
func (r *Rule) RecipientRoleIDs() []int64 {
	ids := make([]int64, 0, len(r.RecipientRoles))
	for _, rr := range r.RecipientRoles {
		ids = append(ids, rr.ID)
	}
	return ids
}

// RuleRepository defines the data access methods for notification rules.
type RuleRepository interface {
	Create(r *Rule) error
	GetByID(id int64) (*Rule, error)
	// ListByEvent returns the active rules for the event.
	ListByEvent(event string) ([]*Rule, error)
	List() ([]*Rule, error)
	Update(r *Rule) error
	ReplaceRecipientRoles(r *Rule, roles []role.Role) error
	Delete(id int64) error
}
