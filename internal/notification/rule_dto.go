package notification

import (
	"strings"

	"github.com/taskcore/task-management/internal"
)

type CreateRuleDTO struct {
	Event            string  `json:"event"`
	Strategy         string  `json:"strategy"`
	RecipientRoleIDs []int64 `json:"recipient_role_ids"`
	IsActive         *bool   `json:"is_active"`
}

func (d *CreateRuleDTO) Validate() error {
	d.Event = strings.TrimSpace(d.Event)
	if d.Event == "" {
		return internal.NewValidationError("Rule event is required", internal.ErrCodeValidationFailed)
	}
	if !ValidStrategy(d.Strategy) {
		return internal.NewValidationError("Unknown recipient strategy", internal.ErrCodeValidationFailed)
	}
	if d.Strategy == StrategySpecificRoles && len(d.RecipientRoleIDs) == 0 {
		return internal.NewValidationError("Recipient roles are required for the specific_roles strategy", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateRuleDTO struct {
	Strategy         *string  `json:"strategy,omitempty"`
	RecipientRoleIDs *[]int64 `json:"recipient_role_ids,omitempty"`
	IsActive         *bool    `json:"is_active,omitempty"`
}
