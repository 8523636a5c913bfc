package workflow

import (
	"strings"

	"github.com/taskcore/task-management/internal"
)

type CreateStatusDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Order       int    `json:"order"`
	IsDefault   bool   `json:"is_default"`
	IsFinal     bool   `json:"is_final"`
}

func (d CreateStatusDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return internal.NewValidationError("Status name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateStatusDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Order       *int    `json:"order,omitempty"`
	IsDefault   *bool   `json:"is_default,omitempty"`
	IsFinal     *bool   `json:"is_final,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type CreateTransitionDTO struct {
	FromStatusID     int64   `json:"from_status_id"`
	ToStatusID       int64   `json:"to_status_id"`
	AllowedRoleIDs   []int64 `json:"allowed_role_ids"`
	RequiresRemarks  bool    `json:"requires_remarks"`
	RequiresApproval bool    `json:"requires_approval"`
	ApproverRoleIDs  []int64 `json:"approver_role_ids"`
}

func (d CreateTransitionDTO) Validate() error {
	if d.FromStatusID == 0 || d.ToStatusID == 0 {
		return internal.NewValidationError("Both from and to statuses are required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateTransitionDTO struct {
	AllowedRoleIDs   *[]int64 `json:"allowed_role_ids,omitempty"`
	RequiresRemarks  *bool    `json:"requires_remarks,omitempty"`
	RequiresApproval *bool    `json:"requires_approval,omitempty"`
	ApproverRoleIDs  *[]int64 `json:"approver_role_ids,omitempty"`
	IsActive         *bool    `json:"is_active,omitempty"`
}

// TransitionTaskDTO is the request body for moving a task to a new status.
type TransitionTaskDTO struct {
	ToStatusID int64  `json:"to_status_id"`
	Remarks    string `json:"remarks"`
}

func (d TransitionTaskDTO) Validate() error {
	if d.ToStatusID == 0 {
		return internal.NewValidationError("Target status is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
