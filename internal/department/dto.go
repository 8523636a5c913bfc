package department

import (
	"strings"

	"github.com/taskcore/task-management/internal"
)

type CreateDepartmentDTO struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	HeadID      *int64 `json:"head_id"`
	ParentID    *int64 `json:"parent_id"`
}

// Validate normalizes the dto in place: the code is stored uppercase.
func (d *CreateDepartmentDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))

	if d.Name == "" {
		return internal.NewValidationError("Department name is required", internal.ErrCodeValidationFailed)
	}
	if d.Code == "" {
		return internal.NewValidationError("Department code is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateDepartmentDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	HeadID      *int64  `json:"head_id,omitempty"`
	ParentID    *int64  `json:"parent_id,omitempty"`
}
