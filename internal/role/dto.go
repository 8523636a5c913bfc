package role

import (
	"github.com/taskcore/task-management/internal"
)

// CreateRoleDTO is the request payload for creating a role.
type CreateRoleDTO struct {
	Name          string  `json:"name" validate:"required,min=2,max=100"`
	Description   string  `json:"description,omitempty"`
	PermissionIDs []int64 `json:"permission_ids"`
}

func (dto CreateRoleDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationError("role name is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Name) > 100 {
		return internal.NewValidationError("role name must be at most 100 characters", internal.ErrCodeValidationFailed)
	}
	if SlugFor(dto.Name) == "" {
		return internal.NewValidationError("role name must contain at least one alphanumeric character", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateRoleDTO is a partial patch; nil fields are left untouched.
type UpdateRoleDTO struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	PermissionIDs *[]int64 `json:"permission_ids,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

// CloneRoleDTO carries the optional overrides for a role clone.
type CloneRoleDTO struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}
