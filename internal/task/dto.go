package task

import (
	"strings"

	"github.com/taskcore/task-management/internal"
)

type CreateTaskDTO struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	DepartmentID *int64  `json:"department_id"`
	Assignees    []int64 `json:"assignees"`
}

func (d CreateTaskDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return internal.NewValidationError("Task title is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateTaskDTO struct {
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	DepartmentID *int64   `json:"department_id,omitempty"`
	Assignees    *[]int64 `json:"assignees,omitempty"`
}

type CreateCommentDTO struct {
	Content string `json:"content"`
}

func (d CreateCommentDTO) Validate() error {
	if strings.TrimSpace(d.Content) == "" {
		return internal.NewValidationError("Comment content is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
