package task

import (
	"time"

	"gorm.io/gorm"

	"github.com/taskcore/task-management/internal"
)

// Task carries the workflow-relevant fields of a task: its current status
// reference, the completion stamp set when a final status is reached, and a
// version counter used for the conditional status write. Tasks soft-delete.
type Task struct {
	ID           int64          `json:"id" gorm:"primaryKey"`
	Title        string         `json:"title" gorm:"not null"`
	Description  string         `json:"description"`
	StatusID     int64          `json:"status_id" gorm:"column:status_id;not null"`
	CreatedBy    int64          `json:"created_by" gorm:"column:created_by;not null"`
	DepartmentID *int64         `json:"department_id,omitempty" gorm:"column:department_id"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty" gorm:"column:completed_at"`
	Version      int64          `json:"version" gorm:"column:version;default:1"`
	CreatedAt    time.Time      `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"column:updated_at;default:now()"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"column:deleted_at;index"`

	// Assignees is populated by the repository from the task_assignees join
	// table; it is not a gorm column.
	Assignees []int64 `json:"assignees" gorm:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

// Comment is one task comment. System-generated comments record status
// transitions and their remarks.
type Comment struct {
	ID                int64     `json:"id" gorm:"primaryKey"`
	TaskID            int64     `json:"task_id" gorm:"column:task_id;not null"`
	AuthorID          int64     `json:"author_id" gorm:"column:author_id;not null"`
	Content           string    `json:"content" gorm:"not null"`
	IsSystemGenerated bool      `json:"is_system_generated" gorm:"column:is_system_generated;default:false"`
	CreatedAt         time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Comment) TableName() string {
	return "task_comments"
}

// ErrStatusConflict is returned by UpdateStatusIf when the task's status or
// version moved underneath the caller.
var ErrStatusConflict = internal.NewConflictError(
	"Task was updated concurrently, please retry",
	internal.ErrCodeTaskVersionConflict,
)

// Repository defines the data access methods for tasks.
type Repository interface {
	Create(t *Task) error
	GetByID(id int64) (*Task, error)
	Update(t *Task) error
	// UpdateStatusIf performs the conditional status write: it only applies
	// when the stored status and version still match what the caller
	// validated against, and returns ErrStatusConflict otherwise.
	UpdateStatusIf(taskID, expectedStatusID, expectedVersion, newStatusID int64, completedAt *time.Time) error
	GetAssigneeIDs(taskID int64) ([]int64, error)
	ReplaceAssignees(taskID int64, userIDs []int64) error
	List() ([]*Task, error)
	Delete(id int64) error
}

// CommentRepository defines the data access methods for task comments.
type CommentRepository interface {
	Create(c *Comment) error
	ListByTask(taskID int64) ([]*Comment, error)
}
