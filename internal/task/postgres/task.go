package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/task"
)

// TaskRepository implements task.Repository using GORM.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) task.Repository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(t *task.Task) error {
	return r.db.Create(t).Error
}

func (r *TaskRepository) GetByID(id int64) (*task.Task, error) {
	var t task.Task
	err := r.db.Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTaskNotFound
		}
		return nil, err
	}

	assignees, err := r.GetAssigneeIDs(id)
	if err != nil {
		return nil, err
	}
	t.Assignees = assignees
	return &t, nil
}

func (r *TaskRepository) Update(t *task.Task) error {
	t.UpdatedAt = time.Now()
	return r.db.Save(t).Error
}

// UpdateStatusIf is the optimistic-concurrency write used by the status
// machine: the row is only touched while status and version still match the
// values read at validation time.
func (r *TaskRepository) UpdateStatusIf(taskID, expectedStatusID, expectedVersion, newStatusID int64, completedAt *time.Time) error {
	updates := map[string]interface{}{
		"status_id":  newStatusID,
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now(),
	}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}

	result := r.db.Model(&task.Task{}).
		Where("id = ? AND status_id = ? AND version = ?", taskID, expectedStatusID, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return task.ErrStatusConflict
	}
	return nil
}

func (r *TaskRepository) GetAssigneeIDs(taskID int64) ([]int64, error) {
	rows, err := r.db.Raw("SELECT user_id FROM task_assignees WHERE task_id = ?", taskID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *TaskRepository) ReplaceAssignees(taskID int64, userIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_assignees WHERE task_id = ?", taskID).Error; err != nil {
			return err
		}
		for _, userID := range userIDs {
			if err := tx.Exec("INSERT INTO task_assignees (task_id, user_id) VALUES (?, ?)", taskID, userID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TaskRepository) List() ([]*task.Task, error) {
	var tasks []*task.Task
	err := r.db.Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Delete(id int64) error {
	return r.db.Delete(&task.Task{}, id).Error
}

// CommentRepository implements task.CommentRepository using GORM.
type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) task.CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(c *task.Comment) error {
	return r.db.Create(c).Error
}

func (r *CommentRepository) ListByTask(taskID int64) ([]*task.Comment, error) {
	var comments []*task.Comment
	err := r.db.Where("task_id = ?", taskID).Order("created_at ASC").Find(&comments).Error
	return comments, err
}
