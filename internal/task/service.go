package task

import (
	"log/slog"

	"github.com/taskcore/task-management/internal"
)

// DefaultStatusReader supplies the status assigned to newly created tasks.
type DefaultStatusReader interface {
	DefaultStatusID() (int64, error)
}

// Service covers task CRUD and comments. Status changes go through the
// workflow status machine, never through here.
type Service struct {
	repo       Repository
	comments   CommentRepository
	statusRead DefaultStatusReader
	logger     *slog.Logger
}

func NewService(repo Repository, comments CommentRepository, statusRead DefaultStatusReader, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		comments:   comments,
		statusRead: statusRead,
		logger:     logger,
	}
}

// CreateTask creates a task in the configured default status.
func (s *Service) CreateTask(dto CreateTaskDTO, creatorID int64) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	statusID, err := s.statusRead.DefaultStatusID()
	if err != nil {
		return nil, err
	}

	t := &Task{
		Title:        dto.Title,
		Description:  dto.Description,
		StatusID:     statusID,
		CreatedBy:    creatorID,
		DepartmentID: dto.DepartmentID,
		Version:      1,
	}
	if err := s.repo.Create(t); err != nil {
		return nil, internal.NewInternalError("failed to create task", err)
	}

	if len(dto.Assignees) > 0 {
		if err := s.repo.ReplaceAssignees(t.ID, dto.Assignees); err != nil {
			return nil, internal.NewInternalError("failed to assign task", err)
		}
		t.Assignees = dto.Assignees
	}

	s.logger.Info("task created", "task_id", t.ID, "created_by", creatorID)
	return t, nil
}

func (s *Service) GetTask(id int64) (*Task, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListTasks() ([]*Task, error) {
	return s.repo.List()
}

// UpdateTask applies a partial update to title, description and assignees.
func (s *Service) UpdateTask(id int64, dto UpdateTaskDTO) (*Task, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		t.Title = *dto.Title
	}
	if dto.Description != nil {
		t.Description = *dto.Description
	}
	if dto.DepartmentID != nil {
		t.DepartmentID = dto.DepartmentID
	}
	if err := s.repo.Update(t); err != nil {
		return nil, internal.NewInternalError("failed to update task", err)
	}

	if dto.Assignees != nil {
		if err := s.repo.ReplaceAssignees(t.ID, *dto.Assignees); err != nil {
			return nil, internal.NewInternalError("failed to update assignees", err)
		}
		t.Assignees = *dto.Assignees
	}

	return t, nil
}

func (s *Service) DeleteTask(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return internal.NewInternalError("failed to delete task", err)
	}
	s.logger.Info("task deleted", "task_id", id)
	return nil
}

// AddComment appends a user comment to a task.
func (s *Service) AddComment(taskID int64, dto CreateCommentDTO, authorID int64) (*Comment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(taskID); err != nil {
		return nil, err
	}

	c := &Comment{
		TaskID:   taskID,
		AuthorID: authorID,
		Content:  dto.Content,
	}
	if err := s.comments.Create(c); err != nil {
		return nil, internal.NewInternalError("failed to create comment", err)
	}
	return c, nil
}

func (s *Service) ListComments(taskID int64) ([]*Comment, error) {
	if _, err := s.repo.GetByID(taskID); err != nil {
		return nil, err
	}
	return s.comments.ListByTask(taskID)
}
