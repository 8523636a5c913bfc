package department

import (
	"log/slog"

	"github.com/taskcore/task-management/internal"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateDepartment creates a department; name and code must both be unused.
func (s *Service) CreateDepartment(dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByNameOrCode(dto.Name, dto.Code)
	if err != nil {
		return nil, internal.NewInternalError("failed to check department conflicts", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("Department name or code already exists", internal.ErrCodeDepartmentExists)
	}

	if dto.ParentID != nil {
		if _, err := s.repo.GetByID(*dto.ParentID); err != nil {
			return nil, internal.NewValidationError("Parent department does not exist", internal.ErrCodeInvalidReference)
		}
	}

	d := &Department{
		Name:        dto.Name,
		Code:        dto.Code,
		Description: dto.Description,
		HeadID:      dto.HeadID,
		ParentID:    dto.ParentID,
		IsActive:    true,
	}
	if err := s.repo.Create(d); err != nil {
		return nil, internal.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "department_id", d.ID, "code", d.Code)
	return d, nil
}

func (s *Service) GetDepartment(id int64) (*Department, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListDepartments() ([]*Department, error) {
	return s.repo.GetAll()
}

func (s *Service) UpdateDepartment(id int64, dto UpdateDepartmentDTO) (*Department, error) {
	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		name := *dto.Name
		if existing, err := s.repo.FindByNameOrCode(name, ""); err != nil {
			return nil, internal.NewInternalError("failed to check department conflicts", err)
		} else if existing != nil && existing.ID != d.ID {
			return nil, internal.NewConflictError("Department name or code already exists", internal.ErrCodeDepartmentExists)
		}
		d.Name = name
	}
	if dto.Description != nil {
		d.Description = *dto.Description
	}
	if dto.HeadID != nil {
		d.HeadID = dto.HeadID
	}
	if dto.ParentID != nil {
		if *dto.ParentID == d.ID {
			return nil, internal.NewValidationError("A department cannot be its own parent", internal.ErrCodeInvalidReference)
		}
		if _, err := s.repo.GetByID(*dto.ParentID); err != nil {
			return nil, internal.NewValidationError("Parent department does not exist", internal.ErrCodeInvalidReference)
		}
		d.ParentID = dto.ParentID
	}

	if err := s.repo.Update(d); err != nil {
		return nil, internal.NewInternalError("failed to update department", err)
	}
	return d, nil
}

// DeleteDepartment deactivates; historical user and task references stay
// resolvable.
func (s *Service) DeleteDepartment(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(id); err != nil {
		return internal.NewInternalError("failed to deactivate department", err)
	}
	s.logger.Info("department deactivated", "department_id", id)
	return nil
}

// HeadUserID reports the head of the given department, or nil when the
// department has none. Used by notification recipient resolution.
func (s *Service) HeadUserID(departmentID int64) (*int64, error) {
	d, err := s.repo.GetByID(departmentID)
	if err != nil {
		return nil, err
	}
	return d.HeadID, nil
}
