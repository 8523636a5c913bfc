package workflow

import (
	"log/slog"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/role"
)

// RoleReader resolves role ids for transition role lists. Ids that no longer
// resolve to an active role are dropped silently, matching how stored edges
// treat dangling role references.
type RoleReader interface {
	GetActiveByIDs(ids []int64) ([]*role.Role, error)
}

// Service manages the status graph and the transition table.
type Service struct {
	statusRepo     StatusRepository
	transitionRepo TransitionRepository
	roleReader     RoleReader
	logger         *slog.Logger
}

func NewService(statusRepo StatusRepository, transitionRepo TransitionRepository, roleReader RoleReader, logger *slog.Logger) *Service {
	return &Service{
		statusRepo:     statusRepo,
		transitionRepo: transitionRepo,
		roleReader:     roleReader,
		logger:         logger,
	}
}

// CreateStatus adds a status node. When the new status is marked default, the
// flag is cleared from every other status so at most one default exists.
func (s *Service) CreateStatus(dto CreateStatusDTO) (*WorkflowStatus, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	statusSlug := StatusSlugFor(dto.Name)
	if existing, err := s.statusRepo.GetBySlug(statusSlug); err != nil {
		return nil, internal.NewInternalError("failed to check status slug", err)
	} else if existing != nil {
		return nil, internal.NewConflictError("A status with this name already exists", internal.ErrCodeStatusExists)
	}

	color := dto.Color
	if color == "" {
		color = DefaultStatusColor
	}

	status := &WorkflowStatus{
		Name:        dto.Name,
		Slug:        statusSlug,
		Description: dto.Description,
		Color:       color,
		Order:       dto.Order,
		IsDefault:   dto.IsDefault,
		IsFinal:     dto.IsFinal,
		IsActive:    true,
	}

	if err := s.statusRepo.Create(status); err != nil {
		return nil, internal.NewInternalError("failed to create status", err)
	}

	if status.IsDefault {
		if err := s.statusRepo.ClearDefaults(status.ID); err != nil {
			return nil, internal.NewInternalError("failed to clear previous default status", err)
		}
	}

	s.logger.Info("workflow status created", "status_id", status.ID, "slug", status.Slug)
	return status, nil
}

// UpdateStatus applies a partial update. Renames recompute the slug; marking
// the status default clears the flag elsewhere.
func (s *Service) UpdateStatus(id int64, dto UpdateStatusDTO) (*WorkflowStatus, error) {
	status, err := s.statusRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != status.Name {
		newSlug := StatusSlugFor(*dto.Name)
		if existing, err := s.statusRepo.GetBySlug(newSlug); err != nil {
			return nil, internal.NewInternalError("failed to check status slug", err)
		} else if existing != nil && existing.ID != status.ID {
			return nil, internal.NewConflictError("A status with this name already exists", internal.ErrCodeStatusExists)
		}
		status.Name = *dto.Name
		status.Slug = newSlug
	}
	if dto.Description != nil {
		status.Description = *dto.Description
	}
	if dto.Color != nil {
		status.Color = *dto.Color
	}
	if dto.Order != nil {
		status.Order = *dto.Order
	}
	if dto.IsFinal != nil {
		status.IsFinal = *dto.IsFinal
	}
	if dto.IsActive != nil {
		status.IsActive = *dto.IsActive
	}
	becameDefault := dto.IsDefault != nil && *dto.IsDefault && !status.IsDefault
	if dto.IsDefault != nil {
		status.IsDefault = *dto.IsDefault
	}

	if err := s.statusRepo.Update(status); err != nil {
		return nil, internal.NewInternalError("failed to update status", err)
	}

	if becameDefault {
		if err := s.statusRepo.ClearDefaults(status.ID); err != nil {
			return nil, internal.NewInternalError("failed to clear previous default status", err)
		}
	}

	return status, nil
}

// DeactivateStatus soft-removes a status from the active graph. Tasks already
// holding the status keep their reference.
func (s *Service) DeactivateStatus(id int64) error {
	if _, err := s.statusRepo.GetByID(id); err != nil {
		return err
	}
	if err := s.statusRepo.Deactivate(id); err != nil {
		return internal.NewInternalError("failed to deactivate status", err)
	}
	s.logger.Info("workflow status deactivated", "status_id", id)
	return nil
}

// ListStatuses returns the active statuses in display order.
func (s *Service) ListStatuses() ([]*WorkflowStatus, error) {
	return s.statusRepo.ListActive()
}

func (s *Service) GetStatus(id int64) (*WorkflowStatus, error) {
	return s.statusRepo.GetByID(id)
}

// DefaultStatus returns the status assigned to newly created tasks.
func (s *Service) DefaultStatus() (*WorkflowStatus, error) {
	status, err := s.statusRepo.GetDefault()
	if err != nil {
		return nil, internal.NewInternalError("failed to load default status", err)
	}
	if status == nil {
		return nil, internal.NewNotFoundError("No default status is configured", internal.ErrCodeStatusNotFound)
	}
	return status, nil
}

// DefaultStatusID satisfies the task service's default status lookup.
func (s *Service) DefaultStatusID() (int64, error) {
	status, err := s.DefaultStatus()
	if err != nil {
		return 0, err
	}
	return status.ID, nil
}

// CreateTransition adds a directed edge to the graph. The (from, to) pair is
// unique: a second edge for the same pair is rejected even when the first is
// inactive, so operators reactivate or update the existing edge instead.
func (s *Service) CreateTransition(dto CreateTransitionDTO) (*WorkflowTransition, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.statusRepo.GetByID(dto.FromStatusID); err != nil {
		return nil, err
	}
	if _, err := s.statusRepo.GetByID(dto.ToStatusID); err != nil {
		return nil, err
	}

	exists, err := s.transitionRepo.EdgeExists(dto.FromStatusID, dto.ToStatusID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check existing transition", err)
	}
	if exists {
		return nil, internal.NewConflictError("A transition between these statuses already exists", internal.ErrCodeTransitionExists)
	}

	allowed, err := s.resolveRoles(dto.AllowedRoleIDs)
	if err != nil {
		return nil, err
	}
	approvers, err := s.resolveRoles(dto.ApproverRoleIDs)
	if err != nil {
		return nil, err
	}

	transition := &WorkflowTransition{
		FromStatusID:     dto.FromStatusID,
		ToStatusID:       dto.ToStatusID,
		AllowedRoles:     allowed,
		RequiresRemarks:  dto.RequiresRemarks,
		RequiresApproval: dto.RequiresApproval,
		ApproverRoles:    approvers,
		IsActive:         true,
	}

	if err := s.transitionRepo.Create(transition); err != nil {
		return nil, internal.NewInternalError("failed to create transition", err)
	}

	s.logger.Info("workflow transition created",
		"transition_id", transition.ID,
		"from_status_id", transition.FromStatusID,
		"to_status_id", transition.ToStatusID)
	return transition, nil
}

// UpdateTransition reconfigures an edge's gates in place. The endpoint pair
// itself is immutable; a different pair is a different edge.
func (s *Service) UpdateTransition(id int64, dto UpdateTransitionDTO) (*WorkflowTransition, error) {
	transition, err := s.transitionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.RequiresRemarks != nil {
		transition.RequiresRemarks = *dto.RequiresRemarks
	}
	if dto.RequiresApproval != nil {
		transition.RequiresApproval = *dto.RequiresApproval
	}
	if dto.IsActive != nil {
		transition.IsActive = *dto.IsActive
	}

	if err := s.transitionRepo.Update(transition); err != nil {
		return nil, internal.NewInternalError("failed to update transition", err)
	}

	if dto.AllowedRoleIDs != nil {
		roles, err := s.resolveRoles(*dto.AllowedRoleIDs)
		if err != nil {
			return nil, err
		}
		if err := s.transitionRepo.ReplaceAllowedRoles(transition, roles); err != nil {
			return nil, internal.NewInternalError("failed to update allowed roles", err)
		}
		transition.AllowedRoles = roles
	}
	if dto.ApproverRoleIDs != nil {
		roles, err := s.resolveRoles(*dto.ApproverRoleIDs)
		if err != nil {
			return nil, err
		}
		if err := s.transitionRepo.ReplaceApproverRoles(transition, roles); err != nil {
			return nil, internal.NewInternalError("failed to update approver roles", err)
		}
		transition.ApproverRoles = roles
	}

	return transition, nil
}

// DeactivateTransition removes an edge from the active graph without freeing
// its (from, to) pair.
func (s *Service) DeactivateTransition(id int64) error {
	if _, err := s.transitionRepo.GetByID(id); err != nil {
		return err
	}
	if err := s.transitionRepo.Deactivate(id); err != nil {
		return internal.NewInternalError("failed to deactivate transition", err)
	}
	s.logger.Info("workflow transition deactivated", "transition_id", id)
	return nil
}

// ListTransitions returns the active edges with their endpoints and role
// lists loaded.
func (s *Service) ListTransitions() ([]*WorkflowTransition, error) {
	return s.transitionRepo.ListActive()
}

func (s *Service) resolveRoles(ids []int64) ([]role.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.roleReader.GetActiveByIDs(ids)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve roles", err)
	}
	roles := make([]role.Role, 0, len(found))
	for _, r := range found {
		roles = append(roles, *r)
	}
	return roles, nil
}
