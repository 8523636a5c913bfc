package notification

import (
	"log/slog"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/role"
)

// RoleReader resolves recipient role ids to active roles.
type RoleReader interface {
	GetActiveByIDs(ids []int64) ([]*role.Role, error)
}

// RuleService manages the notification rules consulted by the dispatcher.
type RuleService struct {
	repo   RuleRepository
	roles  RoleReader
	logger *slog.Logger
}

func NewRuleService(repo RuleRepository, roles RoleReader, logger *slog.Logger) *RuleService {
	return &RuleService{repo: repo, roles: roles, logger: logger}
}

func (s *RuleService) CreateRule(dto CreateRuleDTO) (*Rule, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	recipientRoles, err := s.resolveRoles(dto.RecipientRoleIDs)
	if err != nil {
		return nil, err
	}
	if dto.Strategy == StrategySpecificRoles && len(recipientRoles) == 0 {
		return nil, internal.NewValidationError("Some role IDs are invalid", internal.ErrCodeInvalidReference)
	}

	r := &Rule{
		Event:          dto.Event,
		Strategy:       dto.Strategy,
		RecipientRoles: recipientRoles,
		IsActive:       true,
	}
	if dto.IsActive != nil {
		r.IsActive = *dto.IsActive
	}
	if err := s.repo.Create(r); err != nil {
		return nil, internal.NewInternalError("failed to create notification rule", err)
	}

	s.logger.Info("notification rule created",
		"rule_id", r.ID, "event", r.Event, "strategy", r.Strategy)
	return r, nil
}

func (s *RuleService) ListRules() ([]*Rule, error) {
	return s.repo.List()
}

func (s *RuleService) UpdateRule(id int64, dto UpdateRuleDTO) (*Rule, error) {
	r, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Strategy != nil {
		if !ValidStrategy(*dto.Strategy) {
			return nil, internal.NewValidationError("Unknown recipient strategy", internal.ErrCodeValidationFailed)
		}
		r.Strategy = *dto.Strategy
	}
	if dto.IsActive != nil {
		r.IsActive = *dto.IsActive
	}
	if err := s.repo.Update(r); err != nil {
		return nil, internal.NewInternalError("failed to update notification rule", err)
	}

	if dto.RecipientRoleIDs != nil {
		recipientRoles, err := s.resolveRoles(*dto.RecipientRoleIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceRecipientRoles(r, recipientRoles); err != nil {
			return nil, internal.NewInternalError("failed to update rule roles", err)
		}
		r.RecipientRoles = recipientRoles
	}

	return r, nil
}

func (s *RuleService) DeleteRule(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return internal.NewInternalError("failed to delete notification rule", err)
	}
	return nil
}

func (s *RuleService) resolveRoles(ids []int64) ([]role.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.roles.GetActiveByIDs(ids)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve roles", err)
	}
	roles := make([]role.Role, 0, len(found))
	for _, r := range found {
		roles = append(roles, *r)
	}
	return roles, nil
}
