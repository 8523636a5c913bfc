package role

import (
	"fmt"
	"log/slog"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/permission"
)

// Repository defines the data access methods for roles.
type Repository interface {
	Create(role *Role) error
	GetByID(id int64) (*Role, error)
	GetBySlug(slug string) (*Role, error)
	GetActiveByIDs(ids []int64) ([]*Role, error)
	GetAll() ([]*Role, error)
	Update(role *Role) error
	ReplacePermissions(role *Role, perms []permission.Permission) error
	Delete(id int64) error
	UpsertBySlug(role *Role, perms []permission.Permission) error
}

// PermissionReader is the slice of the permission catalog the role service
// needs to validate and attach permission references.
type PermissionReader interface {
	GetByIDs(ids []int64) ([]*permission.Permission, error)
}

// Service handles role administration: create, update, delete, clone.
type Service struct {
	repo   Repository
	perms  PermissionReader
	logger *slog.Logger
}

func NewService(repo Repository, perms PermissionReader, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		perms:  perms,
		logger: logger,
	}
}

// CreateRole creates a non-system role. The slug is derived from the name and
// must be unique; every permission id must resolve.
func (s *Service) CreateRole(dto CreateRoleDTO, createdBy int64) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	roleSlug := SlugFor(dto.Name)
	if existing, err := s.repo.GetBySlug(roleSlug); err == nil && existing != nil {
		s.logger.Warn("role slug already taken", "slug", roleSlug)
		return nil, internal.NewConflictError("A role with this name already exists", internal.ErrCodeRoleSlugExists)
	}

	perms, err := s.resolvePermissions(dto.PermissionIDs)
	if err != nil {
		return nil, err
	}

	newRole := &Role{
		Name:        dto.Name,
		Slug:        roleSlug,
		Description: dto.Description,
		Permissions: perms,
		IsSystem:    false,
		IsActive:    true,
		CreatedBy:   &createdBy,
	}

	if err := s.repo.Create(newRole); err != nil {
		s.logger.Error("failed to create role", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("role created", "role_id", newRole.ID, "slug", newRole.Slug, "permissions", len(perms))
	return newRole, nil
}

// UpdateRole patches a role. System roles keep their name (and slug); their
// description, permission set and active flag stay editable.
func (s *Service) UpdateRole(roleID int64, dto UpdateRoleDTO) (*Role, error) {
	existing, err := s.repo.GetByID(roleID)
	if err != nil {
		return nil, internal.ErrRoleNotFound
	}

	if dto.Name != nil && *dto.Name != existing.Name {
		if existing.IsSystem {
			s.logger.Warn("attempt to rename system role", "role_id", roleID, "slug", existing.Slug)
			return nil, internal.NewForbiddenError("Cannot rename system roles", internal.ErrCodeSystemRole)
		}

		newSlug := SlugFor(*dto.Name)
		if other, err := s.repo.GetBySlug(newSlug); err == nil && other != nil && other.ID != roleID {
			return nil, internal.NewConflictError("A role with this name already exists", internal.ErrCodeRoleSlugExists)
		}
		existing.Name = *dto.Name
		existing.Slug = newSlug
	}

	if dto.Description != nil {
		existing.Description = *dto.Description
	}
	if dto.IsActive != nil {
		existing.IsActive = *dto.IsActive
	}

	if dto.PermissionIDs != nil {
		perms, err := s.resolvePermissions(*dto.PermissionIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplacePermissions(existing, perms); err != nil {
			s.logger.Error("failed to replace role permissions", "error", err, "role_id", roleID)
			return nil, err
		}
		existing.Permissions = perms
	}

	if err := s.repo.Update(existing); err != nil {
		s.logger.Error("failed to update role", "error", err, "role_id", roleID)
		return nil, err
	}

	s.logger.Info("role updated", "role_id", roleID, "slug", existing.Slug)
	return existing, nil
}

// DeleteRole hard-deletes a non-system role. User references to the deleted
// role are left dangling; the permission resolver skips them.
func (s *Service) DeleteRole(roleID int64) error {
	existing, err := s.repo.GetByID(roleID)
	if err != nil {
		return internal.ErrRoleNotFound
	}

	if existing.IsSystem {
		s.logger.Warn("attempt to delete system role", "role_id", roleID, "slug", existing.Slug)
		return internal.ErrSystemRole
	}

	if err := s.repo.Delete(roleID); err != nil {
		s.logger.Error("failed to delete role", "error", err, "role_id", roleID)
		return err
	}

	s.logger.Info("role deleted", "role_id", roleID, "slug", existing.Slug)
	return nil
}

// CloneRole copies the source role's permission set by value into a new
// non-system role. Defaults the name to "<source> (Copy)".
func (s *Service) CloneRole(sourceID int64, dto CloneRoleDTO, createdBy int64) (*Role, error) {
	source, err := s.repo.GetByID(sourceID)
	if err != nil {
		return nil, internal.ErrRoleNotFound
	}

	name := dto.Name
	if name == "" {
		name = fmt.Sprintf("%s (Copy)", source.Name)
	}

	newSlug := SlugFor(name)
	if existing, err := s.repo.GetBySlug(newSlug); err == nil && existing != nil {
		return nil, internal.NewConflictError("A role with this name already exists", internal.ErrCodeRoleSlugExists)
	}

	description := dto.Description
	if description == "" {
		description = source.Description
	}

	perms := make([]permission.Permission, len(source.Permissions))
	copy(perms, source.Permissions)

	cloned := &Role{
		Name:        name,
		Slug:        newSlug,
		Description: description,
		Permissions: perms,
		IsSystem:    false,
		IsActive:    true,
		CreatedBy:   &createdBy,
	}

	if err := s.repo.Create(cloned); err != nil {
		s.logger.Error("failed to clone role", "error", err, "source_role_id", sourceID)
		return nil, err
	}

	s.logger.Info("role cloned", "source_role_id", sourceID, "role_id", cloned.ID, "slug", cloned.Slug)
	return cloned, nil
}

// GetRole returns one role with its permissions.
func (s *Service) GetRole(roleID int64) (*Role, error) {
	existing, err := s.repo.GetByID(roleID)
	if err != nil {
		return nil, internal.ErrRoleNotFound
	}
	return existing, nil
}

// ListRoles returns every role, newest first.
func (s *Service) ListRoles() ([]*Role, error) {
	roles, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, err
	}
	return roles, nil
}

func (s *Service) resolvePermissions(ids []int64) ([]permission.Permission, error) {
	if len(ids) == 0 {
		return []permission.Permission{}, nil
	}

	found, err := s.perms.GetByIDs(ids)
	if err != nil {
		s.logger.Error("failed to resolve permission ids", "error", err)
		return nil, err
	}

	unique := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	if len(found) != len(unique) {
		return nil, internal.NewValidationError("Some permission IDs are invalid", internal.ErrCodeInvalidReference)
	}

	perms := make([]permission.Permission, 0, len(found))
	for _, p := range found {
		perms = append(perms, *p)
	}
	return perms, nil
}
