package user

import (
	"log/slog"
	"strings"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/role"
)

// RoleReader resolves role ids for assignment.
type RoleReader interface {
	GetActiveByIDs(ids []int64) ([]*role.Role, error)
}

// PasswordHasher hashes plaintext passwords for storage.
type PasswordHasher func(password string) (string, error)

type Service struct {
	repo       Repository
	roleReader RoleReader
	hash       PasswordHasher
	logger     *slog.Logger
}

func NewService(repo Repository, roleReader RoleReader, hash PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		roleReader: roleReader,
		hash:       hash,
		logger:     logger,
	}
}

type CreateUserDTO struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	RoleIDs   []int64 `json:"role_ids"`
}

func (d CreateUserDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return internal.NewValidationError("Email is required", internal.ErrCodeValidationFailed)
	}
	if len(d.Password) < 8 {
		return internal.NewValidationError("Password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(d.FirstName) == "" || strings.TrimSpace(d.LastName) == "" {
		return internal.NewValidationError("First and last name are required", internal.ErrCodeValidationFailed)
	}
	return nil
}

func (s *Service) CreateUser(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(dto.Email); err == nil && existing != nil {
		return nil, internal.NewConflictError("A user with this email already exists", internal.ErrCodeValidationFailed)
	}

	hashed, err := s.hash(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	roles, err := s.resolveRoles(dto.RoleIDs)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        dto.Email,
		PasswordHash: hashed,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Roles:        roles,
		IsActive:     true,
	}
	if err := s.repo.Create(u); err != nil {
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", u.ID, "email", u.Email)
	return u, nil
}

func (s *Service) GetUser(id int64) (*User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListUsers() ([]*User, error) {
	return s.repo.GetAll()
}

// AssignRoles replaces the user's role set.
func (s *Service) AssignRoles(userID int64, roleIDs []int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	roles, err := s.resolveRoles(roleIDs)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceRoles(u, roles); err != nil {
		return nil, internal.NewInternalError("failed to assign roles", err)
	}
	u.Roles = roles

	s.logger.Info("user roles assigned", "user_id", userID, "role_count", len(roles))
	return u, nil
}

func (s *Service) resolveRoles(ids []int64) ([]role.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.roleReader.GetActiveByIDs(ids)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve roles", err)
	}
	if len(found) != len(ids) {
		return nil, internal.NewValidationError("Some role IDs are invalid", internal.ErrCodeInvalidReference)
	}
	roles := make([]role.Role, 0, len(found))
	for _, r := range found {
		roles = append(roles, *r)
	}
	return roles, nil
}
