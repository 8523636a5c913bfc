package permission

import (
	"log/slog"
)

// Service exposes the read side of the permission catalog.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ListGrouped returns the catalog grouped by display group, the shape the
// role-editor UI consumes.
func (s *Service) ListGrouped() (map[string][]*Permission, error) {
	perms, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, err
	}

	grouped := make(map[string][]*Permission)
	for _, p := range perms {
		grouped[p.Group] = append(grouped[p.Group], p)
	}
	return grouped, nil
}

// List returns the full catalog.
func (s *Service) List() ([]*Permission, error) {
	perms, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, err
	}
	return perms, nil
}

// ValidateIDs reports whether every id resolves to an existing permission.
func (s *Service) ValidateIDs(ids []int64) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	perms, err := s.repo.GetByIDs(ids)
	if err != nil {
		return false, err
	}
	return len(perms) == len(dedupeIDs(ids)), nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
