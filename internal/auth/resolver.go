package auth

import (
	"log/slog"

	"github.com/taskcore/task-management/internal/permission"
	"github.com/taskcore/task-management/internal/role"
)

// RoleReader is the slice of the role store the resolver needs: active roles
// by id, permissions preloaded. Unknown or inactive ids must be silently
// absent from the result.
type RoleReader interface {
	GetActiveByIDs(ids []int64) ([]*role.Role, error)
}

// PermissionReader supplies the full catalog for the super-admin
// short-circuit.
type PermissionReader interface {
	GetAll() ([]*permission.Permission, error)
}

// Resolver computes a principal's effective permission set from its role
// identifiers.
type Resolver struct {
	roles  RoleReader
	perms  PermissionReader
	logger *slog.Logger
}

func NewResolver(roles RoleReader, perms PermissionReader, logger *slog.Logger) *Resolver {
	return &Resolver{
		roles:  roles,
		perms:  perms,
		logger: logger,
	}
}

// Resolve unions the resource:action strings of every active role. If any
// resolved role carries the super-admin slug the whole catalog is returned,
// so newly deployed permissions reach super-admins without touching the
// role's stored permission list. Dangling or inactive role ids contribute
// nothing; an empty input resolves to an empty set.
func (r *Resolver) Resolve(roleIDs []int64) (PermissionSet, error) {
	set := make(PermissionSet)
	if len(roleIDs) == 0 {
		return set, nil
	}

	roles, err := r.roles.GetActiveByIDs(roleIDs)
	if err != nil {
		r.logger.Error("failed to load roles for resolution", "error", err, "role_ids", roleIDs)
		return nil, err
	}

	for _, rl := range roles {
		if rl.IsSuperAdmin() {
			return r.fullCatalog()
		}
	}

	for _, rl := range roles {
		for _, perm := range rl.Permissions {
			set.Add(perm.PermString())
		}
	}
	return set, nil
}

func (r *Resolver) fullCatalog() (PermissionSet, error) {
	perms, err := r.perms.GetAll()
	if err != nil {
		r.logger.Error("failed to load permission catalog", "error", err)
		return nil, err
	}

	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set.Add(p.PermString())
	}
	return set, nil
}
