package auth

import (
	"log/slog"
	"net/http"

	"github.com/taskcore/task-management/internal"
)

// PermissionResolver abstracts the resolver so the gate can be exercised with
// an in-memory double.
type PermissionResolver interface {
	Resolve(roleIDs []int64) (PermissionSet, error)
}

// Gate wraps protected operations: it resolves the acting principal's
// permission set and rejects with Forbidden when the required permission is
// missing, or Unauthenticated when there is no principal at all.
type Gate struct {
	resolver PermissionResolver
	logger   *slog.Logger
}

func NewGate(resolver PermissionResolver, logger *slog.Logger) *Gate {
	return &Gate{
		resolver: resolver,
		logger:   logger,
	}
}

// Authorize checks a single required permission.
func (g *Gate) Authorize(principal *internal.Principal, required string) error {
	if principal == nil {
		return internal.ErrNoPrincipal
	}

	set, err := g.resolver.Resolve(principal.RoleIDs)
	if err != nil {
		return err
	}

	if !set.Has(required) {
		g.logger.Warn("access denied: insufficient permissions",
			"user_id", principal.ID,
			"required_permission", required)
		return internal.NewForbiddenPermissionError(required)
	}
	return nil
}

// AuthorizeAny passes when the principal holds at least one of the listed
// permissions. Used for operations gated by alternative permissions. An empty
// requirement list denies: no permission can satisfy it, so a misconfigured
// route fails closed instead of open.
func (g *Gate) AuthorizeAny(principal *internal.Principal, required []string) error {
	if principal == nil {
		return internal.ErrNoPrincipal
	}
	if len(required) == 0 {
		g.logger.Warn("access denied: empty permission requirement",
			"user_id", principal.ID)
		return internal.NewForbiddenError("No permission satisfies this operation", internal.ErrCodePermissionDenied)
	}

	set, err := g.resolver.Resolve(principal.RoleIDs)
	if err != nil {
		return err
	}

	if !set.HasAny(required) {
		g.logger.Warn("access denied: none of the permissions held",
			"user_id", principal.ID,
			"required_permissions", required)
		return internal.NewForbiddenPermissionError(required[0])
	}
	return nil
}

// Resolve exposes the underlying resolver for callers that need the whole
// set, e.g. the /users/me payload.
func (g *Gate) Resolve(roleIDs []int64) (PermissionSet, error) {
	return g.resolver.Resolve(roleIDs)
}

// RequirePermission is the route middleware form of Authorize.
func (g *Gate) RequirePermission(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok || principal == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if err := g.Authorize(principal, required); err != nil {
				if appErr, isApp := internal.IsAppError(err); isApp && appErr.Type == internal.ErrorTypeForbidden {
					http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
					return
				}
				g.logger.ErrorContext(r.Context(), "authorization check failed",
					"error", err, "user_id", principal.ID, "permission", required)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyPermission is the route middleware form of AuthorizeAny.
func (g *Gate) RequireAnyPermission(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok || principal == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if err := g.AuthorizeAny(principal, required); err != nil {
				if appErr, isApp := internal.IsAppError(err); isApp && appErr.Type == internal.ErrorTypeForbidden {
					http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
					return
				}
				g.logger.ErrorContext(r.Context(), "authorization check failed",
					"error", err, "user_id", principal.ID, "permissions", required)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
