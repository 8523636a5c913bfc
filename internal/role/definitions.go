package role

import "github.com/taskcore/task-management/internal/permission"

// SystemRoleDef describes one seeded system role: its identity and the
// permission strings it is granted.
type SystemRoleDef struct {
	Slug        string
	Name        string
	Description string
	Permissions []string
}

// SystemRoleDefs is the fixed set of roles provisioned at deploy time. The
// seeder upserts them by slug so redeployment is idempotent.
var SystemRoleDefs = []SystemRoleDef{
	{
		Slug:        SuperAdminSlug,
		Name:        "Super Admin",
		Description: "Full system access with all permissions",
		Permissions: permission.CatalogPermStrings(),
	},
	{
		Slug:        "admin",
		Name:        "Admin",
		Description: "System administration without workflow configuration",
		Permissions: allExceptResource("workflow"),
	},
	{
		Slug:        "manager",
		Name:        "Manager",
		Description: "Team and task management with reporting access",
		Permissions: []string{
			"tasks:create", "tasks:view", "tasks:view_all", "tasks:update", "tasks:assign",
			"tasks:reassign", "tasks:approve",
			"users:view",
			"roles:view",
			"departments:view",
			"reports:view", "reports:export",
			"activity_logs:view",
			"dashboard:manager", "dashboard:staff",
		},
	},
	{
		Slug:        "staff",
		Name:        "Staff",
		Description: "Task execution and personal task management",
		Permissions: []string{
			"tasks:create", "tasks:view", "tasks:update",
			"users:view",
			"departments:view",
			"dashboard:staff",
		},
	},
	{
		Slug:        "viewer",
		Name:        "Viewer",
		Description: "Read-only access to tasks and reports",
		Permissions: []string{
			"tasks:view",
			"users:view",
			"departments:view",
			"reports:view",
			"dashboard:staff",
		},
	},
}

func allExceptResource(resource string) []string {
	var strs []string
	for _, def := range permission.Catalog {
		if def.Resource == resource {
			continue
		}
		strs = append(strs, def.Resource+":"+def.Action)
	}
	return strs
}
