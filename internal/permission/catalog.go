package permission

// Def is one entry of the static permission catalog loaded at seed time.
type Def struct {
	Resource    string
	Action      string
	Description string
	Group       string
}

// Catalog is the fixed universe of permissions. Adding an entry here and
// redeploying is the only way new permissions enter the system.
var Catalog = []Def{
	// Task Management
	{Resource: "tasks", Action: "create", Description: "Create new tasks", Group: "Task Management"},
	{Resource: "tasks", Action: "view", Description: "View own/assigned tasks", Group: "Task Management"},
	{Resource: "tasks", Action: "view_all", Description: "View all tasks across departments", Group: "Task Management"},
	{Resource: "tasks", Action: "update", Description: "Update task details", Group: "Task Management"},
	{Resource: "tasks", Action: "delete", Description: "Delete/archive tasks", Group: "Task Management"},
	{Resource: "tasks", Action: "assign", Description: "Assign tasks to staff", Group: "Task Management"},
	{Resource: "tasks", Action: "reassign", Description: "Reassign tasks", Group: "Task Management"},
	{Resource: "tasks", Action: "approve", Description: "Approve task completion", Group: "Task Management"},

	// User Management
	{Resource: "users", Action: "create", Description: "Create new users", Group: "User Management"},
	{Resource: "users", Action: "view", Description: "View user list and profiles", Group: "User Management"},
	{Resource: "users", Action: "update", Description: "Update user details", Group: "User Management"},
	{Resource: "users", Action: "delete", Description: "Deactivate users", Group: "User Management"},
	{Resource: "users", Action: "import", Description: "Bulk import users via CSV", Group: "User Management"},

	// Role Management
	{Resource: "roles", Action: "create", Description: "Create new roles", Group: "Role Management"},
	{Resource: "roles", Action: "view", Description: "View roles and permissions", Group: "Role Management"},
	{Resource: "roles", Action: "update", Description: "Update roles", Group: "Role Management"},
	{Resource: "roles", Action: "delete", Description: "Delete custom roles", Group: "Role Management"},
	{Resource: "roles", Action: "clone", Description: "Clone existing roles", Group: "Role Management"},

	// Department Management
	{Resource: "departments", Action: "create", Description: "Create departments", Group: "Department Management"},
	{Resource: "departments", Action: "view", Description: "View departments", Group: "Department Management"},
	{Resource: "departments", Action: "update", Description: "Update departments", Group: "Department Management"},
	{Resource: "departments", Action: "delete", Description: "Delete departments", Group: "Department Management"},

	// Workflow Configuration
	{Resource: "workflow", Action: "configure", Description: "Configure task statuses and transitions", Group: "Workflow"},

	// Reports
	{Resource: "reports", Action: "view", Description: "View reports and analytics", Group: "Reports"},
	{Resource: "reports", Action: "export", Description: "Export reports to PDF/Excel/CSV", Group: "Reports"},

	// Activity Logs
	{Resource: "activity_logs", Action: "view", Description: "View activity and audit logs", Group: "Audit"},

	// Notifications
	{Resource: "notifications", Action: "manage_rules", Description: "Configure notification rules", Group: "Notifications"},

	// Dashboards
	{Resource: "dashboard", Action: "admin", Description: "Access admin dashboard", Group: "Dashboards"},
	{Resource: "dashboard", Action: "manager", Description: "Access manager dashboard", Group: "Dashboards"},
	{Resource: "dashboard", Action: "staff", Description: "Access staff dashboard", Group: "Dashboards"},
}

// CatalogPermStrings returns every catalog entry in resource:action form.
func CatalogPermStrings() []string {
	strs := make([]string, 0, len(Catalog))
	for _, def := range Catalog {
		strs = append(strs, def.Resource+":"+def.Action)
	}
	return strs
}
