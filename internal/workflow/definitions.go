package workflow

// StatusDef describes one seeded status.
type StatusDef struct {
	Name        string
	Description string
	Color       string
	Order       int
	IsDefault   bool
	IsFinal     bool
}

// DefaultStatusDefs are the statuses seeded into a fresh deployment.
var DefaultStatusDefs = []StatusDef{
	{Name: "To Do", Description: "Task has not been started", Color: "#6b7280", Order: 1, IsDefault: true},
	{Name: "In Progress", Description: "Task is being worked on", Color: "#3b82f6", Order: 2},
	{Name: "On Hold", Description: "Task is paused", Color: "#f59e0b", Order: 3},
	{Name: "For Review", Description: "Task is awaiting review", Color: "#8b5cf6", Order: 4},
	{Name: "Completed", Description: "Task is done", Color: "#10b981", Order: 5, IsFinal: true},
	{Name: "Cancelled", Description: "Task will not be done", Color: "#ef4444", Order: 6, IsFinal: true},
}

// TransitionDef describes one seeded edge by status slug. An empty
// AllowedRoleSlugs list leaves the edge open to any authenticated user.
type TransitionDef struct {
	FromSlug         string
	ToSlug           string
	AllowedRoleSlugs []string
	RequiresRemarks  bool
}

// DefaultTransitionDefs are the edges seeded into a fresh deployment. Moves
// into Cancelled always require remarks, and reviews are signed off by
// managers and above.
var DefaultTransitionDefs = []TransitionDef{
	{FromSlug: "to-do", ToSlug: "in-progress"},
	{FromSlug: "in-progress", ToSlug: "to-do"},
	{FromSlug: "in-progress", ToSlug: "on-hold"},
	{FromSlug: "on-hold", ToSlug: "in-progress"},
	{FromSlug: "in-progress", ToSlug: "for-review"},
	{FromSlug: "for-review", ToSlug: "in-progress", RequiresRemarks: true},
	{FromSlug: "for-review", ToSlug: "completed", AllowedRoleSlugs: []string{"manager", "admin"}, RequiresRemarks: true},
	{FromSlug: "to-do", ToSlug: "cancelled", RequiresRemarks: true},
	{FromSlug: "in-progress", ToSlug: "cancelled", RequiresRemarks: true},
	{FromSlug: "on-hold", ToSlug: "cancelled", RequiresRemarks: true},
	{FromSlug: "for-review", ToSlug: "cancelled", RequiresRemarks: true},
	{FromSlug: "cancelled", ToSlug: "to-do"},
}
