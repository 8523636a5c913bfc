package workflow

import (
	"time"

	"github.com/taskcore/task-management/internal/role"
)

// WorkflowTransition is one directed edge of the status graph. The
// (from, to) pair is unique across the table regardless of active flags, so
// an edge is reconfigured in place rather than duplicated. An empty
// AllowedRoles list means any authenticated user may take the edge.
type WorkflowTransition struct {
	ID               int64           `json:"id" gorm:"primaryKey"`
	FromStatusID     int64           `json:"from_status_id" gorm:"column:from_status_id;not null;uniqueIndex:idx_transition_pair"`
	ToStatusID       int64           `json:"to_status_id" gorm:"column:to_status_id;not null;uniqueIndex:idx_transition_pair"`
	FromStatus       *WorkflowStatus `json:"from_status,omitempty" gorm:"foreignKey:FromStatusID"`
	ToStatus         *WorkflowStatus `json:"to_status,omitempty" gorm:"foreignKey:ToStatusID"`
	AllowedRoles     []role.Role     `json:"allowed_roles" gorm:"many2many:transition_allowed_roles"`
	RequiresRemarks  bool            `json:"requires_remarks" gorm:"column:requires_remarks;default:false"`
	RequiresApproval bool            `json:"requires_approval" gorm:"column:requires_approval;default:false"`
	ApproverRoles    []role.Role     `json:"approver_roles" gorm:"many2many:transition_approver_roles"`
	IsActive         bool            `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt        time.Time       `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time       `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (WorkflowTransition) TableName() string {
	return "workflow_transitions"
}

// PermitsRole reports whether a user holding the given roles may take this
// edge. An edge with no role restriction permits everyone.
func (t *WorkflowTransition) PermitsRole(roleIDs []int64) bool {
	if len(t.AllowedRoles) == 0 {
		return true
	}
	allowed := make(map[int64]struct{}, len(t.AllowedRoles))
	for _, r := range t.AllowedRoles {
		allowed[r.ID] = struct{}{}
	}
	for _, id := range roleIDs {
		if _, ok := allowed[id]; ok {
			return true
		}
	}
	return false
}

// AllowedRoleIDs returns the ids of the edge's allowed roles.
func (t *WorkflowTransition) AllowedRoleIDs() []int64 {
	ids := make([]int64, 0, len(t.AllowedRoles))
	for _, r := range t.AllowedRoles {
		ids = append(ids, r.ID)
	}
	return ids
}

// ApproverRoleIDs returns the ids of the edge's approver roles.
func (t *WorkflowTransition) ApproverRoleIDs() []int64 {
	ids := make([]int64, 0, len(t.ApproverRoles))
	for _, r := range t.ApproverRoles {
		ids = append(ids, r.ID)
	}
	return ids
}

// TransitionRepository defines the data access methods for workflow
// transitions.
type TransitionRepository interface {
	Create(t *WorkflowTransition) error
	GetByID(id int64) (*WorkflowTransition, error)
	// EdgeExists reports whether any transition, active or not, already
	// occupies the (from, to) pair.
	EdgeExists(fromStatusID, toStatusID int64) (bool, error)
	// FindEdge returns the active transition for the pair, or nil when the
	// edge is absent or inactive.
	FindEdge(fromStatusID, toStatusID int64) (*WorkflowTransition, error)
	ListActive() ([]*WorkflowTransition, error)
	Update(t *WorkflowTransition) error
	ReplaceAllowedRoles(t *WorkflowTransition, roles []role.Role) error
	ReplaceApproverRoles(t *WorkflowTransition, roles []role.Role) error
	Deactivate(id int64) error
}
