package workflow_test

import (
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/role"
	"github.com/taskcore/task-management/internal/task"
	"github.com/taskcore/task-management/internal/workflow"
)

func TestWorkflow(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Workflow Suite")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockStatusRepository struct {
	statuses map[int64]*workflow.WorkflowStatus
	nextID   int64
}

func newMockStatusRepository() *mockStatusRepository {
	return &mockStatusRepository{
		statuses: make(map[int64]*workflow.WorkflowStatus),
		nextID:   1,
	}
}

func (m *mockStatusRepository) add(s *workflow.WorkflowStatus) *workflow.WorkflowStatus {
	if s.ID == 0 {
		s.ID = m.nextID
		m.nextID++
	}
	m.statuses[s.ID] = s
	return s
}

func (m *mockStatusRepository) Create(s *workflow.WorkflowStatus) error {
	m.add(s)
	return nil
}

func (m *mockStatusRepository) GetByID(id int64) (*workflow.WorkflowStatus, error) {
	s, ok := m.statuses[id]
	if !ok {
		return nil, internal.ErrStatusNotFound
	}
	return s, nil
}

func (m *mockStatusRepository) GetBySlug(slug string) (*workflow.WorkflowStatus, error) {
	for _, s := range m.statuses {
		if s.Slug == slug {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockStatusRepository) GetDefault() (*workflow.WorkflowStatus, error) {
	for _, s := range m.statuses {
		if s.IsDefault && s.IsActive {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockStatusRepository) ClearDefaults(exceptID int64) error {
	for _, s := range m.statuses {
		if s.ID != exceptID {
			s.IsDefault = false
		}
	}
	return nil
}

func (m *mockStatusRepository) Update(s *workflow.WorkflowStatus) error {
	m.statuses[s.ID] = s
	return nil
}

func (m *mockStatusRepository) Deactivate(id int64) error {
	if s, ok := m.statuses[id]; ok {
		s.IsActive = false
	}
	return nil
}

func (m *mockStatusRepository) ListActive() ([]*workflow.WorkflowStatus, error) {
	var active []*workflow.WorkflowStatus
	for _, s := range m.statuses {
		if s.IsActive {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Order < active[j].Order })
	return active, nil
}

func (m *mockStatusRepository) UpsertBySlug(s *workflow.WorkflowStatus) error {
	if existing, _ := m.GetBySlug(s.Slug); existing != nil {
		s.ID = existing.ID
	}
	m.add(s)
	return nil
}

type mockTransitionRepository struct {
	transitions []*workflow.WorkflowTransition
	nextID      int64
}

func newMockTransitionRepository() *mockTransitionRepository {
	return &mockTransitionRepository{nextID: 1}
}

func (m *mockTransitionRepository) add(t *workflow.WorkflowTransition) *workflow.WorkflowTransition {
	if t.ID == 0 {
		t.ID = m.nextID
		m.nextID++
	}
	m.transitions = append(m.transitions, t)
	return t
}

func (m *mockTransitionRepository) Create(t *workflow.WorkflowTransition) error {
	m.add(t)
	return nil
}

func (m *mockTransitionRepository) GetByID(id int64) (*workflow.WorkflowTransition, error) {
	for _, t := range m.transitions {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, internal.NewNotFoundError("Transition not found", internal.ErrCodeTransitionNotFound)
}

func (m *mockTransitionRepository) EdgeExists(fromID, toID int64) (bool, error) {
	for _, t := range m.transitions {
		if t.FromStatusID == fromID && t.ToStatusID == toID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTransitionRepository) FindEdge(fromID, toID int64) (*workflow.WorkflowTransition, error) {
	for _, t := range m.transitions {
		if t.FromStatusID == fromID && t.ToStatusID == toID && t.IsActive {
			return t, nil
		}
	}
	return nil, nil
}

func (m *mockTransitionRepository) ListActive() ([]*workflow.WorkflowTransition, error) {
	var active []*workflow.WorkflowTransition
	for _, t := range m.transitions {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active, nil
}

func (m *mockTransitionRepository) Update(t *workflow.WorkflowTransition) error {
	return nil
}

func (m *mockTransitionRepository) ReplaceAllowedRoles(t *workflow.WorkflowTransition, roles []role.Role) error {
	t.AllowedRoles = roles
	return nil
}

func (m *mockTransitionRepository) ReplaceApproverRoles(t *workflow.WorkflowTransition, roles []role.Role) error {
	t.ApproverRoles = roles
	return nil
}

func (m *mockTransitionRepository) Deactivate(id int64) error {
	for _, t := range m.transitions {
		if t.ID == id {
			t.IsActive = false
		}
	}
	return nil
}

// mockTaskRepository simulates the conditional status write. Setting
// conflictsBeforeSuccess makes the next N writes fail as if a concurrent
// writer bumped the version in between.
type mockTaskRepository struct {
	tasks                  map[int64]*task.Task
	conflictsBeforeSuccess int
	nextID                 int64
}

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{tasks: make(map[int64]*task.Task), nextID: 1}
}

func (m *mockTaskRepository) add(t *task.Task) *task.Task {
	if t.ID == 0 {
		t.ID = m.nextID
		m.nextID++
	}
	if t.Version == 0 {
		t.Version = 1
	}
	m.tasks[t.ID] = t
	return t
}

func (m *mockTaskRepository) Create(t *task.Task) error {
	m.add(t)
	return nil
}

func (m *mockTaskRepository) GetByID(id int64) (*task.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, internal.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

func (m *mockTaskRepository) Update(t *task.Task) error {
	m.tasks[t.ID] = t
	return nil
}

func (m *mockTaskRepository) UpdateStatusIf(taskID, expectedStatusID, expectedVersion, newStatusID int64, completedAt *time.Time) error {
	stored, ok := m.tasks[taskID]
	if !ok {
		return internal.ErrTaskNotFound
	}

	if m.conflictsBeforeSuccess > 0 {
		m.conflictsBeforeSuccess--
		stored.Version++
		return task.ErrStatusConflict
	}

	if stored.StatusID != expectedStatusID || stored.Version != expectedVersion {
		return task.ErrStatusConflict
	}

	stored.StatusID = newStatusID
	stored.Version++
	if completedAt != nil {
		stored.CompletedAt = completedAt
	}
	return nil
}

func (m *mockTaskRepository) GetAssigneeIDs(taskID int64) ([]int64, error) {
	t, ok := m.tasks[taskID]
	if !ok {
		return nil, internal.ErrTaskNotFound
	}
	return t.Assignees, nil
}

func (m *mockTaskRepository) ReplaceAssignees(taskID int64, userIDs []int64) error {
	if t, ok := m.tasks[taskID]; ok {
		t.Assignees = userIDs
	}
	return nil
}

func (m *mockTaskRepository) List() ([]*task.Task, error) {
	var all []*task.Task
	for _, t := range m.tasks {
		all = append(all, t)
	}
	return all, nil
}

func (m *mockTaskRepository) Delete(id int64) error {
	delete(m.tasks, id)
	return nil
}

type mockCommentRepository struct {
	comments    []*task.Comment
	createError error
}

func (m *mockCommentRepository) Create(c *task.Comment) error {
	if m.createError != nil {
		return m.createError
	}
	c.ID = int64(len(m.comments) + 1)
	m.comments = append(m.comments, c)
	return nil
}

func (m *mockCommentRepository) ListByTask(taskID int64) ([]*task.Comment, error) {
	var found []*task.Comment
	for _, c := range m.comments {
		if c.TaskID == taskID {
			found = append(found, c)
		}
	}
	return found, nil
}

type mockRoleReader struct {
	roles map[int64]*role.Role
}

func newMockRoleReader() *mockRoleReader {
	return &mockRoleReader{roles: make(map[int64]*role.Role)}
}

func (m *mockRoleReader) GetActiveByIDs(ids []int64) ([]*role.Role, error) {
	var found []*role.Role
	for _, id := range ids {
		if r, ok := m.roles[id]; ok && r.IsActive {
			found = append(found, r)
		}
	}
	return found, nil
}
