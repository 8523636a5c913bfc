package task_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/task"
)

func TestTask(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Task Suite")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockTaskRepository struct {
	tasks  map[int64]*task.Task
	nextID int64
}

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{tasks: make(map[int64]*task.Task), nextID: 1}
}

func (m *mockTaskRepository) Create(t *task.Task) error {
	t.ID = m.nextID
	m.nextID++
	if t.Version == 0 {
		t.Version = 1
	}
	m.tasks[t.ID] = t
	return nil
}

func (m *mockTaskRepository) GetByID(id int64) (*task.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, internal.ErrTaskNotFound
	}
	return t, nil
}

func (m *mockTaskRepository) Update(t *task.Task) error {
	m.tasks[t.ID] = t
	return nil
}

func (m *mockTaskRepository) UpdateStatusIf(taskID, expectedStatusID, expectedVersion, newStatusID int64, completedAt *time.Time) error {
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
	comments []*task.Comment
}

func (m *mockCommentRepository) Create(c *task.Comment) error {
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

type stubStatusReader struct {
	id  int64
	err error
}

func (s *stubStatusReader) DefaultStatusID() (int64, error) {
	return s.id, s.err
}

var _ = Describe("Task Service", func() {
	var (
		repo     *mockTaskRepository
		comments *mockCommentRepository
		service  *task.Service
	)

	BeforeEach(func() {
		repo = newMockTaskRepository()
		comments = &mockCommentRepository{}
		service = task.NewService(repo, comments, &stubStatusReader{id: 5}, discardLogger())
	})

	Describe("CreateTask", func() {
		It("places new tasks in the default status", func() {
			created, err := service.CreateTask(task.CreateTaskDTO{
				Title:     "Write the runbook",
				Assignees: []int64{7, 8},
			}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.StatusID).To(Equal(int64(5)))
			Expect(created.CreatedBy).To(Equal(int64(3)))
			Expect(created.Version).To(Equal(int64(1)))
			Expect(created.Assignees).To(Equal([]int64{7, 8}))
		})

		It("rejects a blank title", func() {
			_, err := service.CreateTask(task.CreateTaskDTO{Title: "  "}, 3)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("fails when no default status is configured", func() {
			service = task.NewService(repo, comments, &stubStatusReader{
				err: internal.NewNotFoundError("No default status is configured", internal.ErrCodeStatusNotFound),
			}, discardLogger())

			_, err := service.CreateTask(task.CreateTaskDTO{Title: "Orphan"}, 3)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeStatusNotFound))
		})
	})

	Describe("AddComment", func() {
		It("attaches a user comment to an existing task", func() {
			created, _ := service.CreateTask(task.CreateTaskDTO{Title: "Write the runbook"}, 3)

			comment, err := service.AddComment(created.ID, task.CreateCommentDTO{Content: "First draft is up"}, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(comment.IsSystemGenerated).To(BeFalse())
			Expect(comment.AuthorID).To(Equal(int64(7)))
		})

		It("rejects comments on unknown tasks", func() {
			_, err := service.AddComment(999, task.CreateCommentDTO{Content: "hello"}, 7)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeTaskNotFound))
		})
	})

	Describe("UpdateTask", func() {
		It("replaces assignees when provided", func() {
			created, _ := service.CreateTask(task.CreateTaskDTO{Title: "Write the runbook", Assignees: []int64{7}}, 3)

			newAssignees := []int64{8, 9}
			updated, err := service.UpdateTask(created.ID, task.UpdateTaskDTO{Assignees: &newAssignees})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Assignees).To(Equal([]int64{8, 9}))
		})
	})
})
