package workflow_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/core/events"
	"github.com/taskcore/task-management/internal/role"
	"github.com/taskcore/task-management/internal/task"
	"github.com/taskcore/task-management/internal/workflow"
)

var _ = Describe("Status Machine", func() {
	var (
		statusRepo     *mockStatusRepository
		transitionRepo *mockTransitionRepository
		taskRepo       *mockTaskRepository
		commentRepo    *mockCommentRepository
		bus            *events.EventBus
		machine        *workflow.StatusMachine

		todo       *workflow.WorkflowStatus
		inProgress *workflow.WorkflowStatus
		completed  *workflow.WorkflowStatus
		cancelled  *workflow.WorkflowStatus
		archived   *workflow.WorkflowStatus

		managerRole role.Role
		staff       *internal.Principal
		manager     *internal.Principal

		openTask *task.Task
	)

	BeforeEach(func() {
		statusRepo = newMockStatusRepository()
		transitionRepo = newMockTransitionRepository()
		taskRepo = newMockTaskRepository()
		commentRepo = &mockCommentRepository{}
		bus = events.NewEventBus(discardLogger())
		machine = workflow.NewStatusMachine(taskRepo, commentRepo, statusRepo, transitionRepo, bus, discardLogger())

		todo = statusRepo.add(&workflow.WorkflowStatus{Name: "To Do", Slug: "to-do", IsDefault: true, IsActive: true})
		inProgress = statusRepo.add(&workflow.WorkflowStatus{Name: "In Progress", Slug: "in-progress", IsActive: true})
		completed = statusRepo.add(&workflow.WorkflowStatus{Name: "Completed", Slug: "completed", IsFinal: true, IsActive: true})
		cancelled = statusRepo.add(&workflow.WorkflowStatus{Name: "Cancelled", Slug: "cancelled", IsFinal: true, IsActive: true})
		archived = statusRepo.add(&workflow.WorkflowStatus{Name: "Archived", Slug: "archived", IsActive: false})

		managerRole = role.Role{ID: 10, Name: "Manager", Slug: "manager", IsActive: true}

		// Open edge, no gates.
		transitionRepo.add(&workflow.WorkflowTransition{
			FromStatusID: todo.ID, ToStatusID: inProgress.ID, IsActive: true,
		})
		// Manager-only sign-off, remarks mandatory.
		transitionRepo.add(&workflow.WorkflowTransition{
			FromStatusID: inProgress.ID, ToStatusID: completed.ID,
			AllowedRoles: []role.Role{managerRole}, RequiresRemarks: true, IsActive: true,
		})
		// Cancellation needs remarks but is open to any role.
		transitionRepo.add(&workflow.WorkflowTransition{
			FromStatusID: inProgress.ID, ToStatusID: cancelled.ID,
			RequiresRemarks: true, IsActive: true,
		})
		// Deactivated edge: behaves as absent.
		transitionRepo.add(&workflow.WorkflowTransition{
			FromStatusID: completed.ID, ToStatusID: todo.ID, IsActive: false,
		})

		staff = &internal.Principal{ID: 1, Name: "Dana Staff", RoleIDs: []int64{20}}
		manager = &internal.Principal{ID: 2, Name: "Morgan Manager", RoleIDs: []int64{10, 20}}

		openTask = taskRepo.add(&task.Task{Title: "Ship the release", StatusID: todo.ID, CreatedBy: 3})
	})

	It("moves the task along an open edge and bumps the version", func() {
		updated, err := machine.Transition(context.Background(), openTask.ID,
			workflow.TransitionTaskDTO{ToStatusID: inProgress.ID}, staff)
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.StatusID).To(Equal(inProgress.ID))
		Expect(updated.Version).To(Equal(int64(2)))
		Expect(updated.CompletedAt).To(BeNil())
	})

	It("publishes a status change event with actor and status names", func() {
		received := make(chan events.TaskStatusChangedData, 1)
		bus.Subscribe(events.EventTaskStatusChanged, func(ctx context.Context, e events.Event) error {
			received <- e.Payload().(events.TaskStatusChangedData)
			return nil
		})

		_, err := machine.Transition(context.Background(), openTask.ID,
			workflow.TransitionTaskDTO{ToStatusID: inProgress.ID}, staff)
		Expect(err).NotTo(HaveOccurred())

		var data events.TaskStatusChangedData
		Eventually(received).Should(Receive(&data))
		Expect(data.TaskID).To(Equal(openTask.ID))
		Expect(data.ActorID).To(Equal(staff.ID))
		Expect(data.FromStatus).To(Equal("To Do"))
		Expect(data.ToStatus).To(Equal("In Progress"))
	})

	It("rejects an unknown target status", func() {
		_, err := machine.Transition(context.Background(), openTask.ID,
			workflow.TransitionTaskDTO{ToStatusID: 999}, staff)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidTargetStatus))
	})

	It("rejects a deactivated target status", func() {
		_, err := machine.Transition(context.Background(), openTask.ID,
			workflow.TransitionTaskDTO{ToStatusID: archived.ID}, staff)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidTargetStatus))
	})

	It("rejects a move with no edge, naming both statuses", func() {
		_, err := machine.Transition(context.Background(), openTask.ID,
			workflow.TransitionTaskDTO{ToStatusID: completed.ID}, manager)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeTransitionNotAllowed))
		Expect(appErr.Message).To(Equal(`Transition from "To Do" to "Completed" is not allowed`))
	})

	It("treats a deactivated edge as absent", func() {
		doneTask := taskRepo.add(&task.Task{Title: "Old work", StatusID: completed.ID, CreatedBy: 3})

		_, err := machine.Transition(context.Background(), doneTask.ID,
			workflow.TransitionTaskDTO{ToStatusID: todo.ID}, manager)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeTransitionNotAllowed))
	})

	Context("with a task in progress", func() {
		var working *task.Task

		BeforeEach(func() {
			working = taskRepo.add(&task.Task{Title: "Review docs", StatusID: inProgress.ID, CreatedBy: 3})
		})

		It("rejects a role outside the edge's allowed list", func() {
			_, err := machine.Transition(context.Background(), working.ID,
				workflow.TransitionTaskDTO{ToStatusID: completed.ID, Remarks: "done"}, staff)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeRoleNotPermitted))
		})

		It("rejects missing remarks before touching the task", func() {
			_, err := machine.Transition(context.Background(), working.ID,
				workflow.TransitionTaskDTO{ToStatusID: cancelled.ID, Remarks: "   "}, staff)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeRemarksRequired))

			stored, _ := taskRepo.GetByID(working.ID)
			Expect(stored.StatusID).To(Equal(inProgress.ID))
			Expect(stored.Version).To(Equal(int64(1)))
		})

		It("checks the role gate before the remarks gate", func() {
			_, err := machine.Transition(context.Background(), working.ID,
				workflow.TransitionTaskDTO{ToStatusID: completed.ID}, staff)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeRoleNotPermitted))
		})

		It("stamps completion time when a final status is reached", func() {
			updated, err := machine.Transition(context.Background(), working.ID,
				workflow.TransitionTaskDTO{ToStatusID: completed.ID, Remarks: "looks good"}, manager)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.CompletedAt).NotTo(BeNil())
		})

		It("records the remarks as a system comment", func() {
			_, err := machine.Transition(context.Background(), working.ID,
				workflow.TransitionTaskDTO{ToStatusID: cancelled.ID, Remarks: "requirements changed"}, staff)
			Expect(err).NotTo(HaveOccurred())

			comments, _ := commentRepo.ListByTask(working.ID)
			Expect(comments).To(HaveLen(1))
			Expect(comments[0].IsSystemGenerated).To(BeTrue())
			Expect(comments[0].AuthorID).To(Equal(staff.ID))
			Expect(comments[0].Content).To(ContainSubstring("requirements changed"))
			Expect(comments[0].Content).To(ContainSubstring(`"In Progress"`))
			Expect(comments[0].Content).To(ContainSubstring(`"Cancelled"`))
		})

		It("skips the comment when no remarks were given", func() {
			_, err := machine.Transition(context.Background(), working.ID,
				workflow.TransitionTaskDTO{ToStatusID: completed.ID, Remarks: "ok"}, manager)
			Expect(err).NotTo(HaveOccurred())
			// Remarks were given here; the no-remarks case is the open edge.
			first, err := machine.Transition(context.Background(), openTask.ID,
				workflow.TransitionTaskDTO{ToStatusID: inProgress.ID}, staff)
			Expect(err).NotTo(HaveOccurred())
			comments, _ := commentRepo.ListByTask(first.ID)
			Expect(comments).To(BeEmpty())
		})
	})

	Describe("concurrent writes", func() {
		It("retries once after a version conflict and succeeds", func() {
			taskRepo.conflictsBeforeSuccess = 1

			updated, err := machine.Transition(context.Background(), openTask.ID,
				workflow.TransitionTaskDTO{ToStatusID: inProgress.ID}, staff)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.StatusID).To(Equal(inProgress.ID))
			// One concurrent bump plus our own write.
			Expect(updated.Version).To(Equal(int64(3)))
		})

		It("surfaces the conflict when the retry also loses", func() {
			taskRepo.conflictsBeforeSuccess = 2

			_, err := machine.Transition(context.Background(), openTask.ID,
				workflow.TransitionTaskDTO{ToStatusID: inProgress.ID}, staff)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeTaskVersionConflict))
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})
	})

	It("rejects a transition with no principal", func() {
		_, err := machine.Transition(context.Background(), openTask.ID,
			workflow.TransitionTaskDTO{ToStatusID: inProgress.ID}, nil)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeUnauthorized))
	})
})
