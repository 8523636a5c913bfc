package workflow_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/role"
	"github.com/taskcore/task-management/internal/workflow"
)

var _ = Describe("Workflow Service", func() {
	var (
		statusRepo     *mockStatusRepository
		transitionRepo *mockTransitionRepository
		roleReader     *mockRoleReader
		service        *workflow.Service
	)

	BeforeEach(func() {
		statusRepo = newMockStatusRepository()
		transitionRepo = newMockTransitionRepository()
		roleReader = newMockRoleReader()
		service = workflow.NewService(statusRepo, transitionRepo, roleReader, discardLogger())
	})

	Describe("CreateStatus", func() {
		It("slugs the name and applies the fallback color", func() {
			created, err := service.CreateStatus(workflow.CreateStatusDTO{Name: "Waiting On Customer"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Slug).To(Equal("waiting-on-customer"))
			Expect(created.Color).To(Equal(workflow.DefaultStatusColor))
			Expect(created.IsActive).To(BeTrue())
		})

		It("clears the previous default when a new default is created", func() {
			first, err := service.CreateStatus(workflow.CreateStatusDTO{Name: "To Do", IsDefault: true})
			Expect(err).NotTo(HaveOccurred())

			second, err := service.CreateStatus(workflow.CreateStatusDTO{Name: "Triage", IsDefault: true})
			Expect(err).NotTo(HaveOccurred())

			stored, _ := statusRepo.GetByID(first.ID)
			Expect(stored.IsDefault).To(BeFalse())
			Expect(second.IsDefault).To(BeTrue())

			def, err := service.DefaultStatus()
			Expect(err).NotTo(HaveOccurred())
			Expect(def.ID).To(Equal(second.ID))
		})

		It("rejects a duplicate name", func() {
			_, err := service.CreateStatus(workflow.CreateStatusDTO{Name: "To Do"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateStatus(workflow.CreateStatusDTO{Name: "to do"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeStatusExists))
		})
	})

	Describe("UpdateStatus", func() {
		It("moves the default flag in one step", func() {
			first, _ := service.CreateStatus(workflow.CreateStatusDTO{Name: "To Do", IsDefault: true})
			second, _ := service.CreateStatus(workflow.CreateStatusDTO{Name: "Backlog"})

			makeDefault := true
			_, err := service.UpdateStatus(second.ID, workflow.UpdateStatusDTO{IsDefault: &makeDefault})
			Expect(err).NotTo(HaveOccurred())

			stored, _ := statusRepo.GetByID(first.ID)
			Expect(stored.IsDefault).To(BeFalse())
		})
	})

	Describe("DeactivateStatus", func() {
		It("removes the status from the active list without deleting it", func() {
			created, _ := service.CreateStatus(workflow.CreateStatusDTO{Name: "On Hold"})

			Expect(service.DeactivateStatus(created.ID)).To(Succeed())

			active, _ := service.ListStatuses()
			Expect(active).To(BeEmpty())

			// Historical references still resolve.
			stored, err := statusRepo.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.IsActive).To(BeFalse())
		})
	})

	Describe("DefaultStatus", func() {
		It("fails when no default is configured", func() {
			_, err := service.DefaultStatus()
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeStatusNotFound))
		})
	})

	Describe("CreateTransition", func() {
		var from, to *workflow.WorkflowStatus

		BeforeEach(func() {
			from, _ = service.CreateStatus(workflow.CreateStatusDTO{Name: "To Do"})
			to, _ = service.CreateStatus(workflow.CreateStatusDTO{Name: "In Progress"})
			roleReader.roles[10] = &role.Role{ID: 10, Name: "Manager", Slug: "manager", IsActive: true}
		})

		It("creates a directed edge with role and remarks gates", func() {
			created, err := service.CreateTransition(workflow.CreateTransitionDTO{
				FromStatusID:    from.ID,
				ToStatusID:      to.ID,
				AllowedRoleIDs:  []int64{10},
				RequiresRemarks: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.AllowedRoles).To(HaveLen(1))
			Expect(created.RequiresRemarks).To(BeTrue())
		})

		It("rejects a second edge for the same pair", func() {
			_, err := service.CreateTransition(workflow.CreateTransitionDTO{FromStatusID: from.ID, ToStatusID: to.ID})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateTransition(workflow.CreateTransitionDTO{FromStatusID: from.ID, ToStatusID: to.ID})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeTransitionExists))
		})

		It("keeps the pair reserved even after the edge is deactivated", func() {
			created, err := service.CreateTransition(workflow.CreateTransitionDTO{FromStatusID: from.ID, ToStatusID: to.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.DeactivateTransition(created.ID)).To(Succeed())

			_, err = service.CreateTransition(workflow.CreateTransitionDTO{FromStatusID: from.ID, ToStatusID: to.ID})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeTransitionExists))
		})

		It("allows the reverse direction as its own edge", func() {
			_, err := service.CreateTransition(workflow.CreateTransitionDTO{FromStatusID: from.ID, ToStatusID: to.ID})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateTransition(workflow.CreateTransitionDTO{FromStatusID: to.ID, ToStatusID: from.ID})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects an unknown endpoint", func() {
			_, err := service.CreateTransition(workflow.CreateTransitionDTO{FromStatusID: from.ID, ToStatusID: 999})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeStatusNotFound))
		})
	})

	Describe("UpdateTransition", func() {
		It("replaces the allowed role list", func() {
			from, _ := service.CreateStatus(workflow.CreateStatusDTO{Name: "A"})
			to, _ := service.CreateStatus(workflow.CreateStatusDTO{Name: "B"})
			roleReader.roles[10] = &role.Role{ID: 10, Name: "Manager", Slug: "manager", IsActive: true}

			created, err := service.CreateTransition(workflow.CreateTransitionDTO{FromStatusID: from.ID, ToStatusID: to.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.AllowedRoles).To(BeEmpty())

			roleIDs := []int64{10}
			updated, err := service.UpdateTransition(created.ID, workflow.UpdateTransitionDTO{AllowedRoleIDs: &roleIDs})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.AllowedRoles).To(HaveLen(1))
		})
	})
})
