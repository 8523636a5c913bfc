package department_test

import (
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/department"
)

func TestDepartment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Department Suite")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockDepartmentRepository struct {
	departments map[int64]*department.Department
	nextID      int64
}

func newMockDepartmentRepository() *mockDepartmentRepository {
	return &mockDepartmentRepository{
		departments: make(map[int64]*department.Department),
		nextID:      1,
	}
}

func (m *mockDepartmentRepository) add(d *department.Department) *department.Department {
	if d.ID == 0 {
		d.ID = m.nextID
		m.nextID++
	}
	m.departments[d.ID] = d
	return d
}

func (m *mockDepartmentRepository) Create(d *department.Department) error {
	m.add(d)
	return nil
}

func (m *mockDepartmentRepository) GetByID(id int64) (*department.Department, error) {
	d, ok := m.departments[id]
	if !ok {
		return nil, internal.ErrDepartmentNotFound
	}
	return d, nil
}

func (m *mockDepartmentRepository) FindByNameOrCode(name, code string) (*department.Department, error) {
	for _, d := range m.departments {
		if d.Name == name || (code != "" && d.Code == code) {
			return d, nil
		}
	}
	return nil, nil
}

func (m *mockDepartmentRepository) GetAll() ([]*department.Department, error) {
	var all []*department.Department
	for _, d := range m.departments {
		all = append(all, d)
	}
	return all, nil
}

func (m *mockDepartmentRepository) Update(d *department.Department) error {
	m.departments[d.ID] = d
	return nil
}

func (m *mockDepartmentRepository) Deactivate(id int64) error {
	if d, ok := m.departments[id]; ok {
		d.IsActive = false
	}
	return nil
}

var _ = Describe("Service", func() {
	var (
		repo *mockDepartmentRepository
		svc  *department.Service
	)

	BeforeEach(func() {
		repo = newMockDepartmentRepository()
		svc = department.NewService(repo, discardLogger())
	})

	Describe("CreateDepartment", func() {
		It("creates an active department with an uppercased code", func() {
			created, err := svc.CreateDepartment(department.CreateDepartmentDTO{
				Name: "Engineering",
				Code: "eng",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Code).To(Equal("ENG"))
			Expect(created.IsActive).To(BeTrue())
		})

		It("rejects a duplicate name or code as a conflict", func() {
			repo.add(&department.Department{Name: "Engineering", Code: "ENG", IsActive: true})

			_, err := svc.CreateDepartment(department.CreateDepartmentDTO{
				Name: "Platform",
				Code: "ENG",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
			Expect(appErr.Code).To(Equal(internal.ErrCodeDepartmentExists))
		})

		It("rejects a missing parent department", func() {
			parentID := int64(42)

			_, err := svc.CreateDepartment(department.CreateDepartmentDTO{
				Name:     "Platform",
				Code:     "PLT",
				ParentID: &parentID,
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidReference))
		})

		It("requires a name", func() {
			_, err := svc.CreateDepartment(department.CreateDepartmentDTO{Code: "ENG"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("UpdateDepartment", func() {
		It("rejects renaming onto another department's name", func() {
			repo.add(&department.Department{Name: "Engineering", Code: "ENG", IsActive: true})
			target := repo.add(&department.Department{Name: "Platform", Code: "PLT", IsActive: true})

			name := "Engineering"
			_, err := svc.UpdateDepartment(target.ID, department.UpdateDepartmentDTO{Name: &name})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})

		It("rejects making a department its own parent", func() {
			d := repo.add(&department.Department{Name: "Engineering", Code: "ENG", IsActive: true})

			_, err := svc.UpdateDepartment(d.ID, department.UpdateDepartmentDTO{ParentID: &d.ID})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidReference))
		})

		It("reassigns the department head", func() {
			d := repo.add(&department.Department{Name: "Engineering", Code: "ENG", IsActive: true})
			head := int64(7)

			updated, err := svc.UpdateDepartment(d.ID, department.UpdateDepartmentDTO{HeadID: &head})

			Expect(err).NotTo(HaveOccurred())
			Expect(*updated.HeadID).To(Equal(int64(7)))
		})
	})

	Describe("DeleteDepartment", func() {
		It("deactivates instead of removing", func() {
			d := repo.add(&department.Department{Name: "Engineering", Code: "ENG", IsActive: true})

			Expect(svc.DeleteDepartment(d.ID)).To(Succeed())

			stored, err := repo.GetByID(d.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.IsActive).To(BeFalse())
		})

		It("reports an unknown department as not found", func() {
			err := svc.DeleteDepartment(99)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})

	Describe("HeadUserID", func() {
		It("returns nil when the department has no head", func() {
			d := repo.add(&department.Department{Name: "Engineering", Code: "ENG", IsActive: true})

			head, err := svc.HeadUserID(d.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(head).To(BeNil())
		})

		It("returns the configured head", func() {
			headID := int64(7)
			d := repo.add(&department.Department{Name: "Engineering", Code: "ENG", HeadID: &headID, IsActive: true})

			head, err := svc.HeadUserID(d.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(*head).To(Equal(int64(7)))
		})
	})
})
