package notification_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/core/events"
	"github.com/taskcore/task-management/internal/notification"
	"github.com/taskcore/task-management/internal/role"
)

type mockRuleRepository struct {
	rules  map[int64]*notification.Rule
	nextID int64
}

func newMockRuleRepository() *mockRuleRepository {
	return &mockRuleRepository{rules: make(map[int64]*notification.Rule), nextID: 1}
}

func (m *mockRuleRepository) Create(r *notification.Rule) error {
	r.ID = m.nextID
	m.nextID++
	m.rules[r.ID] = r
	return nil
}

func (m *mockRuleRepository) GetByID(id int64) (*notification.Rule, error) {
	r, ok := m.rules[id]
	if !ok {
		return nil, internal.NewNotFoundError("Notification rule not found", internal.ErrCodeNotificationRuleNotFound)
	}
	return r, nil
}

func (m *mockRuleRepository) ListByEvent(event string) ([]*notification.Rule, error) {
	var matched []*notification.Rule
	for _, r := range m.rules {
		if r.Event == event && r.IsActive {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func (m *mockRuleRepository) List() ([]*notification.Rule, error) {
	var all []*notification.Rule
	for _, r := range m.rules {
		all = append(all, r)
	}
	return all, nil
}

func (m *mockRuleRepository) Update(r *notification.Rule) error {
	m.rules[r.ID] = r
	return nil
}

func (m *mockRuleRepository) ReplaceRecipientRoles(r *notification.Rule, roles []role.Role) error {
	m.rules[r.ID].RecipientRoles = roles
	return nil
}

func (m *mockRuleRepository) Delete(id int64) error {
	delete(m.rules, id)
	return nil
}

type stubRoleReader struct {
	roles map[int64]*role.Role
}

func (s *stubRoleReader) GetActiveByIDs(ids []int64) ([]*role.Role, error) {
	var found []*role.Role
	for _, id := range ids {
		if r, ok := s.roles[id]; ok && r.IsActive {
			found = append(found, r)
		}
	}
	return found, nil
}

var _ = Describe("RuleService", func() {
	var (
		repo  *mockRuleRepository
		roles *stubRoleReader
		svc   *notification.RuleService
	)

	BeforeEach(func() {
		repo = newMockRuleRepository()
		roles = &stubRoleReader{roles: map[int64]*role.Role{
			3: {ID: 3, Name: "Manager", IsActive: true},
		}}
		svc = notification.NewRuleService(repo, roles, discardLogger())
	})

	Describe("CreateRule", func() {
		It("creates an active rule for an event", func() {
			created, err := svc.CreateRule(notification.CreateRuleDTO{
				Event:    events.EventTaskStatusChanged,
				Strategy: notification.StrategyCreator,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.IsActive).To(BeTrue())
			Expect(created.Strategy).To(Equal(notification.StrategyCreator))
		})

		It("rejects an unknown strategy", func() {
			_, err := svc.CreateRule(notification.CreateRuleDTO{
				Event:    events.EventTaskStatusChanged,
				Strategy: "everyone",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("requires roles for the specific_roles strategy", func() {
			_, err := svc.CreateRule(notification.CreateRuleDTO{
				Event:    events.EventTaskStatusChanged,
				Strategy: notification.StrategySpecificRoles,
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects specific_roles when no given role resolves", func() {
			_, err := svc.CreateRule(notification.CreateRuleDTO{
				Event:            events.EventTaskStatusChanged,
				Strategy:         notification.StrategySpecificRoles,
				RecipientRoleIDs: []int64{99},
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidReference))
		})

		It("attaches resolved recipient roles", func() {
			created, err := svc.CreateRule(notification.CreateRuleDTO{
				Event:            events.EventTaskStatusChanged,
				Strategy:         notification.StrategySpecificRoles,
				RecipientRoleIDs: []int64{3},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.RecipientRoleIDs()).To(ConsistOf(int64(3)))
		})
	})

	Describe("UpdateRule", func() {
		It("deactivates a rule so the dispatcher stops consulting it", func() {
			created, err := svc.CreateRule(notification.CreateRuleDTO{
				Event:    events.EventTaskStatusChanged,
				Strategy: notification.StrategyCreator,
			})
			Expect(err).NotTo(HaveOccurred())

			inactive := false
			updated, err := svc.UpdateRule(created.ID, notification.UpdateRuleDTO{IsActive: &inactive})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())

			active, err := repo.ListByEvent(events.EventTaskStatusChanged)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeEmpty())
		})

		It("reports an unknown rule as not found", func() {
			_, err := svc.UpdateRule(99, notification.UpdateRuleDTO{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})

	Describe("DeleteRule", func() {
		It("removes the rule", func() {
			created, err := svc.CreateRule(notification.CreateRuleDTO{
				Event:    events.EventTaskStatusChanged,
				Strategy: notification.StrategyAssignees,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.DeleteRule(created.ID)).To(Succeed())

			_, err = repo.GetByID(created.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})
})
