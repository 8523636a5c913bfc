package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskcore/task-management/internal/core/events"
	"github.com/taskcore/task-management/internal/task"
)

// TaskReader supplies the recipient-relevant fields of a task.
type TaskReader interface {
	GetByID(id int64) (*task.Task, error)
}

// UserReader resolves role-based recipients to concrete user ids.
type UserReader interface {
	GetIDsByRoleIDs(roleIDs []int64) ([]int64, error)
}

// RuleReader supplies the active rules configured for an event.
type RuleReader interface {
	ListByEvent(event string) ([]*Rule, error)
}

// DepartmentHeadReader resolves a department to its head, nil when unset.
type DepartmentHeadReader interface {
	HeadUserID(departmentID int64) (*int64, error)
}

// Dispatcher turns domain events into per-recipient notifications. Recipients
// come from the event's configured rules (assignees, creator, department
// head, or specific roles), unioned across rules; with no active rule the
// task's assignees and creator are notified. Users holding one of the event's
// notify roles are always added, and the actor is always excluded. Dispatch
// runs on the event bus, so failures are logged and never reach the operation
// that emitted the event.
type Dispatcher struct {
	repo        Repository
	tasks       TaskReader
	users       UserReader
	rules       RuleReader
	departments DepartmentHeadReader
	logger      *slog.Logger
}

func NewDispatcher(repo Repository, tasks TaskReader, users UserReader, rules RuleReader, departments DepartmentHeadReader, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:        repo,
		tasks:       tasks,
		users:       users,
		rules:       rules,
		departments: departments,
		logger:      logger,
	}
}

// Register wires the dispatcher's handlers onto the bus.
func (d *Dispatcher) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTaskStatusChanged, d.handleTaskStatusChanged)
}

func (d *Dispatcher) handleTaskStatusChanged(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(events.TaskStatusChangedData)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", event.EventType())
	}

	t, err := d.tasks.GetByID(data.TaskID)
	if err != nil {
		return fmt.Errorf("load task for notification: %w", err)
	}

	recipients, err := d.resolveRecipients(t, data)
	if err != nil {
		return err
	}
	delete(recipients, data.ActorID)
	if len(recipients) == 0 {
		d.logger.Debug("no notification recipients", "task_id", data.TaskID)
		return nil
	}

	taskID := data.TaskID
	title := fmt.Sprintf("Task status changed: %s", data.TaskTitle)
	message := fmt.Sprintf("%s moved %q from %q to %q", data.ActorName, data.TaskTitle, data.FromStatus, data.ToStatus)

	notifications := make([]*Notification, 0, len(recipients))
	for userID := range recipients {
		notifications = append(notifications, &Notification{
			UserID:  userID,
			Type:    TypeStatusChanged,
			Title:   title,
			Message: message,
			TaskID:  &taskID,
		})
	}

	if err := d.repo.CreateBatch(notifications); err != nil {
		return fmt.Errorf("dispatch notifications: %w", err)
	}

	d.logger.Debug("notifications dispatched",
		"task_id", data.TaskID, "recipients", len(notifications))
	return nil
}

func (d *Dispatcher) resolveRecipients(t *task.Task, data events.TaskStatusChangedData) (map[int64]struct{}, error) {
	recipients := make(map[int64]struct{})

	rules, err := d.rules.ListByEvent(events.EventTaskStatusChanged)
	if err != nil {
		return nil, fmt.Errorf("load notification rules: %w", err)
	}
	if len(rules) == 0 {
		addAssignees(recipients, t)
		recipients[t.CreatedBy] = struct{}{}
	}
	for _, rule := range rules {
		if err := d.applyRule(recipients, rule, t); err != nil {
			return nil, err
		}
	}

	// Approver roles on the traversed edge are notified regardless of rules,
	// so reviewers see work arriving in their queue.
	if len(data.NotifyRoleIDs) > 0 {
		if err := d.addRoleHolders(recipients, data.NotifyRoleIDs); err != nil {
			return nil, err
		}
	}

	return recipients, nil
}

func (d *Dispatcher) applyRule(recipients map[int64]struct{}, rule *Rule, t *task.Task) error {
	switch rule.Strategy {
	case StrategyAssignees:
		addAssignees(recipients, t)
	case StrategyCreator:
		recipients[t.CreatedBy] = struct{}{}
	case StrategyDepartmentHead:
		if t.DepartmentID == nil {
			return nil
		}
		head, err := d.departments.HeadUserID(*t.DepartmentID)
		if err != nil {
			return fmt.Errorf("resolve department head: %w", err)
		}
		if head != nil {
			recipients[*head] = struct{}{}
		}
	case StrategySpecificRoles:
		return d.addRoleHolders(recipients, rule.RecipientRoleIDs())
	default:
		d.logger.Warn("skipping rule with unknown strategy",
			"rule_id", rule.ID, "strategy", rule.Strategy)
	}
	return nil
}

func (d *Dispatcher) addRoleHolders(recipients map[int64]struct{}, roleIDs []int64) error {
	userIDs, err := d.users.GetIDsByRoleIDs(roleIDs)
	if err != nil {
		return fmt.Errorf("resolve role recipients: %w", err)
	}
	for _, id := range userIDs {
		recipients[id] = struct{}{}
	}
	return nil
}

func addAssignees(recipients map[int64]struct{}, t *task.Task) {
	for _, id := range t.Assignees {
		recipients[id] = struct{}{}
	}
}
