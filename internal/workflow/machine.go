package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskcore/task-management/internal"
	"github.com/taskcore/task-management/internal/core/events"
	"github.com/taskcore/task-management/internal/task"
)

// transitionAttempt carries the state a single transition attempt accumulates
// as it moves through the guard chain.
type transitionAttempt struct {
	task      *task.Task
	from      *WorkflowStatus
	to        *WorkflowStatus
	edge      *WorkflowTransition
	principal *internal.Principal
	remarks   string
}

type guard func(a *transitionAttempt) error

// StatusMachine moves tasks through the status graph. Every move runs the
// guard chain in a fixed order; the first failing guard decides the error and
// nothing is persisted. The status write itself is conditional on the status
// and version read during validation, and a concurrent move triggers exactly
// one re-validation before the conflict surfaces to the caller.
type StatusMachine struct {
	tasks       task.Repository
	comments    task.CommentRepository
	statuses    StatusRepository
	transitions TransitionRepository
	bus         *events.EventBus
	logger      *slog.Logger
	guards      []guard
}

func NewStatusMachine(
	tasks task.Repository,
	comments task.CommentRepository,
	statuses StatusRepository,
	transitions TransitionRepository,
	bus *events.EventBus,
	logger *slog.Logger,
) *StatusMachine {
	m := &StatusMachine{
		tasks:       tasks,
		comments:    comments,
		statuses:    statuses,
		transitions: transitions,
		bus:         bus,
		logger:      logger,
	}
	m.guards = []guard{
		m.guardEdgeExists,
		m.guardRoleAllowed,
		m.guardRemarks,
	}
	return m
}

// Transition moves the task to the target status on behalf of the principal.
// On success the updated task is returned with its new status and version.
func (m *StatusMachine) Transition(ctx context.Context, taskID int64, dto TransitionTaskDTO, principal *internal.Principal) (*task.Task, error) {
	if principal == nil {
		return nil, internal.ErrNoPrincipal
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := m.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}

	updated, err := m.attempt(ctx, t, dto, principal)
	if err == nil {
		return updated, nil
	}

	// A conflict means another writer moved the task between our read and
	// our conditional write. Re-read and re-validate once against the fresh
	// state; a second conflict is returned as-is.
	var appErr *internal.AppError
	if errors.As(err, &appErr) && appErr.Code == internal.ErrCodeTaskVersionConflict {
		m.logger.Warn("status write conflict, retrying once", "task_id", taskID)
		t, err = m.tasks.GetByID(taskID)
		if err != nil {
			return nil, err
		}
		return m.attempt(ctx, t, dto, principal)
	}

	return nil, err
}

func (m *StatusMachine) attempt(ctx context.Context, t *task.Task, dto TransitionTaskDTO, principal *internal.Principal) (*task.Task, error) {
	from, err := m.statuses.GetByID(t.StatusID)
	if err != nil {
		return nil, err
	}

	to, err := m.statuses.GetByID(dto.ToStatusID)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeStatusNotFound {
			return nil, internal.NewValidationError("Invalid target status", internal.ErrCodeInvalidTargetStatus)
		}
		return nil, err
	}
	if !to.IsActive {
		return nil, internal.NewValidationError("Invalid target status", internal.ErrCodeInvalidTargetStatus)
	}

	a := &transitionAttempt{
		task:      t,
		from:      from,
		to:        to,
		principal: principal,
		remarks:   strings.TrimSpace(dto.Remarks),
	}

	for _, g := range m.guards {
		if err := g(a); err != nil {
			return nil, err
		}
	}

	var completedAt *time.Time
	if to.IsFinal {
		now := time.Now()
		completedAt = &now
	}

	if err := m.tasks.UpdateStatusIf(t.ID, t.StatusID, t.Version, to.ID, completedAt); err != nil {
		return nil, err
	}

	t.StatusID = to.ID
	t.Version++
	if completedAt != nil {
		t.CompletedAt = completedAt
	}

	m.recordRemarks(a)
	m.publishStatusChanged(ctx, a)

	return t, nil
}

func (m *StatusMachine) guardEdgeExists(a *transitionAttempt) error {
	edge, err := m.transitions.FindEdge(a.from.ID, a.to.ID)
	if err != nil {
		return internal.NewInternalError("failed to look up transition", err)
	}
	if edge == nil {
		return internal.NewTransitionNotAllowedError(a.from.Name, a.to.Name)
	}
	a.edge = edge
	return nil
}

func (m *StatusMachine) guardRoleAllowed(a *transitionAttempt) error {
	if !a.edge.PermitsRole(a.principal.RoleIDs) {
		return internal.NewRoleNotPermittedError(a.from.Name, a.to.Name)
	}
	return nil
}

func (m *StatusMachine) guardRemarks(a *transitionAttempt) error {
	if a.edge.RequiresRemarks && a.remarks == "" {
		return internal.NewRemarksRequiredError(a.from.Name, a.to.Name)
	}
	return nil
}

// recordRemarks appends a system comment documenting the move. The status
// change is already durable at this point, so a comment failure is logged
// rather than surfaced.
func (m *StatusMachine) recordRemarks(a *transitionAttempt) {
	if a.remarks == "" {
		return
	}
	comment := &task.Comment{
		TaskID:            a.task.ID,
		AuthorID:          a.principal.ID,
		Content:           fmt.Sprintf("Status changed from %q to %q: %s", a.from.Name, a.to.Name, a.remarks),
		IsSystemGenerated: true,
	}
	if err := m.comments.Create(comment); err != nil {
		m.logger.Error("failed to record status change comment",
			"task_id", a.task.ID, "error", err)
	}
}

func (m *StatusMachine) publishStatusChanged(ctx context.Context, a *transitionAttempt) {
	event := events.NewTaskStatusChanged(events.TaskStatusChangedData{
		TaskID:     a.task.ID,
		TaskTitle:  a.task.Title,
		ActorID:    a.principal.ID,
		ActorName:  a.principal.Name,
		FromStatus: a.from.Name,
		ToStatus:   a.to.Name,
		Remarks:    a.remarks,
		// Edges that need a sign-off fan the event out to the approver
		// roles so reviewers see work arriving in their queue.
		NotifyRoleIDs: a.edge.ApproverRoleIDs(),
	})
	if err := m.bus.Publish(ctx, event); err != nil {
		m.logger.Error("failed to publish status change event",
			"task_id", a.task.ID, "error", err)
	}
}
