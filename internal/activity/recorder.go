package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/taskcore/task-management/internal/core/events"
)

// Recorder subscribes to domain events and writes the audit trail. It runs on
// the event bus, so a failed write is logged by the bus and never affects the
// operation that emitted the event.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
}

func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Register wires the recorder's handlers onto the bus.
func (r *Recorder) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTaskStatusChanged, r.handleTaskStatusChanged)
}

func (r *Recorder) handleTaskStatusChanged(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(events.TaskStatusChangedData)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", event.EventType())
	}

	details, err := json.Marshal(map[string]string{
		"from_status": data.FromStatus,
		"to_status":   data.ToStatus,
		"remarks":     data.Remarks,
	})
	if err != nil {
		return err
	}

	entry := &Log{
		Action:     events.EventTaskStatusChanged,
		ActorID:    data.ActorID,
		ActorName:  data.ActorName,
		TargetType: "task",
		TargetID:   data.TaskID,
		Details:    details,
	}
	if err := r.repo.Create(entry); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}

	r.logger.Debug("activity recorded",
		"action", entry.Action, "target_id", entry.TargetID)
	return nil
}
