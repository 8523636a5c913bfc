package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTaskStatusChanged = "task.status_changed"
)

// TaskStatusChangedData is the payload of a task.status_changed event,
// consumed by the activity log and notification subscribers.
type TaskStatusChangedData struct {
	TaskID     int64
	TaskTitle  string
	ActorID    int64
	ActorName  string
	FromStatus string
	ToStatus   string
	Remarks    string
	// NotifyRoleIDs are roles that must hear about the change beyond the
	// task's own participants, e.g. approvers of the traversed edge.
	NotifyRoleIDs []int64
}

type TaskStatusChangedEvent struct {
	BaseEvent
	StatusData TaskStatusChangedData
}

func (e TaskStatusChangedEvent) Payload() interface{} {
	return e.StatusData
}

func NewTaskStatusChanged(data TaskStatusChangedData) TaskStatusChangedEvent {
	return TaskStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTaskStatusChanged,
			Timestamp: time.Now(),
		},
		StatusData: data,
	}
}
