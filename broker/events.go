package broker

import (
	"time"

	"taskman-api/taskman/models"
)

type EventType string

// Event types in format: <resource>.<action>
const (
	TaskCreated EventType = "task.created"
	TaskUpdated EventType = "task.updated"
	TaskDeleted EventType = "task.deleted"
)

const TaskSubject = "taskman.tasks"

// TaskEvent is the payload published after a successful mutation. For
// deletes only the id survives, so Task stays nil.
type TaskEvent struct {
	Event     EventType    `json:"event"`
	TaskID    int64        `json:"task_id"`
	Task      *models.Task `json:"task,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewTaskEvent(event EventType, task models.Task) TaskEvent {
	return TaskEvent{
		Event:     event,
		TaskID:    task.ID,
		Task:      &task,
		Timestamp: time.Now().UTC(),
	}
}

func NewTaskDeletedEvent(taskID int64) TaskEvent {
	return TaskEvent{
		Event:     TaskDeleted,
		TaskID:    taskID,
		Timestamp: time.Now().UTC(),
	}
}
