package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted by the form after the tasks API accepted a new task.
type TaskCreatedEvent struct {
	EventID   string    `json:"event_id"`
	TaskID    int64     `json:"task_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.taskform.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"taskform", "TaskCreated", "v1",
)

// TasksRefreshRequestedEvent asks the task list to re-fetch.
// Trigger is the shell's refresh counter; only its change is meaningful.
type TasksRefreshRequestedEvent struct {
	Trigger     int64     `json:"trigger"`
	RequestedAt time.Time `json:"requested_at"`
}

// TasksRefreshRequestedV1 is the typed event definition for list refreshes.
// Subject: events.shell.v1.tasks-refresh-requested
var TasksRefreshRequestedV1 = helper.EventDefinition[TasksRefreshRequestedEvent](
	"shell", "TasksRefreshRequested", "v1",
)
