package tasksapi

import (
	"context"

	domain "github.com/example/tasks-app/domain/task"
)

// CreateTaskRequest is the request for the create-task service.
type CreateTaskRequest struct {
	Payload domain.CreateTaskPayload `json:"payload"`
}

// CreateTaskResponse is the reply of the create-task service.
// Exactly one of Task and Failure is set.
type CreateTaskResponse struct {
	Task    *domain.Task `json:"task,omitempty"`
	Failure *APIError    `json:"failure,omitempty"`
}

// ListTasksRequest is the request for the list-tasks service.
type ListTasksRequest struct{}

// ListTasksResponse is the reply of the list-tasks service.
type ListTasksResponse struct {
	Tasks   []domain.Task `json:"tasks"`
	Failure *APIError     `json:"failure,omitempty"`
}

// TasksAPIPort is the contract other modules use to reach the tasks service.
type TasksAPIPort interface {
	CreateTask(ctx context.Context, payload domain.CreateTaskPayload) (*domain.Task, error)
	GetAllTasks(ctx context.Context) ([]domain.Task, error)
}
