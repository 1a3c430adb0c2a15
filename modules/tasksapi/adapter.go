package tasksapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/tasks-app/domain/task"
)

// tasksAPIAdapter wraps the tasksapi ServiceContainer and implements TasksAPIPort.
type tasksAPIAdapter struct {
	container mono.ServiceContainer
}

// NewTasksAPIAdapter creates a TasksAPIPort backed by the tasksapi module's services.
// container is received via SetDependencyServiceContainer.
func NewTasksAPIAdapter(container mono.ServiceContainer) TasksAPIPort {
	if container == nil {
		panic("tasksapi adapter requires non-nil ServiceContainer")
	}
	return &tasksAPIAdapter{container: container}
}

// CreateTask creates a task via the create-task service.
// A failure reported by the service is returned as *APIError.
func (a *tasksAPIAdapter) CreateTask(ctx context.Context, payload domain.CreateTaskPayload) (*domain.Task, error) {
	req := CreateTaskRequest{Payload: payload}
	var resp CreateTaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"create-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("create-task service call failed: %w", err)
	}
	if resp.Failure != nil {
		return nil, resp.Failure
	}
	if resp.Task == nil {
		return nil, &APIError{Op: "create task", TransportMessage: "empty reply from create-task service"}
	}
	return resp.Task, nil
}

// GetAllTasks lists every task via the list-tasks service.
func (a *tasksAPIAdapter) GetAllTasks(ctx context.Context) ([]domain.Task, error) {
	req := ListTasksRequest{}
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-tasks",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-tasks service call failed: %w", err)
	}
	if resp.Failure != nil {
		return nil, resp.Failure
	}
	if resp.Tasks == nil {
		resp.Tasks = []domain.Task{}
	}
	return resp.Tasks, nil
}
