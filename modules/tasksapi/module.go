package tasksapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module exposes the tasks HTTP API to the other modules as request-reply services.
type Module struct {
	client *Client
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new tasksapi module.
func NewModule(cfg Config, logger types.Logger) *Module {
	return &Module{
		client: NewClient(cfg),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "tasksapi"
}

// Client returns the underlying HTTP client.
func (m *Module) Client() *Client {
	return m.client
}

// RegisterServices registers create-task and list-tasks.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	m.logger.Info("Registered services", "services", "create-task, list-tasks")
	return nil
}

// createTask handles the create-task service request.
// API failures are part of the reply, not a service error.
func (m *Module) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (CreateTaskResponse, error) {
	if m.client == nil {
		return CreateTaskResponse{}, ErrClientNotConfigured
	}

	created, err := m.client.CreateTask(ctx, req.Payload)
	if err != nil {
		m.logger.Warn("Create task failed", "error", err)
		return CreateTaskResponse{Failure: toAPIError("create task", err)}, nil
	}

	m.logger.Debug("Task created", "id", created.ID, "title", created.Title)
	return CreateTaskResponse{Task: created}, nil
}

// listTasks handles the list-tasks service request.
func (m *Module) listTasks(ctx context.Context, _ ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	if m.client == nil {
		return ListTasksResponse{}, ErrClientNotConfigured
	}

	tasks, err := m.client.GetAllTasks(ctx)
	if err != nil {
		m.logger.Warn("List tasks failed", "error", err)
		return ListTasksResponse{Failure: toAPIError("get tasks", err)}, nil
	}
	return ListTasksResponse{Tasks: tasks}, nil
}

// Start logs the resolved configuration.
func (m *Module) Start(_ context.Context) error {
	if m.client == nil {
		return ErrClientNotConfigured
	}
	m.logger.Info("Tasks API module started",
		"baseURL", m.client.BaseURL(),
		"timeout", m.client.Timeout())
	return nil
}

// Stop is a no-op; the client holds no connections between calls.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Tasks API module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{Healthy: false, Message: "client not configured"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"base_url":   m.client.BaseURL(),
			"timeout_ms": m.client.Timeout().Milliseconds(),
		},
	}
}
