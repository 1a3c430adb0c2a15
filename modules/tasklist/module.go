package tasklist

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/tasks-app/events"
	"github.com/example/tasks-app/modules/tasksapi"
)

// Module owns the task list. It fetches once on start and again on every
// TasksRefreshRequested event.
type Module struct {
	list   *List
	logger types.Logger
	hasAPI bool

	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// Compile-time interface checks
var (
	_ mono.Module              = (*Module)(nil)
	_ mono.DependentModule     = (*Module)(nil)
	_ mono.EventConsumerModule = (*Module)(nil)
)

// NewModule creates a new tasklist module.
func NewModule(logger types.Logger, opts ...Option) *Module {
	ctx, cancel := context.WithCancel(context.Background())
	return &Module{
		list:   NewList(nil, opts...),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "tasklist"
}

// List returns the list state holder.
func (m *Module) List() *List {
	return m.list
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"tasksapi"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "tasksapi" {
		m.list.SetLister(tasksapi.NewTasksAPIAdapter(container))
		m.hasAPI = true
	}
}

// RegisterEventConsumers subscribes to refresh requests from the shell.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TasksRefreshRequestedV1, m.handleRefreshRequested, m); err != nil {
		return fmt.Errorf("failed to register TasksRefreshRequested consumer: %w", err)
	}
	m.logger.Info("Registered event consumers", "events", "TasksRefreshRequested")
	return nil
}

func (m *Module) handleRefreshRequested(_ context.Context, event events.TasksRefreshRequestedEvent, _ *mono.Msg) error {
	m.logger.Debug("Refresh requested", "trigger", event.Trigger)
	m.fetchAsync(event.Trigger)
	return nil
}

// fetchAsync runs a fetch bound to the module lifetime.
func (m *Module) fetchAsync(trigger int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		m.logger.Debug("Ignoring refresh after stop", "trigger", trigger)
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if !m.list.Fetch(m.ctx, trigger) {
			m.logger.Debug("Discarded stale task list response", "trigger", trigger)
			return
		}
		view := m.list.View()
		m.logger.Info("Task list refreshed", "trigger", trigger, "state", view.Kind, "rows", len(view.Rows))
	}()
}

// Start performs the initial fetch in the background.
func (m *Module) Start(_ context.Context) error {
	if !m.hasAPI {
		return ErrTasksAPINotSet
	}
	m.fetchAsync(0)
	m.logger.Info("Task list module started", "dependsOn", "tasksapi", "timezone", m.list.Location().String())
	return nil
}

// Stop cancels in-flight fetches and waits for them.
func (m *Module) Stop(ctx context.Context) error {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for task list fetches: %w", ctx.Err())
	}
	m.logger.Info("Task list module stopped")
	return nil
}
