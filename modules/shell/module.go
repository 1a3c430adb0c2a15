package shell

import (
	"context"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/tasks-app/events"
)

// Module turns TaskCreated events into TasksRefreshRequested events.
type Module struct {
	shell    *Shell
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module              = (*Module)(nil)
	_ mono.EventBusAwareModule = (*Module)(nil)
	_ mono.EventEmitterModule  = (*Module)(nil)
	_ mono.EventConsumerModule = (*Module)(nil)
)

// NewModule creates a new shell module.
func NewModule(logger types.Logger) *Module {
	m := &Module{
		shell:  New(),
		logger: logger,
	}
	m.shell.OnRefresh(m.publishRefresh)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "shell"
}

// Shell returns the refresh counter holder.
func (m *Module) Shell() *Shell {
	return m.shell
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TasksRefreshRequestedV1.ToBase(),
	}
}

// RegisterEventConsumers subscribes to task creations.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	m.logger.Info("Registered event consumers", "events", "TaskCreated")
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	trigger := m.shell.NotifyTaskCreated()
	m.logger.Debug("Task created, refreshing list", "taskID", event.TaskID, "trigger", trigger)
	return nil
}

func (m *Module) publishRefresh(trigger int64) {
	if m.eventBus == nil {
		m.logger.Warn("EventBus not set, refresh not published", "trigger", trigger)
		return
	}
	event := events.TasksRefreshRequestedEvent{
		Trigger:     trigger,
		RequestedAt: time.Now(),
	}
	if err := events.TasksRefreshRequestedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish TasksRefreshRequested event", "trigger", trigger, "error", err)
	}
}

// Start logs the initial counter.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Shell module started", "counter", m.shell.Counter())
	return nil
}

// Stop is a no-op.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Shell module stopped")
	return nil
}
