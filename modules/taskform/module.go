package taskform

import (
	"context"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"

	domain "github.com/example/tasks-app/domain/task"
	"github.com/example/tasks-app/events"
	"github.com/example/tasks-app/modules/tasksapi"
)

// Module owns the task creation forms, one per browser session, and announces
// created tasks on the event bus.
type Module struct {
	mu        sync.Mutex
	creator   TaskCreator
	observers []func(domain.Task)
	opts      []Option
	sessions  *Sessions
	eventBus  mono.EventBus
	logger    types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module              = (*Module)(nil)
	_ mono.DependentModule     = (*Module)(nil)
	_ mono.EventBusAwareModule = (*Module)(nil)
	_ mono.EventEmitterModule  = (*Module)(nil)
)

// NewModule creates a new taskform module.
func NewModule(logger types.Logger, opts ...Option) *Module {
	m := &Module{
		opts:   opts,
		logger: logger,
	}
	m.observers = []func(domain.Task){m.publishTaskCreated}
	m.sessions = NewSessions(m.NewForm, DefaultSessionIdle)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "taskform"
}

// NewForm creates a form wired to the tasks API and to the module's observers.
func (m *Module) NewForm() *Form {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := NewForm(m.creator, m.opts...)
	for _, fn := range m.observers {
		f.OnTaskCreated(fn)
	}
	return f
}

// Session returns the form of the given browser session.
func (m *Module) Session(id string) *Form {
	return m.sessions.Get(id)
}

// SetCreator sets the TaskCreator used by forms created from now on.
func (m *Module) SetCreator(creator TaskCreator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creator = creator
}

// OnTaskCreated registers fn on every form created from now on.
func (m *Module) OnTaskCreated(fn func(domain.Task)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"tasksapi"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "tasksapi" {
		m.SetCreator(tasksapi.NewTasksAPIAdapter(container))
	}
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
	}
}

// publishTaskCreated is the form's creation observer.
// Publishing is best-effort; a failure only delays the list refresh until the next creation.
func (m *Module) publishTaskCreated(created domain.Task) {
	if m.eventBus == nil {
		m.logger.Warn("EventBus not set, TaskCreated not published", "taskID", created.ID)
		return
	}

	event := events.TaskCreatedEvent{
		EventID:   uuid.New().String(),
		TaskID:    created.ID,
		Title:     created.Title,
		Status:    created.Status,
		CreatedAt: time.Now(),
	}
	if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish TaskCreated event", "taskID", created.ID, "error", err)
		return
	}
	m.logger.Info("Task created", "taskID", created.ID, "title", created.Title)
}

// Start verifies the tasks API dependency.
func (m *Module) Start(_ context.Context) error {
	m.mu.Lock()
	hasAPI := m.creator != nil
	m.mu.Unlock()
	if !hasAPI {
		return ErrTasksAPINotSet
	}
	if m.eventBus == nil {
		m.logger.Warn("EventBus not set, task creations will not refresh the list")
	}
	m.logger.Info("Task form module started", "dependsOn", "tasksapi")
	return nil
}

// Stop cancels the pending success timers of all sessions.
func (m *Module) Stop(_ context.Context) error {
	m.sessions.Close()
	m.logger.Info("Task form module stopped")
	return nil
}
