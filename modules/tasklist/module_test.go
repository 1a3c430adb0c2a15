package tasklist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/example/tasks-app/domain/task"
	"github.com/example/tasks-app/events"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any)         {}
func (m *mockLogger) Info(_ string, _ ...any)          {}
func (m *mockLogger) Warn(_ string, _ ...any)          {}
func (m *mockLogger) Error(_ string, _ ...any)         {}
func (m *mockLogger) With(_ ...any) types.Logger       { return m }
func (m *mockLogger) WithModule(_ string) types.Logger { return m }
func (m *mockLogger) WithError(_ error) types.Logger   { return m }

func newTestModule(lister TaskLister) *Module {
	m := NewModule(&mockLogger{})
	m.list.SetLister(lister)
	m.hasAPI = true
	return m
}

func TestModule_Name(t *testing.T) {
	if name := NewModule(&mockLogger{}).Name(); name != "tasklist" {
		t.Errorf("Name() = %q, want 'tasklist'", name)
	}
}

func TestModule_StartWithoutTasksAPI(t *testing.T) {
	m := NewModule(&mockLogger{})
	if err := m.Start(context.Background()); !errors.Is(err, ErrTasksAPINotSet) {
		t.Errorf("Start() error = %v, want ErrTasksAPINotSet", err)
	}
}

func TestModule_StartFetches(t *testing.T) {
	lister := &mockLister{tasks: []domain.Task{{ID: 1, Title: "a", Status: "TO_DO"}}}
	m := newTestModule(lister)

	require.NoError(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return m.List().View().Kind == ViewTable }, time.Second, 5*time.Millisecond)
	require.NoError(t, m.Stop(context.Background()))
}

func TestModule_RefreshEventRefetches(t *testing.T) {
	lister := &mockLister{tasks: []domain.Task{}}
	m := newTestModule(lister)
	require.NoError(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return m.List().View().Kind == ViewEmpty }, time.Second, 5*time.Millisecond)

	lister.mu.Lock()
	lister.tasks = []domain.Task{{ID: 1, Title: "Buy milk", Status: "TO_DO", CreatedAt: "2024-01-01T10:00:00Z"}}
	lister.mu.Unlock()

	err := m.handleRefreshRequested(context.Background(), events.TasksRefreshRequestedEvent{Trigger: 1}, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return m.List().View().Kind == ViewTable }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Buy milk", m.List().View().Rows[0].Title)
	require.NoError(t, m.Stop(context.Background()))
}

func TestModule_StopCancelsInFlightFetch(t *testing.T) {
	gate := gatedResult{release: make(chan struct{})}
	m := newTestModule(&gatedLister{results: []gatedResult{gate}})
	require.NoError(t, m.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx))

	// no fetch may start after Stop
	m.fetchAsync(1)
	assert.Equal(t, ViewError, m.List().View().Kind)
}

func TestModule_RefreshDuringStop(t *testing.T) {
	lister := &mockLister{tasks: []domain.Task{}}
	m := newTestModule(lister)
	require.NoError(t, m.Start(context.Background()))

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(trigger int64) {
			defer wg.Done()
			_ = m.handleRefreshRequested(context.Background(), events.TasksRefreshRequestedEvent{Trigger: trigger}, nil)
		}(int64(i))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx))
	wg.Wait()

	lister.mu.Lock()
	calls := lister.calls
	lister.mu.Unlock()

	m.fetchAsync(99)
	lister.mu.Lock()
	defer lister.mu.Unlock()
	assert.Equal(t, calls, lister.calls, "no fetch may start after Stop")
}
