package web

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/example/tasks-app/domain/task"
	"github.com/example/tasks-app/modules/shell"
	"github.com/example/tasks-app/modules/taskform"
	"github.com/example/tasks-app/modules/tasklist"
	"github.com/example/tasks-app/modules/tasksapi"
)

// newAppEnv registers all five modules on a mono application with an
// in-process NATS server, so events and service calls cross the real bus.
func newAppEnv(t *testing.T) (*testEnv, *shell.Module) {
	t.Helper()

	fake := &fakeTasksServer{tasks: []domain.Task{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
		mono.WithJetStreamStorageDir(t.TempDir()),
		mono.WithNATSDontListen(),
		mono.WithNATSInProcessConn(),
	)
	require.NoError(t, err)

	logger := app.Logger()
	apiModule := tasksapi.NewModule(tasksapi.Config{BaseURL: srv.URL}, logger.WithModule("tasksapi"))
	shellModule := shell.NewModule(logger.WithModule("shell"))
	listModule := tasklist.NewModule(logger.WithModule("tasklist"))
	formModule := taskform.NewModule(logger.WithModule("taskform"))
	webModule := NewModule(Config{Addr: "127.0.0.1:0", APIURL: srv.URL}, formModule, listModule, logger.WithModule("web"))

	for _, m := range []mono.Module{apiModule, shellModule, listModule, formModule, webModule} {
		require.NoError(t, app.Register(m))
	}
	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.Stop(ctx)
	})

	env := &testEnv{
		app:    webModule.app,
		server: fake,
		forms:  formModule,
		list:   listModule.List(),
	}
	return env, shellModule
}

func TestApp_SubmitRefreshesListBeforeRedirect(t *testing.T) {
	env, shellModule := newAppEnv(t)
	require.Eventually(t, func() bool { return env.list.View().Kind == tasklist.ViewEmpty },
		5*time.Second, 10*time.Millisecond)

	resp := env.postForm(t, "title=Buy+milk&description=&status=to-do")
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	// the page rendered right after the redirect already lists the task
	_, body := env.get(t, "/")
	assert.Contains(t, body, "✅ Task created successfully!")
	assert.Contains(t, body, "Tasks (1)")
	assert.Contains(t, body, "Buy milk")
	assert.Contains(t, body, "01/01/2024, 10:00")

	assert.Equal(t, tasklist.ViewTable, env.list.View().Kind)
	assert.Equal(t, int64(1), shellModule.Shell().Counter())
}

func TestApp_ServerMessagesCrossServiceBoundary(t *testing.T) {
	env, shellModule := newAppEnv(t)
	env.server.mu.Lock()
	env.server.failWith = 400
	env.server.failBody = `{"message":["A","B"]}`
	env.server.mu.Unlock()

	resp := env.postJSON(t, `{"title":"x","status":"done"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var view FormView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "A, B", view.Error)
	assert.Equal(t, "A, B", env.form(t).State().Error)
	assert.Equal(t, "x", env.form(t).State().Title)
	assert.Zero(t, shellModule.Shell().Counter())
}
