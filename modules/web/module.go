package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"

	"github.com/example/tasks-app/modules/taskform"
	"github.com/example/tasks-app/modules/tasklist"
	"github.com/example/tasks-app/modules/tasksapi"
)

//go:embed views
var viewsFS embed.FS

// sessionCookie names the cookie that keys a visitor's form.
const sessionCookie = "tasks_session"

// Config holds the web server settings.
type Config struct {
	Addr           string
	AppName        string
	APIURL         string
	AllowedOrigins string
	// RefreshWait bounds how long a successful submit waits for the list to
	// show the new task. Defaults to the tasks API timeout.
	RefreshWait time.Duration
}

// Module serves the tasks page and its form endpoint using Fiber.
type Module struct {
	cfg        Config
	app        *fiber.App
	handlers   *Handlers
	formModule *taskform.Module
	listModule *tasklist.Module
	logger     types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new web module.
func NewModule(
	cfg Config,
	formModule *taskform.Module,
	listModule *tasklist.Module,
	moduleLogger types.Logger,
) *Module {
	if cfg.AppName == "" {
		cfg.AppName = "Tasks App"
	}
	if cfg.AllowedOrigins == "" {
		cfg.AllowedOrigins = "http://localhost:8080"
	}
	if cfg.RefreshWait <= 0 {
		cfg.RefreshWait = tasksapi.DefaultTimeout
	}
	return &Module{
		cfg:        cfg,
		formModule: formModule,
		listModule: listModule,
		logger:     moduleLogger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "web"
}

// newApp builds the Fiber app with middleware and routes.
func (m *Module) newApp() (*fiber.App, error) {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded views: %w", err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")

	app := fiber.New(fiber.Config{
		AppName:               m.cfg.AppName,
		DisableStartupMessage: true,
		Views:                 engine,
		ErrorHandler:          m.errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: m.cfg.AllowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	sessions := session.New(session.Config{
		Expiration:     taskform.DefaultSessionIdle,
		KeyLookup:      "cookie:" + sessionCookie,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})

	m.handlers = NewHandlers(m.cfg, m.formModule, m.listModule.List(), sessions, m.logger)
	m.registerRoutes(app)
	return app, nil
}

// registerRoutes sets up all HTTP routes.
func (m *Module) registerRoutes(app *fiber.App) {
	app.Get("/health", m.handlers.HealthCheck)

	app.Get("/", m.handlers.Index)
	app.Post("/tasks", m.handlers.SubmitForm)

	api := app.Group("/api/v1")
	api.Get("/state", m.handlers.State)
	api.Post("/tasks", m.handlers.CreateTask)
}

// Start initializes and starts the HTTP server.
func (m *Module) Start(_ context.Context) error {
	if m.formModule == nil || m.listModule == nil {
		return ErrModulesNotSet
	}

	app, err := m.newApp()
	if err != nil {
		return err
	}
	m.app = app

	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.cfg.Addr); err != nil {
			errCh <- err
		}
	}()

	// catch immediate startup errors (port in use, permission denied)
	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", m.cfg.Addr)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app != nil {
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.cfg.Addr,
		},
	}
}

// errorHandler handles errors globally.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	m.logger.Error("HTTP error", "code", code, "message", message, "error", err)

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
