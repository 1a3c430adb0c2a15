package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/joho/godotenv"

	"github.com/example/tasks-app/modules/shell"
	"github.com/example/tasks-app/modules/taskform"
	"github.com/example/tasks-app/modules/tasklist"
	"github.com/example/tasks-app/modules/tasksapi"
	"github.com/example/tasks-app/modules/web"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	// Load configuration from environment
	apiURL := getEnv("API_URL", tasksapi.DefaultBaseURL)
	httpPort := getEnvInt("HTTP_PORT", 8080)
	displayTimezone := getEnv("DISPLAY_TIMEZONE", "UTC")
	discardStale := getEnvBool("LIST_DISCARD_STALE", true)
	allowedOrigins := getEnv("CORS_ALLOWED_ORIGINS", fmt.Sprintf("http://localhost:%d", httpPort))

	loc, err := time.LoadLocation(displayTimezone)
	if err != nil {
		log.Fatalf("Invalid DISPLAY_TIMEZONE %q: %v", displayTimezone, err)
	}

	log.Println("=== Tasks App ===")
	log.Printf("API URL: %s", apiURL)
	log.Printf("HTTP Port: %d", httpPort)
	log.Printf("Display timezone: %s", loc)

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Create modules
	tasksAPIModule := tasksapi.NewModule(tasksapi.Config{
		BaseURL: apiURL,
		Timeout: tasksapi.DefaultTimeout,
	}, logger.WithModule("tasksapi"))
	shellModule := shell.NewModule(logger.WithModule("shell"))
	taskListModule := tasklist.NewModule(logger.WithModule("tasklist"),
		tasklist.WithLocation(loc),
		tasklist.WithStaleDiscard(discardStale),
	)
	taskFormModule := taskform.NewModule(logger.WithModule("taskform"))
	webModule := web.NewModule(web.Config{
		Addr:           fmt.Sprintf(":%d", httpPort),
		APIURL:         apiURL,
		AllowedOrigins: allowedOrigins,
	}, taskFormModule, taskListModule, logger.WithModule("web"))

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - tasksapi: service provider (create-task, list-tasks)
	// - shell: consumes TaskCreated, emits TasksRefreshRequested
	// - tasklist: depends on tasksapi, consumes TasksRefreshRequested
	// - taskform: depends on tasksapi, emits TaskCreated
	// - web: Fiber page over taskform and tasklist
	for _, m := range []mono.Module{tasksAPIModule, shellModule, taskListModule, taskFormModule, webModule} {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register module %s: %v", m.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(httpPort)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(httpPort int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Event flow:")
	log.Println("  - taskform: TaskCreated -> shell")
	log.Println("  - shell: TasksRefreshRequested -> tasklist")
	log.Println("")
	log.Printf("Endpoints (http://localhost:%d):", httpPort)
	log.Println("  GET    /                - Tasks page")
	log.Println("  POST   /tasks           - Submit the task form")
	log.Println("  POST   /api/v1/tasks    - Submit the task form (JSON)")
	log.Println("  GET    /api/v1/state    - Form and list state")
	log.Println("  GET    /health          - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}
