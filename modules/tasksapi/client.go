package tasksapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	domain "github.com/example/tasks-app/domain/task"
)

const (
	// DefaultBaseURL is used when API_URL is not set.
	DefaultBaseURL = "http://localhost:3000"

	// DefaultTimeout bounds every request to the tasks API.
	DefaultTimeout = 5000 * time.Millisecond

	tasksPath = "/tasks"
)

// Config holds the tasks API connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Client talks to the remote tasks service over HTTP.
// It performs no retries and no caching.
type Client struct {
	cfg      Config
	validate *validator.Validate
}

// NewClient creates a client for the given configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:      cfg.withDefaults(),
		validate: validator.New(),
	}
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.cfg.Timeout
}

// CreateTask posts payload to the tasks collection and returns the created task.
func (c *Client) CreateTask(ctx context.Context, payload domain.CreateTaskPayload) (*domain.Task, error) {
	if err := c.validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, describeValidation(err))
	}

	var created domain.Task
	agent := fiber.Post(c.cfg.BaseURL + tasksPath).JSON(payload)
	if err := c.do(ctx, "create task", agent, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetAllTasks fetches the full task collection.
func (c *Client) GetAllTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, "get tasks", fiber.Get(c.cfg.BaseURL+tasksPath), &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// do sends the request prepared in agent and decodes a 2xx JSON body into out.
// Every failure is returned as *APIError.
func (c *Client) do(ctx context.Context, op string, agent *fiber.Agent, out any) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return &APIError{Op: op, TransportMessage: err.Error()}
	}

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.Set(fiber.HeaderXRequestID, uuid.New().String())
	agent.Timeout(timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return &APIError{Op: op, TransportMessage: transportMessage(errs, timeout)}
	}

	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return &APIError{
			Op:               op,
			StatusCode:       code,
			ServerMessages:   parseServerMessages(body),
			TransportMessage: fmt.Sprintf("Request failed with status code %d", code),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{
			Op:               op,
			StatusCode:       code,
			TransportMessage: fmt.Sprintf("invalid response body: %v", err),
		}
	}
	return nil
}

func transportMessage(errs []error, timeout time.Duration) string {
	err := errors.Join(errs...)
	if errors.Is(err, fasthttp.ErrTimeout) {
		return fmt.Sprintf("timeout of %dms exceeded", timeout.Milliseconds())
	}
	return err.Error()
}

func describeValidation(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, ", ")
}
