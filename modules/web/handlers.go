package web

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gorilla/schema"

	domain "github.com/example/tasks-app/domain/task"
	"github.com/example/tasks-app/modules/taskform"
	"github.com/example/tasks-app/modules/tasklist"
)

// CreateTaskForm is the body of a form submission.
type CreateTaskForm struct {
	Title       string `schema:"title" json:"title"`
	Description string `schema:"description" json:"description"`
	Status      string `schema:"status" json:"status"`
}

// FormView is the form state plus the derived submit control.
type FormView struct {
	taskform.State
	SubmitEnabled bool   `json:"can_submit"`
	ButtonText    string `json:"button_text"`
}

// StatusOption is one entry of the status selector.
type StatusOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// PageData is everything the page template renders.
type PageData struct {
	AppName  string         `json:"app_name"`
	APIURL   string         `json:"api_url"`
	Form     FormView       `json:"form"`
	Statuses []StatusOption `json:"statuses"`
	List     tasklist.View  `json:"list"`
}

// FormSessions hands out the form of a browser session.
type FormSessions interface {
	Session(id string) *taskform.Form
}

// Handlers contains HTTP request handlers for the tasks page.
type Handlers struct {
	cfg      Config
	forms    FormSessions
	list     *tasklist.List
	sessions *session.Store
	decoder  *schema.Decoder
	logger   types.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(cfg Config, forms FormSessions, list *tasklist.List, sessions *session.Store, logger types.Logger) *Handlers {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &Handlers{
		cfg:      cfg,
		forms:    forms,
		list:     list,
		sessions: sessions,
		decoder:  decoder,
		logger:   logger,
	}
}

// sessionForm returns the form of the caller's session and refreshes its cookie.
func (h *Handlers) sessionForm(c *fiber.Ctx) (*taskform.Form, error) {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	id := sess.ID()
	if err := sess.Save(); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return h.forms.Session(id), nil
}

// Index renders the tasks page (GET /).
func (h *Handlers) Index(c *fiber.Ctx) error {
	form, err := h.sessionForm(c)
	if err != nil {
		return err
	}
	return c.Render("index", h.pageData(form))
}

// SubmitForm handles the page form (POST /tasks) and redirects back to the page.
func (h *Handlers) SubmitForm(c *fiber.Ctx) error {
	values := url.Values{}
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})

	var input CreateTaskForm
	if err := h.decoder.Decode(&input, values); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid form body",
			"details": err.Error(),
		})
	}

	form, err := h.sessionForm(c)
	if err != nil {
		return err
	}
	h.submit(c.UserContext(), form, input)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// CreateTask is the JSON variant of the form submission (POST /api/v1/tasks).
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var input CreateTaskForm
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}

	form, err := h.sessionForm(c)
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if !h.submit(c.UserContext(), form, input) {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(formView(form))
}

// State returns the page state as JSON (GET /api/v1/state).
func (h *Handlers) State(c *fiber.Ctx) error {
	form, err := h.sessionForm(c)
	if err != nil {
		return err
	}
	return c.JSON(h.pageData(form))
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"details": fiber.Map{
			"module":     "web",
			"api_url":    h.cfg.APIURL,
			"list_state": h.list.View().Kind,
		},
	})
}

// submit runs the form and, on success, waits until the list shows the new
// task so the next page render includes it.
func (h *Handlers) submit(ctx context.Context, form *taskform.Form, input CreateTaskForm) bool {
	form.SetFields(input.Title, input.Description, domain.Status(input.Status))

	mark := h.list.Mark()
	created, ok := form.Create(ctx)
	if !ok {
		h.logger.Debug("Task form rejected", "error", form.State().Error)
		return false
	}

	waitCtx, cancel := context.WithTimeout(ctx, h.cfg.RefreshWait)
	defer cancel()
	if err := h.list.WaitFor(waitCtx, created.ID, mark); err != nil {
		h.logger.Warn("Task list not refreshed before response", "taskID", created.ID, "error", err)
	}
	return true
}

func formView(form *taskform.Form) FormView {
	state := form.State()
	buttonText := "Create Task"
	if state.Loading {
		buttonText = "Creating..."
	}
	return FormView{
		State:         state,
		SubmitEnabled: state.CanSubmit(),
		ButtonText:    buttonText,
	}
}

func (h *Handlers) pageData(f *taskform.Form) PageData {
	form := formView(f)
	statuses := make([]StatusOption, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		statuses = append(statuses, StatusOption{
			Value:    string(s),
			Label:    s.Label(),
			Selected: s == form.Status,
		})
	}
	return PageData{
		AppName:  h.cfg.AppName,
		APIURL:   h.cfg.APIURL,
		Form:     form,
		Statuses: statuses,
		List:     h.list.View(),
	}
}
