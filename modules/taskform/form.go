package taskform

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	domain "github.com/example/tasks-app/domain/task"
	"github.com/example/tasks-app/modules/tasksapi"
)

// Messages shown by the form.
const (
	MsgTitleRequired = "Title is required"
	MsgTitleTooLong  = "Title must be 255 characters or less"
	MsgCreateFailed  = "Failed to create task"
)

// DefaultSuccessDuration is how long the success banner stays visible.
const DefaultSuccessDuration = 3000 * time.Millisecond

// TaskCreator creates tasks on the remote service.
type TaskCreator interface {
	CreateTask(ctx context.Context, payload domain.CreateTaskPayload) (*domain.Task, error)
}

// State is a snapshot of the form.
type State struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      domain.Status `json:"status"`
	Loading     bool          `json:"loading"`
	Error       string        `json:"error,omitempty"`
	Success     bool          `json:"success"`
}

// CanSubmit reports whether the submit control is enabled.
func (s State) CanSubmit() bool {
	return !s.Loading && strings.TrimSpace(s.Title) != ""
}

// Option configures a Form.
type Option func(*Form)

// WithSuccessDuration overrides DefaultSuccessDuration.
func WithSuccessDuration(d time.Duration) Option {
	return func(f *Form) {
		f.successDuration = d
	}
}

// Form holds the task creation inputs and the outcome of the last submission.
type Form struct {
	mu              sync.Mutex
	creator         TaskCreator
	state           State
	observers       []func(domain.Task)
	successDuration time.Duration
	successTimer    *time.Timer
	closed          bool
}

// NewForm creates an empty form. creator may be set later with SetCreator.
func NewForm(creator TaskCreator, opts ...Option) *Form {
	f := &Form{
		creator:         creator,
		state:           State{Status: domain.DefaultStatus},
		successDuration: DefaultSuccessDuration,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetCreator sets the TaskCreator used by Submit.
func (f *Form) SetCreator(creator TaskCreator) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creator = creator
}

// OnTaskCreated registers fn to be called once per successful creation.
func (f *Form) OnTaskCreated(fn func(domain.Task)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, fn)
}

// SetFields replaces the three inputs. An empty status keeps the current one.
func (f *Form) SetFields(title, description string, status domain.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Title = title
	f.state.Description = description
	if status != "" {
		f.state.Status = status
	}
}

// State returns a snapshot of the form.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// CanSubmit reports whether the submit control is enabled.
func (f *Form) CanSubmit() bool {
	return f.State().CanSubmit()
}

// Submit validates the inputs and creates the task.
// Failures are stored in the form state; the return value reports whether a task was created.
// A call made while another submission is in flight does nothing.
func (f *Form) Submit(ctx context.Context) bool {
	_, ok := f.Create(ctx)
	return ok
}

// Create is Submit that also returns the task the server created.
func (f *Form) Create(ctx context.Context) (domain.Task, bool) {
	f.mu.Lock()
	if f.state.Loading {
		f.mu.Unlock()
		return domain.Task{}, false
	}

	f.state.Error = ""
	f.state.Success = false
	f.stopSuccessTimerLocked()

	title := strings.TrimSpace(f.state.Title)
	if title == "" {
		f.state.Error = MsgTitleRequired
		f.mu.Unlock()
		return domain.Task{}, false
	}
	if titleLength(f.state.Title) > domain.MaxTitleLength {
		f.state.Error = MsgTitleTooLong
		f.mu.Unlock()
		return domain.Task{}, false
	}

	creator := f.creator
	if creator == nil {
		f.state.Error = ErrTasksAPINotSet.Error()
		f.mu.Unlock()
		return domain.Task{}, false
	}

	f.state.Loading = true
	payload := domain.CreateTaskPayload{
		Title:       title,
		Description: strings.TrimSpace(f.state.Description),
		Status:      f.state.Status,
	}
	f.mu.Unlock()

	created, err := creator.CreateTask(ctx, payload)

	f.mu.Lock()
	if err != nil {
		f.state.Error = tasksapi.ErrorMessage(err, MsgCreateFailed)
		f.state.Loading = false
		f.mu.Unlock()
		return domain.Task{}, false
	}

	f.state.Title = ""
	f.state.Description = ""
	f.state.Status = domain.DefaultStatus
	f.state.Success = true
	f.scheduleSuccessClearLocked()
	observers := slices.Clone(f.observers)
	f.state.Loading = false
	f.mu.Unlock()

	for _, fn := range observers {
		fn(*created)
	}
	return *created, true
}

// Close stops the pending success timer. The form stays readable.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.stopSuccessTimerLocked()
}

func (f *Form) scheduleSuccessClearLocked() {
	if f.closed {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(f.successDuration, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		// superseded by a newer submission or stopped
		if f.successTimer != timer {
			return
		}
		f.state.Success = false
		f.successTimer = nil
	})
	f.successTimer = timer
}

func (f *Form) stopSuccessTimerLocked() {
	if f.successTimer != nil {
		f.successTimer.Stop()
		f.successTimer = nil
	}
}

// titleLength counts UTF-16 code units, the unit the page's maxlength uses.
func titleLength(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
