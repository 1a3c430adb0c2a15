package tasklist

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	domain "github.com/example/tasks-app/domain/task"
	"github.com/example/tasks-app/modules/tasksapi"
)

// Messages shown by the list.
const (
	MsgLoading      = "Loading tasks..."
	MsgEmpty        = "📝 No tasks yet. Create your first task above!"
	MsgFetchFailed  = "Failed to fetch tasks"
	headingTemplate = "Tasks (%d)"
)

// TaskLister fetches the full task collection.
type TaskLister interface {
	GetAllTasks(ctx context.Context) ([]domain.Task, error)
}

// Option configures a List.
type Option func(*List)

// WithLocation sets the zone dates are displayed in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(l *List) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithStaleDiscard controls whether a response is dropped when a fetch for a
// newer trigger has already started. Enabled by default.
func WithStaleDiscard(enabled bool) Option {
	return func(l *List) {
		l.discardStale = enabled
	}
}

// List holds the fetched tasks and the fetch status.
type List struct {
	mu           sync.Mutex
	lister       TaskLister
	tasks        []domain.Task
	loading      bool
	err          string
	newest       int64
	fetched      bool
	discardStale bool
	loc          *time.Location

	// started counts fetches; appliedSeq is the count at the start of the
	// last applied one. changed is closed and replaced on every apply.
	started    uint64
	appliedSeq uint64
	changed    chan struct{}
}

// NewList creates a list in its initial loading state.
func NewList(lister TaskLister, opts ...Option) *List {
	l := &List{
		lister:       lister,
		tasks:        []domain.Task{},
		loading:      true,
		discardStale: true,
		loc:          time.UTC,
		changed:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetLister sets the TaskLister used by Fetch.
func (l *List) SetLister(lister TaskLister) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lister = lister
}

// Location returns the display zone.
func (l *List) Location() *time.Location {
	return l.loc
}

// Fetch replaces the tasks with the server's collection.
// trigger identifies the refresh that caused the fetch; it reports whether
// the outcome was applied to the list.
func (l *List) Fetch(ctx context.Context, trigger int64) bool {
	l.mu.Lock()
	if l.discardStale && l.fetched && trigger < l.newest {
		l.mu.Unlock()
		return false
	}
	l.fetched = true
	l.newest = trigger
	l.loading = true
	l.err = ""
	l.started++
	seq := l.started
	lister := l.lister
	l.mu.Unlock()

	var (
		tasks []domain.Task
		err   error
	)
	if lister == nil {
		err = ErrTasksAPINotSet
	} else {
		tasks, err = lister.GetAllTasks(ctx)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.discardStale && trigger < l.newest {
		return false
	}
	if err != nil {
		l.err = tasksapi.ErrorMessage(err, MsgFetchFailed)
	} else {
		l.tasks = slices.Clone(tasks)
		if l.tasks == nil {
			l.tasks = []domain.Task{}
		}
	}
	l.loading = false
	l.appliedSeq = seq
	close(l.changed)
	l.changed = make(chan struct{})
	return true
}

// Mark returns a position in the fetch sequence for WaitFor.
func (l *List) Mark() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}

// WaitFor blocks until the list shows the task with the given id, or until a
// fetch started after mark has failed. It returns ctx.Err() when neither
// happens before ctx is done.
func (l *List) WaitFor(ctx context.Context, id int64, mark uint64) error {
	for {
		l.mu.Lock()
		done := !l.loading && (l.hasTaskLocked(id) || (l.err != "" && l.appliedSeq > mark))
		changed := l.changed
		l.mu.Unlock()
		if done {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *List) hasTaskLocked(id int64) bool {
	return slices.ContainsFunc(l.tasks, func(t domain.Task) bool { return t.ID == id })
}

// Tasks returns a copy of the current tasks.
func (l *List) Tasks() []domain.Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.tasks)
}

// ViewKind is the rendering state of the list.
type ViewKind string

const (
	ViewLoading ViewKind = "loading"
	ViewError   ViewKind = "error"
	ViewEmpty   ViewKind = "empty"
	ViewTable   ViewKind = "table"
)

// Row is one formatted table row.
type Row struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	HasDescription bool   `json:"has_description"`
	StatusLabel    string `json:"status_label"`
	StatusClass    string `json:"status_class"`
	Created        string `json:"created"`
}

// View is what the list renders. Message is set for every kind but the table;
// Heading and Rows only for the table.
type View struct {
	Kind    ViewKind `json:"kind"`
	Message string   `json:"message,omitempty"`
	Heading string   `json:"heading,omitempty"`
	Rows    []Row    `json:"rows,omitempty"`
}

// View evaluates loading, error, empty and table in that order.
func (l *List) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.loading:
		return View{Kind: ViewLoading, Message: MsgLoading}
	case l.err != "":
		return View{Kind: ViewError, Message: l.err}
	case len(l.tasks) == 0:
		return View{Kind: ViewEmpty, Message: MsgEmpty}
	}

	rows := make([]Row, 0, len(l.tasks))
	for _, t := range l.tasks {
		description, has := DescriptionOrPlaceholder(t.Description)
		rows = append(rows, Row{
			ID:             t.ID,
			Title:          t.Title,
			Description:    description,
			HasDescription: has,
			StatusLabel:    StatusLabel(t.Status),
			StatusClass:    StatusClass(t.Status),
			Created:        FormatDate(t.CreatedAt, l.loc),
		})
	}
	return View{
		Kind:    ViewTable,
		Heading: fmt.Sprintf(headingTemplate, len(l.tasks)),
		Rows:    rows,
	}
}
