package task

// Status is the input-facing status chosen when creating a task.
type Status string

const (
	StatusToDo  Status = "to-do"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// DefaultStatus is the status a new form starts with.
const DefaultStatus = StatusToDo

// Statuses lists the input statuses in display order.
var Statuses = []Status{StatusToDo, StatusDoing, StatusDone}

// Label returns the human label shown in the status selector.
func (s Status) Label() string {
	switch s {
	case StatusToDo:
		return "To Do"
	case StatusDoing:
		return "Doing"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the known input statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// StatusCode is the server-side representation of task progress.
// Codes outside the known set are kept as-is.
type StatusCode string

const (
	CodeToDo  StatusCode = "TO_DO"
	CodeDoing StatusCode = "DOING"
	CodeDone  StatusCode = "DONE"
)

// MaxTitleLength is the longest title the server accepts.
const MaxTitleLength = 255

// Task is a task record owned by the remote tasks service.
type Task struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// CreateTaskPayload is the body sent to create a task.
type CreateTaskPayload struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status" validate:"required,oneof=to-do doing done"`
}
