package taskform

import "errors"

// ErrTasksAPINotSet is reported when the form has no tasks API to submit to.
var ErrTasksAPINotSet = errors.New("tasks api dependency not set")
