package tasklist

import "errors"

// ErrTasksAPINotSet is reported when the list has no tasks API to fetch from.
var ErrTasksAPINotSet = errors.New("tasks api dependency not set")
