package tasklist

import (
	"time"

	domain "github.com/example/tasks-app/domain/task"
)

// NoDescription replaces a missing description in the table.
const NoDescription = "No description"

// DefaultStatusClass is used for status codes outside the known set.
const DefaultStatusClass = "status-default"

// dateLayout renders pt-BR short dates: dd/mm/yyyy, HH:MM.
const dateLayout = "02/01/2006, 15:04"

// serverLayouts are tried in order when parsing timestamps from the tasks API.
var serverLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// StatusLabel maps a server status code to its display label.
// Unknown codes are returned unchanged.
func StatusLabel(code string) string {
	switch domain.StatusCode(code) {
	case domain.CodeToDo:
		return "To Do"
	case domain.CodeDoing:
		return "Doing"
	case domain.CodeDone:
		return "Done"
	default:
		return code
	}
}

// StatusClass maps a server status code to its badge CSS class.
func StatusClass(code string) string {
	switch domain.StatusCode(code) {
	case domain.CodeToDo:
		return "status-todo"
	case domain.CodeDoing:
		return "status-doing"
	case domain.CodeDone:
		return "status-done"
	default:
		return DefaultStatusClass
	}
}

// FormatDate renders value as dd/mm/yyyy, HH:MM in loc.
// Timestamps without a zone are read as loc-local. Unparseable values are returned unchanged.
func FormatDate(value string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range serverLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc).Format(dateLayout)
		}
	}
	return value
}

// DescriptionOrPlaceholder returns the description, or NoDescription when it is missing or empty.
func DescriptionOrPlaceholder(description *string) (string, bool) {
	if description == nil || *description == "" {
		return NoDescription, false
	}
	return *description, true
}
