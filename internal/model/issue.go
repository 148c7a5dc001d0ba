package model

import "errors"

// Issue is one tracked problem attached to a resource.
// The JSON shape is the persisted format and must stay a plain object.
type Issue struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Status values used by the list surfaces.
const (
	StatusTodo      = "todo"
	StatusCompleted = "completed"
)

var (
	ErrNotFound      = errors.New("issue not found")
	ErrMalformed     = errors.New("malformed issue list")
	ErrUnknownStatus = errors.New("unknown status")
)

// Status reports the select value for the issue.
func (i Issue) Status() string {
	if i.Completed {
		return StatusCompleted
	}
	return StatusTodo
}

// ParseStatus maps a select value to the completed flag.
func ParseStatus(s string) (bool, error) {
	switch s {
	case StatusCompleted:
		return true, nil
	case StatusTodo:
		return false, nil
	}
	return false, ErrUnknownStatus
}

// Draft carries the editable fields of an issue. ID is nil when creating.
type Draft struct {
	ID          *int
	Title       string
	Description string
}
