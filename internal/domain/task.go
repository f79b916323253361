package domain

import (
	"strings"
	"time"
)

// Importance grades how much a task matters, independent of its deadline class.
type Importance string

const (
	ImportanceASAP    Importance = "ASAP"
	ImportanceHigh    Importance = "HIGH"
	ImportanceAverage Importance = "AVERAGE"
	ImportanceLow     Importance = "LOW"
)

// Rank returns the sort rank of the importance level. Lower ranks are
// scheduled earlier. Unknown values rank negative.
func (i Importance) Rank() int {
	switch i {
	case ImportanceASAP:
		return 0
	case ImportanceHigh:
		return 1
	case ImportanceAverage:
		return 2
	case ImportanceLow:
		return 3
	default:
		return -1
	}
}

// Valid reports whether i is one of the closed set of importance levels.
func (i Importance) Valid() bool { return i.Rank() >= 0 }

// Priority is a task's deadline class. It shares the ASAP label with
// Importance but is a separate axis: priority says how binding the deadline
// is, importance says how much the task matters.
type Priority string

const (
	PriorityASAP         Priority = "ASAP"
	PriorityHardDeadline Priority = "HARD_DEADLINE"
	PrioritySoftDeadline Priority = "SOFT_DEADLINE"
	PriorityNoDeadline   Priority = "NO_DEADLINE"
)

// Rank returns the sort rank of the priority class. Lower ranks are
// scheduled earlier. Unknown values rank negative.
func (p Priority) Rank() int {
	switch p {
	case PriorityASAP:
		return 0
	case PriorityHardDeadline:
		return 1
	case PrioritySoftDeadline:
		return 2
	case PriorityNoDeadline:
		return 3
	default:
		return -1
	}
}

// Valid reports whether p is one of the closed set of priority classes.
func (p Priority) Valid() bool { return p.Rank() >= 0 }

// Task is the core domain entity: a unit of work to be placed on the
// slot grid.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration_minutes"`
	Importance      Importance `json:"importance"`
	Priority        Priority   `json:"priority"`
	Deadline        Date       `json:"deadline"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Validate checks the invariants the planner assumes. The planner itself
// never repairs a task; invalid input fails the whole planning run.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{TaskID: t.ID, Field: "title", Reason: "must not be empty"}
	}
	if t.DurationMinutes < 1 {
		return &ValidationError{TaskID: t.ID, Field: "duration_minutes", Reason: "must be at least 1"}
	}
	if !t.Importance.Valid() {
		return &ValidationError{TaskID: t.ID, Field: "importance", Reason: "unrecognized value " + string(t.Importance)}
	}
	if !t.Priority.Valid() {
		return &ValidationError{TaskID: t.ID, Field: "priority", Reason: "unrecognized value " + string(t.Priority)}
	}
	return nil
}
