package domain

import "fmt"

// TaskNotFoundError is returned when a task ID does not exist.
type TaskNotFoundError struct {
	TaskID string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.TaskID)
}

// ScheduleNotFoundError is returned when no schedule has been computed yet.
type ScheduleNotFoundError struct{}

func (e *ScheduleNotFoundError) Error() string {
	return "no schedule has been computed"
}

// ValidationError is returned when a task violates an invariant the
// planner assumes (empty title, non-positive duration, unknown enum value).
type ValidationError struct {
	TaskID string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.TaskID == "" {
		return fmt.Sprintf("invalid task: field %q %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid task %s: field %q %s", e.TaskID, e.Field, e.Reason)
}

// UnschedulableTaskError is returned when a task cannot be placed: either
// it needs more slots than one day's grid holds, or the day-advancement
// scan exhausted its look-ahead window.
type UnschedulableTaskError struct {
	TaskID      string
	Title       string
	SlotsNeeded int
	SlotsPerDay int
	MaxDays     int
}

func (e *UnschedulableTaskError) Error() string {
	return fmt.Sprintf("task %s (%q) cannot be scheduled: needs %d slots, grid has %d per day, look-ahead %d days",
		e.TaskID, e.Title, e.SlotsNeeded, e.SlotsPerDay, e.MaxDays)
}

// ConfigurationError is returned for an unusable slot grid configuration.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid planner configuration: " + e.Reason
}
