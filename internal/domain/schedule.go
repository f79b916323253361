package domain

import "sort"

// DaySchedule maps a slot label ("9:30") to the task occupying it. A task
// spanning N slots appears under all N consecutive labels.
type DaySchedule map[string]Task

// Schedule maps a calendar-date key ("2026-08-23") to that day's slot
// assignments. It is a derived view: rebuilt from scratch on every change
// to the task set, never updated incrementally.
type Schedule map[string]DaySchedule

// Dates returns the schedule's date keys in ascending order.
func (s Schedule) Dates() []string {
	dates := make([]string, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// At returns the task occupying the given slot, if any.
func (s Schedule) At(date, slot string) (Task, bool) {
	task, ok := s[date][slot]
	return task, ok
}

// TaskCount returns the number of distinct tasks placed on the schedule.
func (s Schedule) TaskCount() int {
	seen := make(map[string]struct{})
	for _, day := range s {
		for _, task := range day {
			seen[task.ID] = struct{}{}
		}
	}
	return len(seen)
}

// SlotCount returns the total number of occupied slots across all days.
func (s Schedule) SlotCount() int {
	n := 0
	for _, day := range s {
		n += len(day)
	}
	return n
}
