package planner

import (
	"sort"

	"github.com/AyoAlfonso/motion-ai/internal/domain"
)

// Planner assigns tasks to fixed-length calendar slots using a single-pass,
// non-backtracking first-fit scan over a ranked task list. It is a pure
// function of (tasks, today): no clock reads, no storage, no side effects.
type Planner struct {
	startHour   int
	endHour     int
	slotMinutes int
	maxDays     int
}

// Option configures a Planner.
type Option func(*Planner)

// WithHours overrides the working-day grid bounds.
func WithHours(start, end int) Option {
	return func(p *Planner) { p.startHour, p.endHour = start, end }
}

// WithSlotMinutes overrides the slot length. Must divide an hour.
func WithSlotMinutes(m int) Option { return func(p *Planner) { p.slotMinutes = m } }

// WithMaxDays bounds the day-advancement scan. A task that cannot be
// placed within this window fails with UnschedulableTaskError instead of
// looping forever.
func WithMaxDays(n int) Option { return func(p *Planner) { p.maxDays = n } }

// New constructs a Planner with the default 9–17 half-hour grid and a
// 365-day look-ahead.
func New(opts ...Option) *Planner {
	p := &Planner{
		startHour:   DefaultStartHour,
		endHour:     DefaultEndHour,
		slotMinutes: DefaultSlotMinutes,
		maxDays:     DefaultMaxDays,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Grid returns the ordered slot labels for this planner's working day,
// or a ConfigurationError when the configured bounds cannot produce one.
func (p *Planner) Grid() ([]string, error) {
	return gridLabels(p.startHour, p.endHour, p.slotMinutes)
}

// cursor is the placement state threaded through the fold over the ranked
// task list. It only ever moves forward: once it passes a slot, that slot
// is never offered to a later task.
type cursor struct {
	date domain.Date
	slot int
}

// Plan computes a conflict-free schedule for the task set starting at
// today. Tasks are validated, ranked by (priority, importance, deadline),
// then each is packed into the earliest feasible run of contiguous free
// slots, spilling onto following days when the current day is full.
//
// Either a complete schedule is returned or an error; there is no partial
// result.
func (p *Planner) Plan(tasks []domain.Task, today domain.Date) (domain.Schedule, error) {
	grid, err := gridLabels(p.startHour, p.endHour, p.slotMinutes)
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return nil, err
		}
	}

	schedule := make(domain.Schedule)
	cur := cursor{date: today}
	for _, task := range Rank(tasks) {
		cur, err = p.place(schedule, grid, cur, task)
		if err != nil {
			return nil, err
		}
	}
	return schedule, nil
}

// Rank returns the tasks sorted into placement order: priority class
// first, importance second, deadline (ascending) third. The sort is
// stable, so full ties keep their input order. The input slice is not
// modified.
func Rank(tasks []domain.Task) []domain.Task {
	ranked := make([]domain.Task, len(tasks))
	copy(ranked, tasks)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		if a.Importance.Rank() != b.Importance.Rank() {
			return a.Importance.Rank() < b.Importance.Rank()
		}
		return a.Deadline.Before(b.Deadline)
	})
	return ranked
}

// place packs one task into the earliest run of consecutive free slots at
// or after cur, writing the assignment into schedule. The scan resets its
// run count on every occupied slot; it never searches backward. When the
// remainder of the day cannot fit the task the scan moves to the next
// calendar day at slot 0, up to maxDays days.
func (p *Planner) place(schedule domain.Schedule, grid []string, cur cursor, task domain.Task) (cursor, error) {
	needed := (task.DurationMinutes + p.slotMinutes - 1) / p.slotMinutes

	unschedulable := &domain.UnschedulableTaskError{
		TaskID:      task.ID,
		Title:       task.Title,
		SlotsNeeded: needed,
		SlotsPerDay: len(grid),
		MaxDays:     p.maxDays,
	}
	// No day can ever satisfy this task; fail before scanning.
	if needed > len(grid) {
		return cur, unschedulable
	}

	for day := 0; day < p.maxDays; day++ {
		key := cur.date.String()
		occupied := schedule[key]

		run := 0
		for i := cur.slot; i < len(grid); i++ {
			if _, taken := occupied[grid[i]]; taken {
				run = 0
				continue
			}
			run++
			if run < needed {
				continue
			}
			if occupied == nil {
				occupied = make(domain.DaySchedule, needed)
				schedule[key] = occupied
			}
			for j := i - needed + 1; j <= i; j++ {
				occupied[grid[j]] = task
			}
			return cursor{date: cur.date, slot: i + 1}, nil
		}

		cur = cursor{date: cur.date.Next()}
	}
	return cur, unschedulable
}
