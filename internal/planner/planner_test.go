package planner

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyoAlfonso/motion-ai/internal/domain"
)

var testToday = domain.NewDate(2026, time.March, 2)

// newTask builds a valid task with the given scheduling attributes.
func newTask(id string, minutes int, prio domain.Priority, imp domain.Importance, deadline domain.Date) domain.Task {
	return domain.Task{
		ID:              id,
		Title:           "task " + id,
		DurationMinutes: minutes,
		Importance:      imp,
		Priority:        prio,
		Deadline:        deadline,
	}
}

// ── ranking ──────────────────────────────────────────────────────────────────

func TestRank_PriorityBeforeImportance(t *testing.T) {
	deadline := testToday.Next()
	tasks := []domain.Task{
		newTask("soft-asap", 30, domain.PrioritySoftDeadline, domain.ImportanceASAP, deadline),
		newTask("asap-low", 30, domain.PriorityASAP, domain.ImportanceLow, deadline),
	}

	ranked := Rank(tasks)
	assert.Equal(t, "asap-low", ranked[0].ID, "priority outranks importance")
	assert.Equal(t, "soft-asap", ranked[1].ID)
}

func TestRank_ImportanceBreaksPriorityTies(t *testing.T) {
	deadline := testToday.Next()
	tasks := []domain.Task{
		newTask("hard-low", 30, domain.PriorityHardDeadline, domain.ImportanceLow, deadline),
		newTask("hard-high", 30, domain.PriorityHardDeadline, domain.ImportanceHigh, deadline),
	}

	ranked := Rank(tasks)
	assert.Equal(t, "hard-high", ranked[0].ID)
}

func TestRank_DeadlineBreaksRemainingTies(t *testing.T) {
	tasks := []domain.Task{
		newTask("later", 30, domain.PriorityNoDeadline, domain.ImportanceAverage, domain.NewDate(2026, time.March, 20)),
		newTask("sooner", 30, domain.PriorityNoDeadline, domain.ImportanceAverage, domain.NewDate(2026, time.March, 5)),
	}

	ranked := Rank(tasks)
	assert.Equal(t, "sooner", ranked[0].ID)
}

func TestRank_StableOnFullTies(t *testing.T) {
	deadline := testToday.Next()
	tasks := []domain.Task{
		newTask("first", 30, domain.PriorityNoDeadline, domain.ImportanceAverage, deadline),
		newTask("second", 30, domain.PriorityNoDeadline, domain.ImportanceAverage, deadline),
		newTask("third", 30, domain.PriorityNoDeadline, domain.ImportanceAverage, deadline),
	}

	ranked := Rank(tasks)
	assert.Equal(t, "first", ranked[0].ID)
	assert.Equal(t, "second", ranked[1].ID)
	assert.Equal(t, "third", ranked[2].ID)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	deadline := testToday.Next()
	tasks := []domain.Task{
		newTask("b", 30, domain.PriorityNoDeadline, domain.ImportanceLow, deadline),
		newTask("a", 30, domain.PriorityASAP, domain.ImportanceASAP, deadline),
	}

	_ = Rank(tasks)
	assert.Equal(t, "b", tasks[0].ID, "input order preserved")
}

// ── placement scenarios ──────────────────────────────────────────────────────

// Scenario A: ASAP ranks first despite input order.
func TestPlan_ASAPWinsFirstSlot(t *testing.T) {
	deadline := testToday.Next()
	tasks := []domain.Task{
		newTask("routine", 30, domain.PrioritySoftDeadline, domain.ImportanceAverage, deadline),
		newTask("urgent", 30, domain.PriorityASAP, domain.ImportanceASAP, deadline),
	}

	schedule, err := New().Plan(tasks, testToday)
	require.NoError(t, err)

	day := schedule[testToday.String()]
	require.NotNil(t, day)
	assert.Equal(t, "urgent", day["9:00"].ID)
	assert.Equal(t, "routine", day["9:30"].ID)
}

// Scenario B: a 60-minute task occupies two consecutive slots, both
// mapping to the same task record.
func TestPlan_MultiSlotTask(t *testing.T) {
	tasks := []domain.Task{
		newTask("hour-long", 60, domain.PriorityHardDeadline, domain.ImportanceHigh, testToday.Next()),
	}

	schedule, err := New().Plan(tasks, testToday)
	require.NoError(t, err)

	day := schedule[testToday.String()]
	require.Len(t, day, 2)
	assert.Equal(t, "hour-long", day["9:00"].ID)
	assert.Equal(t, "hour-long", day["9:30"].ID)
}

// Scenario C: the 17th half-hour task overflows a 16-slot day onto the
// next morning.
func TestPlan_OverflowToNextDay(t *testing.T) {
	var tasks []domain.Task
	for i := 0; i < 17; i++ {
		tasks = append(tasks, newTask(fmt.Sprintf("t%02d", i), 30,
			domain.PriorityNoDeadline, domain.ImportanceAverage, testToday.Next()))
	}

	schedule, err := New().Plan(tasks, testToday)
	require.NoError(t, err)

	require.Len(t, schedule[testToday.String()], 16)
	tomorrow := schedule[testToday.Next().String()]
	require.Len(t, tomorrow, 1)
	assert.Equal(t, "t16", tomorrow["9:00"].ID)
}

// Scenario D: a task needing more slots than a day holds fails instead of
// looping over days forever.
func TestPlan_OversizedTaskUnschedulable(t *testing.T) {
	tasks := []domain.Task{
		newTask("marathon", 600, domain.PriorityASAP, domain.ImportanceASAP, testToday.Next()),
	}

	_, err := New().Plan(tasks, testToday)
	var unsched *domain.UnschedulableTaskError
	require.ErrorAs(t, err, &unsched)
	assert.Equal(t, "marathon", unsched.TaskID)
	assert.Equal(t, 20, unsched.SlotsNeeded)
	assert.Equal(t, 16, unsched.SlotsPerDay)
}

// Scenario E: empty input yields an empty schedule, not an error.
func TestPlan_EmptyTaskSet(t *testing.T) {
	schedule, err := New().Plan(nil, testToday)
	require.NoError(t, err)
	assert.Empty(t, schedule)
}

func TestPlan_CeilRoundsUpToSlotBoundary(t *testing.T) {
	tasks := []domain.Task{
		newTask("odd", 45, domain.PriorityASAP, domain.ImportanceASAP, testToday.Next()),
	}

	schedule, err := New().Plan(tasks, testToday)
	require.NoError(t, err)

	// 45 minutes rounds up to two half-hour slots.
	day := schedule[testToday.String()]
	require.Len(t, day, 2)
	assert.Equal(t, "odd", day["9:00"].ID)
	assert.Equal(t, "odd", day["9:30"].ID)
}

func TestPlan_CursorNeverBackfills(t *testing.T) {
	// A three-slot task after a one-slot task starts strictly after it,
	// even though a later one-slot task could still have fit at 9:30 had
	// the cursor been allowed to move backward.
	deadline := testToday.Next()
	tasks := []domain.Task{
		newTask("short", 30, domain.PriorityASAP, domain.ImportanceASAP, deadline),
		newTask("long", 90, domain.PriorityASAP, domain.ImportanceHigh, deadline),
		newTask("tail", 30, domain.PriorityASAP, domain.ImportanceAverage, deadline),
	}

	schedule, err := New().Plan(tasks, testToday)
	require.NoError(t, err)

	day := schedule[testToday.String()]
	assert.Equal(t, "short", day["9:00"].ID)
	assert.Equal(t, "long", day["9:30"].ID)
	assert.Equal(t, "long", day["10:00"].ID)
	assert.Equal(t, "long", day["10:30"].ID)
	assert.Equal(t, "tail", day["11:00"].ID)
}

func TestPlan_CustomHours(t *testing.T) {
	tasks := []domain.Task{
		newTask("early", 30, domain.PriorityASAP, domain.ImportanceASAP, testToday.Next()),
	}

	schedule, err := New(WithHours(7, 12)).Plan(tasks, testToday)
	require.NoError(t, err)
	assert.Equal(t, "early", schedule[testToday.String()]["7:00"].ID)
}

func TestPlan_InvalidGridConfig(t *testing.T) {
	_, err := New(WithHours(17, 9)).Plan(nil, testToday)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestPlan_InvalidTaskRejected(t *testing.T) {
	tests := []struct {
		name string
		task domain.Task
	}{
		{"empty title", domain.Task{ID: "x", DurationMinutes: 30,
			Importance: domain.ImportanceLow, Priority: domain.PriorityNoDeadline}},
		{"zero duration", newTask("x", 0, domain.PriorityNoDeadline, domain.ImportanceLow, testToday)},
		{"negative duration", newTask("x", -30, domain.PriorityNoDeadline, domain.ImportanceLow, testToday)},
		{"bad importance", domain.Task{ID: "x", Title: "t", DurationMinutes: 30,
			Importance: "CRITICAL", Priority: domain.PriorityNoDeadline}},
		{"bad priority", domain.Task{ID: "x", Title: "t", DurationMinutes: 30,
			Importance: domain.ImportanceLow, Priority: "WHENEVER"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Plan([]domain.Task{tt.task}, testToday)
			var valErr *domain.ValidationError
			require.ErrorAs(t, err, &valErr)
		})
	}
}

// ── properties ───────────────────────────────────────────────────────────────

// propertyTasks is a mixed workload exercising multi-slot runs, ties, and
// day overflow.
func propertyTasks() []domain.Task {
	var tasks []domain.Task
	prios := []domain.Priority{
		domain.PriorityNoDeadline, domain.PriorityASAP,
		domain.PrioritySoftDeadline, domain.PriorityHardDeadline,
	}
	imps := []domain.Importance{
		domain.ImportanceLow, domain.ImportanceASAP,
		domain.ImportanceAverage, domain.ImportanceHigh,
	}
	for i := 0; i < 24; i++ {
		tasks = append(tasks, newTask(
			fmt.Sprintf("p%02d", i),
			30+(i%5)*30, // 30..150 minutes
			prios[i%len(prios)],
			imps[(i/2)%len(imps)],
			domain.NewDate(2026, time.March, 3+i%7),
		))
	}
	return tasks
}

// Permutations of the same task set produce identical schedules.
func TestPlan_DeterministicUnderPermutation(t *testing.T) {
	tasks := propertyTasks()
	base, err := New().Plan(tasks, testToday)
	require.NoError(t, err)

	reversed := make([]domain.Task, len(tasks))
	for i, task := range tasks {
		reversed[len(tasks)-1-i] = task
	}
	permuted, err := New().Plan(reversed, testToday)
	require.NoError(t, err)

	// No full ties in propertyTasks, so even reversed input must land
	// every task on the same slot.
	assert.Equal(t, base, permuted)
}

// Every task appears exactly once, as one contiguous run on one date.
func TestPlan_CompletenessAndContiguity(t *testing.T) {
	tasks := propertyTasks()
	schedule, err := New().Plan(tasks, testToday)
	require.NoError(t, err)

	grid, err := Grid(DefaultStartHour, DefaultEndHour)
	require.NoError(t, err)
	index := make(map[string]int, len(grid))
	for i, label := range grid {
		index[label] = i
	}

	type run struct {
		date  string
		slots []int
	}
	placements := make(map[string]run)

	for date, day := range schedule {
		for label, task := range day {
			r := placements[task.ID]
			if r.date != "" && r.date != date {
				t.Fatalf("task %s placed on two dates: %s and %s", task.ID, r.date, date)
			}
			r.date = date
			r.slots = append(r.slots, index[label])
			placements[task.ID] = r
		}
	}

	require.Len(t, placements, len(tasks), "every task is placed")

	byID := make(map[string]domain.Task)
	for _, task := range tasks {
		byID[task.ID] = task
	}
	for id, r := range placements {
		needed := (byID[id].DurationMinutes + 29) / 30
		require.Len(t, r.slots, needed, "task %s slot count", id)

		min, max := r.slots[0], r.slots[0]
		for _, s := range r.slots {
			if s < min {
				min = s
			}
			if s > max {
				max = s
			}
		}
		assert.Equal(t, needed-1, max-min, "task %s slots are contiguous", id)
	}
}

// No slot holds more than one task — guaranteed by the map structure, so
// assert the complementary invariant: occupied slot totals match task
// durations.
func TestPlan_NoDoubleBooking(t *testing.T) {
	tasks := propertyTasks()
	schedule, err := New().Plan(tasks, testToday)
	require.NoError(t, err)

	wantSlots := 0
	for _, task := range tasks {
		wantSlots += (task.DurationMinutes + 29) / 30
	}
	assert.Equal(t, wantSlots, schedule.SlotCount())
}

// For tasks on the same date, ranking order implies slot order.
func TestPlan_MonotonicCursor(t *testing.T) {
	tasks := propertyTasks()
	schedule, err := New().Plan(tasks, testToday)
	require.NoError(t, err)

	grid, err := Grid(DefaultStartHour, DefaultEndHour)
	require.NoError(t, err)
	index := make(map[string]int, len(grid))
	for i, label := range grid {
		index[label] = i
	}

	firstSlot := func(date string, id string) (int, bool) {
		min, found := len(grid), false
		for label, task := range schedule[date] {
			if task.ID == id && index[label] < min {
				min, found = index[label], true
			}
		}
		return min, found
	}
	lastSlot := func(date string, id string) int {
		max := -1
		for label, task := range schedule[date] {
			if task.ID == id && index[label] > max {
				max = index[label]
			}
		}
		return max
	}

	ranked := Rank(tasks)
	for _, date := range schedule.Dates() {
		prevLast := -1
		for _, task := range ranked {
			first, ok := firstSlot(date, task.ID)
			if !ok {
				continue
			}
			assert.Greater(t, first, prevLast,
				"task %s on %s starts after the previous task's last slot", task.ID, date)
			prevLast = lastSlot(date, task.ID)
		}
	}
}

func TestPlan_MaxDaysBound(t *testing.T) {
	// With a 1-day window a second day is never opened, so the 17th task
	// must fail instead of spilling to tomorrow.
	var tasks []domain.Task
	for i := 0; i < 17; i++ {
		tasks = append(tasks, newTask(fmt.Sprintf("t%02d", i), 30,
			domain.PriorityNoDeadline, domain.ImportanceAverage, testToday.Next()))
	}

	_, err := New(WithMaxDays(1)).Plan(tasks, testToday)
	var unsched *domain.UnschedulableTaskError
	require.ErrorAs(t, err, &unsched)
	assert.Equal(t, 1, unsched.MaxDays)
}
