package kafka

import "github.com/AyoAlfonso/motion-ai/internal/domain"

// Topics. tasks.changed carries task-set mutations from the API to the
// rebuilder; schedules.computed announces completed replans.
const (
	TopicTasksChanged      = "tasks.changed"
	TopicSchedulesComputed = "schedules.computed"
)

// Change kinds carried by TaskChangedEvent.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
	ChangeRebuild = "rebuild" // manual trigger, no task attached
)

// TaskChangedEvent signals that the task set changed and the schedule
// must be recomputed from scratch.
type TaskChangedEvent struct {
	Kind   string `json:"kind"`
	TaskID string `json:"task_id,omitempty"`
}

// ScheduleComputedEvent is published after every successful replan.
type ScheduleComputedEvent struct {
	PlanDate  domain.Date `json:"plan_date"`
	Days      int         `json:"days"`
	TaskCount int         `json:"task_count"`
	SlotCount int         `json:"slot_count"`
}
