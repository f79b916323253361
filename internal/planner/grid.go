package planner

import (
	"fmt"

	"github.com/AyoAlfonso/motion-ai/internal/domain"
)

// Default working-day grid: 9:00–17:00 in half-hour slots, 16 slots/day.
const (
	DefaultStartHour   = 9
	DefaultEndHour     = 17
	DefaultSlotMinutes = 30
	DefaultMaxDays     = 365
)

// Grid returns the ordered slot labels for one working day with the
// default half-hour slot length: "9:00", "9:30", ..., up to (not
// including) endHour. Hours are unpadded.
func Grid(startHour, endHour int) ([]string, error) {
	return gridLabels(startHour, endHour, DefaultSlotMinutes)
}

func gridLabels(startHour, endHour, slotMinutes int) ([]string, error) {
	if endHour <= startHour {
		return nil, &domain.ConfigurationError{
			Reason: fmt.Sprintf("end_hour (%d) must be after start_hour (%d)", endHour, startHour),
		}
	}
	if slotMinutes < 1 || slotMinutes > 60 || 60%slotMinutes != 0 {
		return nil, &domain.ConfigurationError{
			Reason: fmt.Sprintf("slot_minutes (%d) must divide an hour", slotMinutes),
		}
	}

	labels := make([]string, 0, (endHour-startHour)*60/slotMinutes)
	for m := startHour * 60; m < endHour*60; m += slotMinutes {
		labels = append(labels, fmt.Sprintf("%d:%02d", m/60, m%60))
	}
	return labels, nil
}
