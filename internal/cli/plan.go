package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AyoAlfonso/motion-ai/internal/domain"
	"github.com/AyoAlfonso/motion-ai/internal/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan [tasks.json]",
	Short: "Compute a schedule offline from a JSON task file",
	Long: `Read a JSON array of tasks, pack them into calendar slots, and print
the resulting schedule. No Kafka, Redis, or Postgres required.

Each task object needs: title, duration_minutes, importance, priority,
deadline (YYYY-MM-DD). An id is generated when omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().String("today", "", "reference date YYYY-MM-DD (default: today)")
	planCmd.Flags().Int("start-hour", planner.DefaultStartHour, "first schedulable hour of the day (0-23)")
	planCmd.Flags().Int("end-hour", planner.DefaultEndHour, "end of the schedulable day, exclusive (1-24)")
	planCmd.Flags().Int("slot-minutes", planner.DefaultSlotMinutes, "slot length in minutes; must divide 60")
	planCmd.Flags().Int("max-lookahead-days", planner.DefaultMaxDays, "how many days ahead a task may be placed")
	planCmd.Flags().Bool("json", false, "print the schedule as JSON instead of a table")
}

// planFileTask mirrors the API task body; the id is optional in files.
type planFileTask struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	DurationMinutes int               `json:"duration_minutes"`
	Importance      domain.Importance `json:"importance"`
	Priority        domain.Priority   `json:"priority"`
	Deadline        domain.Date       `json:"deadline"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read task file: %w", err)
	}

	var fileTasks []planFileTask
	if err := json.Unmarshal(raw, &fileTasks); err != nil {
		return fmt.Errorf("parse task file: %w", err)
	}

	tasks := make([]domain.Task, len(fileTasks))
	for i, ft := range fileTasks {
		if ft.ID == "" {
			ft.ID = uuid.New().String()
		}
		tasks[i] = domain.Task{
			ID:              ft.ID,
			Title:           ft.Title,
			DurationMinutes: ft.DurationMinutes,
			Importance:      ft.Importance,
			Priority:        ft.Priority,
			Deadline:        ft.Deadline,
		}
	}

	today := domain.Today()
	if s, _ := cmd.Flags().GetString("today"); s != "" {
		today, err = domain.ParseDate(s)
		if err != nil {
			return fmt.Errorf("parse --today: %w", err)
		}
	}

	startHour, _ := cmd.Flags().GetInt("start-hour")
	endHour, _ := cmd.Flags().GetInt("end-hour")
	slotMinutes, _ := cmd.Flags().GetInt("slot-minutes")
	maxDays, _ := cmd.Flags().GetInt("max-lookahead-days")

	p := planner.New(
		planner.WithHours(startHour, endHour),
		planner.WithSlotMinutes(slotMinutes),
		planner.WithMaxDays(maxDays),
	)

	schedule, err := p.Plan(tasks, today)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out, err := json.MarshalIndent(map[string]any{
			"plan_date": today.String(),
			"schedule":  schedule,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	grid, err := p.Grid()
	if err != nil {
		return err
	}
	printSchedule(schedule, grid)
	return nil
}

// printSchedule writes the schedule day by day in grid order, eliding
// free slots.
func printSchedule(schedule domain.Schedule, grid []string) {
	if len(schedule) == 0 {
		fmt.Println("no tasks to schedule")
		return
	}

	for _, date := range schedule.Dates() {
		fmt.Println(date)
		day := schedule[date]
		for _, slot := range grid {
			task, ok := day[slot]
			if !ok {
				continue
			}
			fmt.Printf("  %5s  %s\n", slot, task.Title)
		}
	}
}
