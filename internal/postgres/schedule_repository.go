package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AyoAlfonso/motion-ai/internal/domain"
)

// ScheduleRepository is the persistence sink for computed schedules. The
// schedule has no history: every replan replaces the stored slots
// wholesale in one transaction.
type ScheduleRepository interface {
	Replace(ctx context.Context, planDate domain.Date, schedule domain.Schedule) error
	Latest(ctx context.Context) (domain.Schedule, domain.Date, error)
}

type scheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository wraps a pgxpool with the ScheduleRepository interface.
func NewScheduleRepository(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepository{pool: pool}
}

func (r *scheduleRepository) Replace(ctx context.Context, planDate domain.Date, schedule domain.Schedule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace schedule: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM schedule_slots`); err != nil {
		return fmt.Errorf("clear schedule: %w", err)
	}

	batch := &pgx.Batch{}
	for date, day := range schedule {
		for slot, task := range day {
			batch.Queue(`
				INSERT INTO schedule_slots
					(plan_date, day, slot, task_id, title, duration_minutes, importance, priority, deadline)
				VALUES
					($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`,
				planDate, date, slot, task.ID, task.Title, task.DurationMinutes,
				string(task.Importance), string(task.Priority), task.Deadline,
			)
		}
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert schedule slot: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close schedule batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace schedule: %w", err)
	}
	return nil
}

func (r *scheduleRepository) Latest(ctx context.Context) (domain.Schedule, domain.Date, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT plan_date, day, slot, task_id, title, duration_minutes, importance, priority, deadline
		FROM schedule_slots
	`)
	if err != nil {
		return nil, domain.Date{}, fmt.Errorf("load schedule: %w", err)
	}
	defer rows.Close()

	schedule := make(domain.Schedule)
	var planDate domain.Date
	for rows.Next() {
		var (
			day, slot            string
			task                 domain.Task
			importance, priority string
		)
		var dayDate domain.Date
		if err := rows.Scan(
			&planDate, &dayDate, &slot, &task.ID, &task.Title,
			&task.DurationMinutes, &importance, &priority, &task.Deadline,
		); err != nil {
			return nil, domain.Date{}, fmt.Errorf("scan schedule slot: %w", err)
		}
		task.Importance = domain.Importance(importance)
		task.Priority = domain.Priority(priority)
		day = dayDate.String()

		if schedule[day] == nil {
			schedule[day] = make(domain.DaySchedule)
		}
		schedule[day][slot] = task
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Date{}, err
	}
	if len(schedule) == 0 {
		return nil, domain.Date{}, &domain.ScheduleNotFoundError{}
	}
	return schedule, planDate, nil
}
