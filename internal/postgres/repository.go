package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AyoAlfonso/motion-ai/internal/domain"
)

// TaskRepository abstracts all database access for tasks. It is the
// durable task store the planner reads its input set from.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps a pgxpool with the TaskRepository interface.
func NewRepository(pool *pgxpool.Pool) TaskRepository {
	return &repository{pool: pool}
}

// NewPool creates a pgxpool and verifies connectivity.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

func (r *repository) Create(ctx context.Context, task *domain.Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks
			(id, title, duration_minutes, importance, priority, deadline, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		task.ID, task.Title, task.DurationMinutes,
		string(task.Importance), string(task.Priority), task.Deadline,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task %s: %w", task.ID, err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $1, duration_minutes = $2, importance = $3,
		    priority = $4, deadline = $5, updated_at = $6
		WHERE id = $7
	`,
		task.Title, task.DurationMinutes, string(task.Importance),
		string(task.Priority), task.Deadline, task.UpdatedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", task.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.TaskNotFoundError{TaskID: task.ID}
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.TaskNotFoundError{TaskID: id}
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, duration_minutes, importance, priority, deadline, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`, id)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.TaskNotFoundError{TaskID: id}
		}
		return nil, err
	}
	return task, nil
}

// List returns the full task set. Ordering is irrelevant to the planner —
// it re-ranks on every run — but created_at keeps listings readable.
func (r *repository) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, duration_minutes, importance, priority, deadline, created_at, updated_at
		FROM tasks
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// scanTask reads a task row from any pgx row type.
func scanTask(row interface {
	Scan(...any) error
}) (*domain.Task, error) {
	var task domain.Task
	var importance, priority string
	err := row.Scan(
		&task.ID, &task.Title, &task.DurationMinutes,
		&importance, &priority, &task.Deadline,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	task.Importance = domain.Importance(importance)
	task.Priority = domain.Priority(priority)
	return &task, nil
}
