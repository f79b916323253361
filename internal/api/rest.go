package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AyoAlfonso/motion-ai/internal/domain"
	"github.com/AyoAlfonso/motion-ai/internal/kafka"
	"github.com/AyoAlfonso/motion-ai/internal/postgres"
	redisstore "github.com/AyoAlfonso/motion-ai/internal/redis"
	"github.com/AyoAlfonso/motion-ai/pkg/telemetry"
)

// REST handles HTTP requests: task CRUD (the task store surface) and
// schedule reads (the presentation surface). Every task mutation emits a
// tasks.changed event; the rebuilder owns the actual recompute.
type REST struct {
	producer  kafka.Producer
	cache     redisstore.ScheduleCache
	tasks     postgres.TaskRepository
	schedules postgres.ScheduleRepository
	limiter   redisstore.RateLimiter // nil = disabled
	logger    *slog.Logger
}

// NewREST creates a new REST handler.
func NewREST(
	producer kafka.Producer,
	cache redisstore.ScheduleCache,
	tasks postgres.TaskRepository,
	schedules postgres.ScheduleRepository,
	limiter redisstore.RateLimiter,
	logger *slog.Logger,
) *REST {
	return &REST{
		producer:  producer,
		cache:     cache,
		tasks:     tasks,
		schedules: schedules,
		limiter:   limiter,
		logger:    logger,
	}
}

// TaskRequest is the JSON body for creating or updating a task.
type TaskRequest struct {
	Title           string            `json:"title"`
	DurationMinutes int               `json:"duration_minutes"`
	Importance      domain.Importance `json:"importance"`
	Priority        domain.Priority   `json:"priority"`
	Deadline        domain.Date       `json:"deadline"`
}

// ScheduleResponse is the GET /schedule response body.
type ScheduleResponse struct {
	PlanDate  string          `json:"plan_date"`
	TaskCount int             `json:"task_count"`
	Days      int             `json:"days"`
	Schedule  domain.Schedule `json:"schedule"`
}

// CreateTask handles POST /api/v1/tasks.
func (h *REST) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("api").Start(r.Context(), "api.create_task")
	defer span.End()

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now().UTC()
	task := domain.Task{
		ID:              uuid.New().String(),
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
		Importance:      req.Importance,
		Priority:        req.Priority,
		Deadline:        req.Deadline,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := task.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("task.id", task.ID),
		attribute.String("task.priority", string(task.Priority)),
	)

	if err := h.tasks.Create(ctx, &task); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		h.logger.Error("create task", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.publishChange(ctx, kafka.ChangeCreated, task.ID)
	telemetry.APITaskChanges.WithLabelValues(kafka.ChangeCreated).Inc()

	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask handles PUT /api/v1/tasks/{id}.
func (h *REST) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task := domain.Task{
		ID:              id,
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
		Importance:      req.Importance,
		Priority:        req.Priority,
		Deadline:        req.Deadline,
	}
	if err := task.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if err := h.tasks.Update(ctx, &task); err != nil {
		var notFound *domain.TaskNotFoundError
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		h.logger.Error("update task", slog.String("task_id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.publishChange(ctx, kafka.ChangeUpdated, id)
	telemetry.APITaskChanges.WithLabelValues(kafka.ChangeUpdated).Inc()

	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/v1/tasks/{id}.
func (h *REST) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	if err := h.tasks.Delete(ctx, id); err != nil {
		var notFound *domain.TaskNotFoundError
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		h.logger.Error("delete task", slog.String("task_id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.publishChange(ctx, kafka.ChangeDeleted, id)
	telemetry.APITaskChanges.WithLabelValues(kafka.ChangeDeleted).Inc()

	w.WriteHeader(http.StatusNoContent)
}

// GetTask handles GET /api/v1/tasks/{id}.
func (h *REST) GetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		var notFound *domain.TaskNotFoundError
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		h.logger.Error("get task", slog.String("task_id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to retrieve task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ListTasks handles GET /api/v1/tasks.
func (h *REST) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		h.logger.Error("list tasks", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// GetSchedule handles GET /api/v1/schedule.
func (h *REST) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Fast path: Redis.
	schedule, planDate, err := h.cache.Get(ctx)
	if err != nil {
		var notFound *domain.ScheduleNotFoundError
		if !errors.As(err, &notFound) {
			h.logger.Error("schedule cache", slog.String("error", err.Error()))
		}

		// Slow path: Postgres (cache TTL expired or Redis unavailable).
		schedule, planDate, err = h.schedules.Latest(ctx)
		if err != nil {
			if errors.As(err, &notFound) {
				writeError(w, http.StatusNotFound, "no schedule has been computed yet")
				return
			}
			h.logger.Error("load schedule", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "failed to retrieve schedule")
			return
		}
	}

	writeJSON(w, http.StatusOK, ScheduleResponse{
		PlanDate:  planDate.String(),
		TaskCount: schedule.TaskCount(),
		Days:      len(schedule),
		Schedule:  schedule,
	})
}

// RebuildSchedule handles POST /api/v1/schedule/rebuild — a manual,
// rate-limited replan trigger.
func (h *REST) RebuildSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("api").Start(r.Context(), "api.rebuild_schedule")
	defer span.End()

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(ctx, "schedule:rebuild")
		if err != nil {
			// Allow on limiter failure so Redis trouble never blocks replans.
			h.logger.Error("rate limiter", slog.String("error", err.Error()))
		} else if !allowed {
			span.SetStatus(codes.Error, "rate limited")
			telemetry.APIRebuildRateLimited.Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(h.limiter.Window().Seconds())))
			writeError(w, http.StatusTooManyRequests, "rebuild rate limit exceeded")
			return
		}
	}

	h.publishChange(ctx, kafka.ChangeRebuild, "")
	telemetry.APITaskChanges.WithLabelValues(kafka.ChangeRebuild).Inc()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "rebuild requested"})
}

// Healthz handles GET /healthz.
func (h *REST) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz handles GET /readyz — checks Redis connectivity.
func (h *REST) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, _, err := h.cache.Get(ctx); err != nil {
		var notFound *domain.ScheduleNotFoundError
		if !errors.As(err, &notFound) {
			writeError(w, http.StatusServiceUnavailable, "redis not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// publishChange emits a tasks.changed event. The mutation is already
// durable, so a publish failure is logged; the daily cron replan bounds
// the resulting staleness.
func (h *REST) publishChange(ctx context.Context, kind, taskID string) {
	payload, _ := json.Marshal(kafka.TaskChangedEvent{Kind: kind, TaskID: taskID})
	key := taskID
	if key == "" {
		key = kind
	}
	if err := h.producer.Publish(ctx, kafka.TopicTasksChanged, key, payload); err != nil {
		h.logger.Error("publish tasks.changed",
			slog.String("kind", kind),
			slog.String("task_id", taskID),
			slog.String("error", err.Error()),
		)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
