package rebuilder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AyoAlfonso/motion-ai/internal/domain"
	"github.com/AyoAlfonso/motion-ai/internal/kafka"
	"github.com/AyoAlfonso/motion-ai/internal/planner"
	"github.com/AyoAlfonso/motion-ai/internal/postgres"
	redisstore "github.com/AyoAlfonso/motion-ai/internal/redis"
	"github.com/AyoAlfonso/motion-ai/pkg/retry"
	"github.com/AyoAlfonso/motion-ai/pkg/telemetry"
)

const (
	leaderKey = "rebuilder:leader"
	leaderTTL = 30 * time.Second
)

// Clock supplies the reference date a replan anchors on. Injected so
// tests can pin "today" instead of reading the ambient clock.
type Clock func() domain.Date

// Rebuilder recomputes the schedule from scratch whenever the task set
// changes. There is no incremental update path: every run loads the full
// task set, plans it, and replaces the stored schedule wholesale.
type Rebuilder struct {
	consumer   kafka.Consumer
	producer   kafka.Producer
	tasks      postgres.TaskRepository
	schedules  postgres.ScheduleRepository
	cache      redisstore.ScheduleCache
	redis      *redis.Client
	planner    *planner.Planner
	clock      Clock
	cronExpr   string
	instanceID string
	logger     *slog.Logger
}

// Option configures a Rebuilder.
type Option func(*Rebuilder)

// WithClock overrides the reference-date source.
func WithClock(c Clock) Option { return func(r *Rebuilder) { r.clock = c } }

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option { return func(r *Rebuilder) { r.logger = l } }

// WithCron overrides the daily-replan cron expression.
func WithCron(expr string) Option { return func(r *Rebuilder) { r.cronExpr = expr } }

// NewRebuilder constructs a Rebuilder with the given dependencies.
func NewRebuilder(
	consumer kafka.Consumer,
	producer kafka.Producer,
	tasks postgres.TaskRepository,
	schedules postgres.ScheduleRepository,
	cache redisstore.ScheduleCache,
	redisClient *redis.Client,
	p *planner.Planner,
	instanceID string,
	opts ...Option,
) *Rebuilder {
	r := &Rebuilder{
		consumer:   consumer,
		producer:   producer,
		tasks:      tasks,
		schedules:  schedules,
		cache:      cache,
		redis:      redisClient,
		planner:    p,
		clock:      domain.Today,
		cronExpr:   "0 0 * * *",
		instanceID: instanceID,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run replans once, starts the daily cron replan, then consumes change
// events. Blocks until ctx is cancelled.
func (r *Rebuilder) Run(ctx context.Context) error {
	// The schedule is anchored on "today", so refresh it on startup
	// before waiting for the first change event.
	if err := r.replan(ctx, "startup"); err != nil {
		r.logger.Error("startup replan", slog.String("error", err.Error()))
	}

	go r.runCron(ctx)

	return r.consumer.Subscribe(ctx, r.handleChange)
}

// runCron replans at each cron boundary (midnight by default) so the
// schedule rolls forward to the new reference date even when no task
// changes arrive.
func (r *Rebuilder) runCron(ctx context.Context) {
	schedule, err := cron.ParseStandard(r.cronExpr)
	if err != nil {
		r.logger.Error("parse replan cron, daily replan disabled",
			slog.String("cron", r.cronExpr),
			slog.String("error", err.Error()),
		)
		return
	}

	for {
		next := schedule.Next(time.Now())
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
			if err := r.replan(ctx, "cron"); err != nil {
				r.logger.Error("cron replan", slog.String("error", err.Error()))
			}
		}
	}
}

// handleChange is the Kafka HandlerFunc for tasks.changed. Transient
// failures return an error so the offset is not committed and the event
// is re-delivered; planning failures are terminal and commit.
func (r *Rebuilder) handleChange(ctx context.Context, msg kafka.Message) error {
	var ev kafka.TaskChangedEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		r.logger.Error("malformed change event, discarding",
			slog.String("error", err.Error()),
			slog.String("raw", string(msg.Value)),
		)
		return nil
	}

	r.logger.Info("task set changed",
		slog.String("kind", ev.Kind),
		slog.String("task_id", ev.TaskID),
	)
	return r.replan(ctx, ev.Kind)
}

// replan runs one full recompute: load tasks, plan, persist, cache,
// announce. Only the leader instance replans; followers skip.
func (r *Rebuilder) replan(ctx context.Context, reason string) error {
	if !r.acquireOrRenewLeadership(ctx) {
		return nil
	}

	ctx, span := otel.Tracer("rebuilder").Start(ctx, "rebuilder.replan")
	defer span.End()
	span.SetAttributes(attribute.String("replan.reason", reason))

	start := time.Now()

	tasks, err := r.tasks.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load tasks failed")
		telemetry.ReplansTotal.WithLabelValues("error").Inc()
		return err
	}

	today := r.clock()
	schedule, err := r.planner.Plan(tasks, today)
	if err != nil {
		// Planning failures are terminal: re-delivering the event would
		// hit the same task set and fail identically. Surface and move on.
		span.RecordError(err)
		span.SetStatus(codes.Error, "plan failed")
		telemetry.ReplansTotal.WithLabelValues(planOutcome(err)).Inc()
		r.logger.Error("replan failed",
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
		return nil
	}

	persist := func() error { return r.schedules.Replace(ctx, today, schedule) }
	err = retry.Do(ctx, retry.Config{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		OnRetry: func(attempt int, err error) {
			r.logger.Warn("persist schedule retry",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
		},
	}, persist)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		telemetry.ReplansTotal.WithLabelValues("error").Inc()
		return err
	}

	// Best-effort: the cache can always be repopulated from Postgres.
	if err := r.cache.Set(ctx, today, schedule); err != nil {
		r.logger.Error("cache schedule", slog.String("error", err.Error()))
	}

	r.announce(ctx, today, schedule)

	telemetry.ReplansTotal.WithLabelValues("ok").Inc()
	telemetry.ReplanDurationSeconds.Observe(time.Since(start).Seconds())
	telemetry.ScheduleTasks.Set(float64(schedule.TaskCount()))
	telemetry.ScheduleDays.Set(float64(len(schedule)))

	r.logger.Info("schedule rebuilt",
		slog.String("reason", reason),
		slog.String("plan_date", today.String()),
		slog.Int("tasks", schedule.TaskCount()),
		slog.Int("days", len(schedule)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// announce publishes schedules.computed. The schedule is already durable
// at this point, so a publish failure is logged, not retried via
// re-delivery.
func (r *Rebuilder) announce(ctx context.Context, planDate domain.Date, schedule domain.Schedule) {
	ev := kafka.ScheduleComputedEvent{
		PlanDate:  planDate,
		Days:      len(schedule),
		TaskCount: schedule.TaskCount(),
		SlotCount: schedule.SlotCount(),
	}
	payload, _ := json.Marshal(ev)
	if err := r.producer.Publish(ctx, kafka.TopicSchedulesComputed, planDate.String(), payload); err != nil {
		r.logger.Error("publish schedules.computed", slog.String("error", err.Error()))
	}
}

// planOutcome maps a planning error to its metrics label.
func planOutcome(err error) string {
	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return "validation"
	}
	var unsched *domain.UnschedulableTaskError
	if errors.As(err, &unsched) {
		return "unschedulable"
	}
	return "error"
}

// acquireOrRenewLeadership attempts SETNX; returns true if this instance
// is the leader. With no Redis configured (offline mode) it returns true.
func (r *Rebuilder) acquireOrRenewLeadership(ctx context.Context) bool {
	if r.redis == nil {
		return true
	}

	// Attempt to become leader.
	ok, err := r.redis.SetNX(ctx, leaderKey, r.instanceID, leaderTTL).Result()
	if err != nil {
		r.logger.Error("leader election SetNX", slog.String("error", err.Error()))
		return false
	}
	if ok {
		r.logger.Info("acquired rebuilder leadership", slog.String("instance_id", r.instanceID))
		return true
	}

	// Already set — renew only if we own it (atomic Lua script avoids races).
	renewScript := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		end
		return 0
	`)
	result, err := renewScript.Run(
		ctx, r.redis,
		[]string{leaderKey},
		r.instanceID,
		leaderTTL.Milliseconds(),
	).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Error("leader renewal", slog.String("error", err.Error()))
		return false
	}
	return result == 1
}
