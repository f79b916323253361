package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AyoAlfonso/motion-ai/internal/domain"
)

const scheduleTTL = 24 * time.Hour

const (
	scheduleKey = "schedule:current"
	planDateKey = "schedule:plan_date"
)

// ScheduleCache holds the most recently computed schedule for fast reads.
// Postgres remains the durable copy; the cache may expire or be evicted
// at any time.
type ScheduleCache interface {
	Set(ctx context.Context, planDate domain.Date, schedule domain.Schedule) error
	Get(ctx context.Context) (domain.Schedule, domain.Date, error)
}

type scheduleCache struct {
	client *redis.Client
}

// NewScheduleCache creates a Redis-backed ScheduleCache.
func NewScheduleCache(client *redis.Client) ScheduleCache {
	return &scheduleCache{client: client}
}

// NewClient creates and returns a new Redis client.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
		PoolSize:     10,
	})
}

func (c *scheduleCache) Set(ctx context.Context, planDate domain.Date, schedule domain.Schedule) error {
	data, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, scheduleKey, data, scheduleTTL)
	pipe.Set(ctx, planDateKey, planDate.String(), scheduleTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set schedule: %w", err)
	}
	return nil
}

func (c *scheduleCache) Get(ctx context.Context) (domain.Schedule, domain.Date, error) {
	data, err := c.client.Get(ctx, scheduleKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.Date{}, &domain.ScheduleNotFoundError{}
		}
		return nil, domain.Date{}, fmt.Errorf("redis get schedule: %w", err)
	}

	var schedule domain.Schedule
	if err := json.Unmarshal(data, &schedule); err != nil {
		return nil, domain.Date{}, fmt.Errorf("unmarshal schedule: %w", err)
	}

	var planDate domain.Date
	if raw, err := c.client.Get(ctx, planDateKey).Result(); err == nil {
		if parsed, perr := domain.ParseDate(raw); perr == nil {
			planDate = parsed
		}
	}
	return schedule, planDate, nil
}
