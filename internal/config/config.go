package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds typed configuration for the motion-ai binary.
type Config struct {
	LogLevel     string
	HTTPPort     string
	MetricsAddr  string
	KafkaBrokers string
	RedisAddr    string
	PostgresDSN  string

	StartHour        int
	EndHour          int
	SlotMinutes      int
	MaxLookaheadDays int
	ReplanCron       string

	RebuildRateLimit  int
	RebuildRateWindow time.Duration

	OTelEndpoint string
}

// Load reads all values from the given viper instance.
func Load(v *viper.Viper) Config {
	return Config{
		LogLevel:     v.GetString("log_level"),
		HTTPPort:     v.GetString("http_port"),
		MetricsAddr:  v.GetString("metrics_addr"),
		KafkaBrokers: v.GetString("kafka_brokers"),
		RedisAddr:    v.GetString("redis_addr"),
		PostgresDSN:  v.GetString("postgres_dsn"),

		StartHour:        v.GetInt("start_hour"),
		EndHour:          v.GetInt("end_hour"),
		SlotMinutes:      v.GetInt("slot_minutes"),
		MaxLookaheadDays: v.GetInt("max_lookahead_days"),
		ReplanCron:       v.GetString("replan_cron"),

		RebuildRateLimit:  v.GetInt("rebuild_rate_limit"),
		RebuildRateWindow: v.GetDuration("rebuild_rate_window"),

		OTelEndpoint: v.GetString("otel_endpoint"),
	}
}
