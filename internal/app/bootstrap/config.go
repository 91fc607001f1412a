package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string

	KafkaTopicDomain    string
	KafkaTopicAnalytics string
	KafkaTopicDLQ       string

	MaxDBConns int

	OutboxPollInterval time.Duration
	OutboxBatchSize    int

	LeaderboardCacheTTL time.Duration
	LeaderboardWindow   time.Duration
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL         string   `yaml:"postgres_url"`
		RedisURL            string   `yaml:"redis_url"`
		KafkaBrokers        []string `yaml:"kafka_brokers"`
		KafkaTopicDomain    string   `yaml:"kafka_topic_domain"`
		KafkaTopicAnalytics string   `yaml:"kafka_topic_analytics"`
		KafkaTopicDLQ       string   `yaml:"kafka_topic_dlq"`
	} `yaml:"dependencies"`
	Pipeline struct {
		OutboxPollSeconds       int `yaml:"outbox_poll_seconds"`
		OutboxBatchSize         int `yaml:"outbox_batch_size"`
		LeaderboardCacheSeconds int `yaml:"leaderboard_cache_seconds"`
		LeaderboardWindowHours  int `yaml:"leaderboard_window_hours"`
	} `yaml:"pipeline"`
}

// LoadConfig merges built-in defaults, the optional YAML file, and
// environment overrides, in that order. Postgres, Redis, and Kafka are all
// optional; the runtime falls back to in-process adapters when they are
// absent.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:           "pipeline-service",
		HTTPPort:            8080,
		GRPCPort:            9090,
		MaxDBConns:          20,
		KafkaTopicDomain:    "pipeline.domain.events",
		KafkaTopicAnalytics: "pipeline.analytics.events",
		KafkaTopicDLQ:       "pipeline.events.dlq",
		OutboxPollInterval:  2 * time.Second,
		OutboxBatchSize:     100,
		LeaderboardCacheTTL: 60 * time.Second,
		LeaderboardWindow:   30 * 24 * time.Hour,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Dependencies.KafkaTopicDomain != "" {
			cfg.KafkaTopicDomain = f.Dependencies.KafkaTopicDomain
		}
		if f.Dependencies.KafkaTopicAnalytics != "" {
			cfg.KafkaTopicAnalytics = f.Dependencies.KafkaTopicAnalytics
		}
		if f.Dependencies.KafkaTopicDLQ != "" {
			cfg.KafkaTopicDLQ = f.Dependencies.KafkaTopicDLQ
		}
		if f.Pipeline.OutboxPollSeconds > 0 {
			cfg.OutboxPollInterval = time.Duration(f.Pipeline.OutboxPollSeconds) * time.Second
		}
		if f.Pipeline.OutboxBatchSize > 0 {
			cfg.OutboxBatchSize = f.Pipeline.OutboxBatchSize
		}
		if f.Pipeline.LeaderboardCacheSeconds > 0 {
			cfg.LeaderboardCacheTTL = time.Duration(f.Pipeline.LeaderboardCacheSeconds) * time.Second
		}
		if f.Pipeline.LeaderboardWindowHours > 0 {
			cfg.LeaderboardWindow = time.Duration(f.Pipeline.LeaderboardWindowHours) * time.Hour
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopicDomain = envOrDefault("KAFKA_TOPIC_DOMAIN", cfg.KafkaTopicDomain)
	cfg.KafkaTopicAnalytics = envOrDefault("KAFKA_TOPIC_ANALYTICS", cfg.KafkaTopicAnalytics)
	cfg.KafkaTopicDLQ = envOrDefault("KAFKA_TOPIC_DLQ", cfg.KafkaTopicDLQ)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = envInt("DB_MAX_CONNS", cfg.MaxDBConns)
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.LeaderboardCacheTTL = time.Duration(envInt("LEADERBOARD_CACHE_SECONDS", int(cfg.LeaderboardCacheTTL.Seconds()))) * time.Second
	cfg.LeaderboardWindow = time.Duration(envInt("LEADERBOARD_WINDOW_HOURS", int(cfg.LeaderboardWindow.Hours()))) * time.Hour

	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
