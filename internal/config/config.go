package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Service auth
	APIKey string

	// Annotation server
	NLPServerURL string
	NLPAPIKey    string

	// PMC retrieval
	FetchBaseURL string
	FetchDelay   time.Duration

	// Worker pool
	WorkerCount           int
	MaxQueueSize          int
	MaxConcurrentAnnotate int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Scoring
	ScoreTablePath string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("PMCMINER_API_KEY"),

		NLPServerURL: envOr("NLP_SERVER_URL", "http://localhost:9000"),
		NLPAPIKey:    os.Getenv("NLP_API_KEY"),

		FetchBaseURL: os.Getenv("FETCH_BASE_URL"),
		FetchDelay:   envDuration("FETCH_DELAY", 350*time.Millisecond),

		WorkerCount:           envInt("WORKER_COUNT", 4),
		MaxQueueSize:          envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentAnnotate: envInt("MAX_CONCURRENT_ANNOTATE", 5),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 33554432), // 32MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		ScoreTablePath: os.Getenv("SCORE_TABLE_PATH"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentAnnotate <= 0 {
		cfg.MaxConcurrentAnnotate = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 33554432
	}
	if cfg.FetchDelay < 0 {
		cfg.FetchDelay = 0
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("PMCMINER_API_KEY is required")
	}
	if c.NLPServerURL == "" {
		return fmt.Errorf("NLP_SERVER_URL is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
