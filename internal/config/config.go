// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer file and environment on top via Load.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the metrics listen address, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// StoreDriver selects the word store backend: memory, sqlite3, postgres.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the database connection string for sql backends.
	StoreDSN string `koanf:"store_dsn"`

	// RedisAddr enables the Redis deduplication guard when set.
	RedisAddr string `koanf:"redis_addr"`

	// QueueSize bounds the in-memory review queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of recording workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeWindowMinutes sets the review suppression window.
	DedupeWindowMinutes int `koanf:"dedupe_window_minutes"`

	// DedupeShardCount configures the in-memory guard's shards.
	DedupeShardCount int `koanf:"dedupe_shard_count"`

	// HistoryLimit bounds the per-record module history.
	HistoryLimit int `koanf:"history_limit"`

	// CacheTTLSeconds sets how long known-word snapshots stay valid.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// CacheMaxEntries bounds the number of cached snapshots.
	CacheMaxEntries int64 `koanf:"cache_max_entries"`

	// MaxDueLimit caps the size of one due-words query.
	MaxDueLimit int `koanf:"max_due_limit"`

	// Promotion thresholds: repetitions and interval a word needs before
	// its status is lifted.
	KnownMinRepetitions     int `koanf:"known_min_repetitions"`
	KnownMinIntervalDays    int `koanf:"known_min_interval_days"`
	MasteredMinRepetitions  int `koanf:"mastered_min_repetitions"`
	MasteredMinIntervalDays int `koanf:"mastered_min_interval_days"`

	// Stage boundaries on the known-word count.
	StageDevelopingAt int `koanf:"stage_developing_at"`
	StageProficientAt int `koanf:"stage_proficient_at"`

	// DigestIntervalMinutes sets the due-review sweep cadence. Zero
	// disables the digest.
	DigestIntervalMinutes int `koanf:"digest_interval_minutes"`

	// DigestDueLimit caps due words per learner in one digest.
	DigestDueLimit int `koanf:"digest_due_limit"`

	// SlowResponseMs maps module names to the response time beyond which
	// a correct answer is rated hard instead of easy.
	SlowResponseMs map[string]int `koanf:"slow_response_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		MetricsAddr:             ":9090",
		StoreDriver:             "memory",
		QueueSize:               100_000,
		WorkerCount:             runtime.NumCPU() * 4,
		DedupeWindowMinutes:     120,
		DedupeShardCount:        16,
		HistoryLimit:            20,
		CacheTTLSeconds:         300,
		CacheMaxEntries:         10_000,
		MaxDueLimit:             100,
		KnownMinRepetitions:     2,
		KnownMinIntervalDays:    7,
		MasteredMinRepetitions:  3,
		MasteredMinIntervalDays: 14,
		StageDevelopingAt:       50,
		StageProficientAt:       300,
		DigestIntervalMinutes:   60,
		DigestDueLimit:          20,
		SlowResponseMs: map[string]int{
			"flashcards": 8000,
			"cloze":      15000,
		},
	}
}
