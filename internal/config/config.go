// Package config loads the engine's environment-driven configuration.
// Configuration loading and CLI wiring sit outside the core scoring
// pipeline, but every runnable binary still needs to boot the core
// from the environment — this package is ambient infrastructure, built
// around envconfig and godotenv.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every environment-driven setting the engine needs.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Durable volume. Every persistence path must resolve under this
	// directory; a path escaping it is a fatal startup error, never a
	// request-time error.
	VolumeMount string `envconfig:"VOLUME_MOUNT" required:"true"`

	// HTTP surface.
	ServerPort  int `envconfig:"SERVER_PORT" default:"8080"`
	MetricsPort int `envconfig:"METRICS_PORT" default:"9090"`

	// Request budget: the wall-clock ceiling one best-bets request gets
	// before prefetch and scoring must return with whatever data arrived.
	RequestBudgetSeconds  float64 `envconfig:"REQUEST_BUDGET_SECONDS" default:"45"`
	ProviderTimeoutSeconds float64 `envconfig:"PROVIDER_TIMEOUT_SECONDS" default:"2.0"`
	PrefetchPoolSize       int     `envconfig:"PREFETCH_POOL_SIZE" default:"16"`

	// Redis-backed shared provider cache. Optional — absence degrades
	// to an in-memory cache rather than failing startup.
	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Scheduler crons (ET), overridable per-deployment.
	CronGrade          string `envconfig:"CRON_GRADE" default:"0 6 * * *"`
	CronTrapEval       string `envconfig:"CRON_TRAP_EVAL" default:"15 6 * * *"`
	CronAudit          string `envconfig:"CRON_AUDIT" default:"20 6 * * *"`
	CronLineSnapshot   string `envconfig:"CRON_LINE_SNAPSHOT" default:"*/30 * * * *"`
	CronSeasonExtreme  string `envconfig:"CRON_SEASON_EXTREME" default:"0 5 * * *"`
	CronTeamRetrain    string `envconfig:"CRON_TEAM_RETRAIN" default:"0 7 * * *"`
	CronLSTMRetrain    string `envconfig:"CRON_LSTM_RETRAIN" default:"0 4 * * 0"`

	// Demo data is only ever served when both the environment and the
	// request explicitly ask for it.
	AllowDemoData bool `envconfig:"ALLOW_DEMO_DATA" default:"false"`

	EnableScheduler bool `envconfig:"ENABLE_SCHEDULER" default:"true"`
}

// Load reads a .env file (ignoring its absence) then binds the
// environment into a Config, validating it before returning.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// MustLoad loads configuration or exits the process. Used from main()
// where fail-fast is correct: a misconfigured volume mount must never
// let the process start serving requests it cannot durably persist.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// Validate enforces the invariants Load cannot check via struct tags
// alone, chiefly that VolumeMount resolves to a real, writable
// directory. Any attempt to write elsewhere is a fatal error at
// startup, never discovered mid-request.
func (c *Config) Validate() error {
	if c.VolumeMount == "" {
		return fmt.Errorf("VOLUME_MOUNT is required")
	}
	abs, err := filepath.Abs(c.VolumeMount)
	if err != nil {
		return fmt.Errorf("VOLUME_MOUNT %q is not a usable path: %w", c.VolumeMount, err)
	}
	c.VolumeMount = abs

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(abs, 0o755); mkErr != nil {
				return fmt.Errorf("VOLUME_MOUNT %q does not exist and could not be created: %w", abs, mkErr)
			}
		} else {
			return fmt.Errorf("VOLUME_MOUNT %q is not accessible: %w", abs, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("VOLUME_MOUNT %q is not a directory", abs)
	}

	probe := filepath.Join(abs, ".write-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("VOLUME_MOUNT %q is not writable: %w", abs, err)
	}
	_ = os.Remove(probe)

	if c.RequestBudgetSeconds <= 0 {
		return fmt.Errorf("REQUEST_BUDGET_SECONDS must be positive")
	}
	if c.ProviderTimeoutSeconds <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// RequestBudget returns the configured per-request deadline.
func (c *Config) RequestBudget() time.Duration {
	return time.Duration(c.RequestBudgetSeconds * float64(time.Second))
}

// ProviderTimeout returns the default per-provider call timeout.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds * float64(time.Second))
}

// PrefetchBudget returns the pre-fetch phase's deadline: at most half
// the overall request budget.
func (c *Config) PrefetchBudget() time.Duration {
	return c.RequestBudget() / 2
}

// IsDevelopment reports whether AppEnv is "development".
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

// PathUnder resolves a relative persistence path under VolumeMount and
// guarantees the result stays within it, even if a caller passes a
// path containing "..".
func (c *Config) PathUnder(rel string) (string, error) {
	full := filepath.Join(c.VolumeMount, rel)
	cleanRoot := filepath.Clean(c.VolumeMount)
	cleanFull := filepath.Clean(full)
	if cleanFull != cleanRoot && !isWithin(cleanRoot, cleanFull) {
		return "", fmt.Errorf("path %q escapes VOLUME_MOUNT %q", rel, c.VolumeMount)
	}
	return cleanFull, nil
}

func isWithin(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if len(rel) >= 2 && rel[:2] == ".." {
		return false
	}
	return true
}
