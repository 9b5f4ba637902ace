package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication, every request acts as a local librarian
	AuthModeLocal AuthMode = "local" // Local user database with sessions (default)
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Auth
		Catalog
		Audit
		Tasks
		Overdue
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver   string // "sqlite" (default) or "postgres"
		Path     string // SQLite file path
		DSN      string // Postgres connection string
		LogLevel string // gorm logger level: silent, error, warn, info
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Catalog struct {
		PageSize          int
		LoanPeriodDays    int  // Due date offset when lending a copy
		RenewalPeriodDays int  // Proposed renewal offset (default: 21 days)
		MaxRenewalDays    int  // 0 disables the renewal window check
		StrictTransitions bool // Enforce the standard loan status transition table
	}
	Audit struct {
		RetentionDays int    // Days to keep audit events (default: 90)
		ArchiveDir    string // Write expired events here before deleting them; empty disables
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Overdue struct {
		SweepEnabled  bool
		SweepSchedule string // Cron format: "0 7 * * *" = daily at 07:00
	}
)

// loadEnvFile reads KEY=VALUE pairs from path into the process environment.
// Variables already set in the environment win.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("WARNING: could not load %s: %v", path, err)
		return
	}
	log.Printf("Loaded environment from %s", path)
}

func NewConfig() *Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	loadEnvFile(envFile)

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_driver", DriverSQLite)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_log_level", "warn")
	v.SetDefault("templates_path", "") // Built-in templates unless set
	v.SetDefault("static_path", "./static")

	// Auth defaults
	v.SetDefault("auth_mode", "local")
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Catalog defaults
	v.SetDefault("catalog_page_size", DefaultPageSize)
	v.SetDefault("catalog_loan_period_days", DefaultLoanPeriodDays)
	v.SetDefault("catalog_renewal_period_days", DefaultRenewalPeriodDays)
	v.SetDefault("catalog_max_renewal_days", 0)
	v.SetDefault("catalog_strict_transitions", false)

	v.SetDefault("audit_retention_days", DefaultAuditRetentionDays)
	v.SetDefault("audit_archive_dir", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("overdue_sweep_enabled", true)
	v.SetDefault("overdue_sweep_schedule", "0 7 * * *") // Daily at 07:00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:   v.GetString("DATABASE_DRIVER"),
			Path:     v.GetString("DATABASE_PATH"),
			DSN:      v.GetString("DATABASE_DSN"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Catalog: Catalog{
			PageSize:          v.GetInt("CATALOG_PAGE_SIZE"),
			LoanPeriodDays:    v.GetInt("CATALOG_LOAN_PERIOD_DAYS"),
			RenewalPeriodDays: v.GetInt("CATALOG_RENEWAL_PERIOD_DAYS"),
			MaxRenewalDays:    v.GetInt("CATALOG_MAX_RENEWAL_DAYS"),
			StrictTransitions: v.GetBool("CATALOG_STRICT_TRANSITIONS"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
			ArchiveDir:    v.GetString("AUDIT_ARCHIVE_DIR"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Overdue: Overdue{
			SweepEnabled:  v.GetBool("OVERDUE_SWEEP_ENABLED"),
			SweepSchedule: v.GetString("OVERDUE_SWEEP_SCHEDULE"),
		},
	}
}
