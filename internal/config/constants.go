package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the SQLite catalog database
	DefaultDatabasePath = "./locallibrary.db"

	// DefaultEnvFile is loaded (if present) before reading the environment
	DefaultEnvFile = ".env"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Loan defaults
const (
	// DefaultRenewalPeriodDays is how far ahead the renewal form proposes a new due date.
	DefaultRenewalPeriodDays = 21

	// DefaultLoanPeriodDays is the due date offset used when lending a copy.
	DefaultLoanPeriodDays = 21
)

// DefaultPageSize is the number of rows per catalog list page.
const DefaultPageSize = 10

// DefaultAuditRetentionDays is how long audit events are kept before cleanup.
const DefaultAuditRetentionDays = 90
