package http

import (
	"github.com/mrlokans/locallibrary/internal/auth"
	"github.com/mrlokans/locallibrary/internal/config"
	"github.com/mrlokans/locallibrary/internal/database"
)

// RouterConfig holds all dependencies needed to create the HTTP router.
// Optional fields left nil disable the routes that need them.
type RouterConfig struct {
	// Catalog services
	Queries   CatalogReader
	Lifecycle LoanManager
	Renewals  Renewer
	Authors   AuthorWriter

	// Audit trail
	AuthorAuditor AuthorAuditor
	AuditReader   AuditReader

	// Background work; nil when the task queue is disabled
	TaskQueue TaskQueue
	// RetentionDays is passed to audit cleanup tasks started from the API
	RetentionDays int
	// Schedule is nil when the overdue sweep is not on a timer
	Schedule SweepSchedule

	// Health checks
	Database *database.Database
	Version  string

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthConfig     config.Auth
	AuthEvents     auth.EventLogger

	// Security
	CSRFSecret    []byte
	SecureCookies bool

	// UI paths; an empty or missing TemplatesPath uses the built-in templates
	TemplatesPath string
	StaticPath    string
}
