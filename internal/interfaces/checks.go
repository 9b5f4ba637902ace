package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/locallibrary/internal/audit"
	"github.com/mrlokans/locallibrary/internal/auth"
	"github.com/mrlokans/locallibrary/internal/catalog"
	"github.com/mrlokans/locallibrary/internal/database/authors"
	"github.com/mrlokans/locallibrary/internal/database/books"
	"github.com/mrlokans/locallibrary/internal/database/instances"
	"github.com/mrlokans/locallibrary/internal/database/taxonomy"
	"github.com/mrlokans/locallibrary/internal/database/users"
	"github.com/mrlokans/locallibrary/internal/http"
	"github.com/mrlokans/locallibrary/internal/scheduler"
	"github.com/mrlokans/locallibrary/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Catalog stores
var _ catalog.AuthorStore = (*authors.Repository)(nil)
var _ catalog.BookStore = (*books.Repository)(nil)
var _ catalog.InstanceStore = (*instances.Repository)(nil)
var _ catalog.BorrowerStore = (*users.Repository)(nil)
var _ catalog.TaxonomyStore = (*taxonomy.Repository)(nil)

// Author editing
var _ http.AuthorWriter = (*authors.Repository)(nil)

// User accounts
var _ auth.UserStore = (*users.Repository)(nil)

// =============================================================================
// Catalog Services
// =============================================================================

var _ http.CatalogReader = (*catalog.Queries)(nil)
var _ http.LoanManager = (*catalog.Lifecycle)(nil)
var _ http.Renewer = (*catalog.RenewalService)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ catalog.Auditor = (*audit.Service)(nil)
var _ http.AuthorAuditor = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ auth.EventLogger = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ http.SweepSchedule = (*scheduler.OverdueScheduler)(nil)
var _ tasks.OverdueLister = (*catalog.Queries)(nil)
var _ tasks.OverdueRecorder = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
