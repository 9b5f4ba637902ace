// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help contributors find
// extension points and see how the pieces are wired in entrypoint.go.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - AuthorStore, BookStore, InstanceStore, BorrowerStore, TaxonomyStore: catalog persistence
//     (internal/catalog/catalog.go), implemented by internal/database/*
//   - AuthorWriter: author editing from the web layer (internal/http/stores.go)
//   - UserStore: accounts and permission grants (internal/auth/service.go)
//
// ## Catalog Service Interfaces
//
//   - CatalogReader: counts, lists, detail lookups (internal/http/stores.go)
//   - LoanManager: staff status changes, lending, returns
//   - Renewer: the librarian renewal form
//   - TransitionPolicy: which status changes are allowed (internal/catalog/lifecycle.go)
//
// ## Audit Interfaces
//
//   - Auditor: loan changes (internal/catalog/catalog.go)
//   - AuthorAuditor, AuditReader: author edits and the audit log page
//   - EventLogger: login, logout and setup outcomes (internal/auth/handlers.go)
//
// ## Background Work Interfaces
//
//   - TaskQueue, Enqueuer: hand work to the backlite queue
//   - OverdueLister, OverdueRecorder, AuditEventCleaner: task processors
//     (internal/tasks/)
//
// # Adding a New Transition Rule
//
// To restrict status changes beyond StandardTransitions:
//
//	policy := catalog.TransitionFunc(func(from, to entities.LoanStatus) error {
//		if to == entities.LoanStatusReserved && from != entities.LoanStatusAvailable {
//			return catalog.ErrIllegalTransition
//		}
//		return nil
//	})
//	lifecycle := catalog.NewLifecycle(instanceRepo, auditService, opts).WithPolicy(policy)
//
// # Adding a New Background Task
//
// Define the task type and its processor in internal/tasks/:
//
//	type RemindBorrowersTask struct {
//		DaysAhead int `json:"days_ahead"`
//	}
//
//	func (t RemindBorrowersTask) Config() backlite.QueueConfig {
//		return queueConfig("remind_borrowers", time.Minute, 5*time.Minute, 7*24*time.Hour)
//	}
//
// Then add a Definition to internal/tasks/registry.go so the API can list and
// run it, and register the queue in entrypoint.go.
//
// # Adding a New Database Domain
//
// To add a new data domain (e.g., reservations queue), create a sub-package
// such as internal/database/reservations/ with a repository:
//
//	type Repository struct{ db *gorm.DB }
//
//	func NewRepository(db *gorm.DB) *Repository
//
// Add the entity to database.Models() so it is migrated, and add a
// compile-time check to checks.go:
//
//	var _ catalog.ReservationStore = (*reservations.Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
