// Package catalog holds the library's read models and loan workflows.
//
// Three services live here, each built on small store interfaces that the
// database repositories satisfy:
//
//   - Queries: counts, paginated lists and detail lookups for the views.
//   - Lifecycle: staff-driven loan status changes (lend, return, reserve, set).
//   - Renewal: the permission-gated due-date extension form.
//
// Staff operations are guarded by the can_mark_returned capability before any
// copy is read, and return ErrForbidden when the caller lacks it.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mrlokans/locallibrary/internal/config"
	"github.com/mrlokans/locallibrary/internal/database/instances"
	"github.com/mrlokans/locallibrary/internal/entities"
)

var (
	// ErrForbidden is returned when the caller lacks the required capability.
	ErrForbidden = errors.New("forbidden")
	// ErrIllegalTransition is returned when the transition policy refuses a status change.
	ErrIllegalTransition = errors.New("illegal status transition")
)

// AuthorStore is the author persistence used by the catalog.
type AuthorStore interface {
	GetByID(ctx context.Context, id uint) (*entities.Author, error)
	List(ctx context.Context, limit, offset int) ([]entities.Author, error)
	Count(ctx context.Context) (int64, error)
}

// BookStore is the book persistence used by the catalog.
type BookStore interface {
	GetByID(ctx context.Context, id uint) (*entities.Book, error)
	List(ctx context.Context, limit, offset int) ([]entities.Book, error)
	Count(ctx context.Context) (int64, error)
	SearchByTitle(ctx context.Context, term string, limit, offset int) ([]entities.Book, error)
	CountTitleContaining(ctx context.Context, term string) (int64, error)
}

// InstanceStore is the book copy persistence used by the catalog.
type InstanceStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.BookInstance, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status entities.LoanStatus) (int64, error)
	ListByStatus(ctx context.Context, status entities.LoanStatus, limit, offset int) ([]entities.BookInstance, error)
	ListBorrowedBy(ctx context.Context, userID uint, limit, offset int) ([]entities.BookInstance, error)
	CountBorrowedBy(ctx context.Context, userID uint) (int64, error)
	ListOverdue(ctx context.Context, today entities.Date) ([]entities.BookInstance, error)
	UpdateDueBack(ctx context.Context, id uuid.UUID, dueBack entities.Date) error
	UpdateLoan(ctx context.Context, id uuid.UUID, update instances.LoanUpdate) error
}

// BorrowerStore looks up the accounts copies are lent to.
type BorrowerStore interface {
	GetByID(ctx context.Context, id uint) (*entities.User, error)
}

// TaxonomyStore reads the genre and language vocabularies.
type TaxonomyStore interface {
	CountGenres(ctx context.Context) (int64, error)
	ListGenres(ctx context.Context) ([]entities.Genre, error)
	ListLanguages(ctx context.Context) ([]entities.Language, error)
}

// Auditor records loan changes. Implementations must not fail the caller.
type Auditor interface {
	LogLoanChange(ctx context.Context, userID uint, action string, instance *entities.BookInstance, description string)
}

// Clock returns the current calendar day.
type Clock func() entities.Date

// Options configures the catalog services.
type Options struct {
	PageSize          int
	LoanPeriodDays    int
	RenewalPeriodDays int
	MaxRenewalDays    int // 0 disables the renewal window
	StrictTransitions bool
	Clock             Clock
}

// OptionsFromConfig maps the catalog config section onto Options.
func OptionsFromConfig(cfg config.Catalog) Options {
	return Options{
		PageSize:          cfg.PageSize,
		LoanPeriodDays:    cfg.LoanPeriodDays,
		RenewalPeriodDays: cfg.RenewalPeriodDays,
		MaxRenewalDays:    cfg.MaxRenewalDays,
		StrictTransitions: cfg.StrictTransitions,
	}
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = config.DefaultPageSize
	}
	if o.LoanPeriodDays <= 0 {
		o.LoanPeriodDays = config.DefaultLoanPeriodDays
	}
	if o.RenewalPeriodDays <= 0 {
		o.RenewalPeriodDays = config.DefaultRenewalPeriodDays
	}
	if o.Clock == nil {
		o.Clock = entities.Today
	}
	return o
}

func canMarkReturned(user *entities.User) bool {
	return user.HasPermission(entities.PermissionCanMarkReturned)
}

func actorID(user *entities.User) uint {
	if user == nil {
		return 0
	}
	return user.ID
}

type noopAuditor struct{}

func (noopAuditor) LogLoanChange(context.Context, uint, string, *entities.BookInstance, string) {}
