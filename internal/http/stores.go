package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/locallibrary/internal/catalog"
	dbaudit "github.com/mrlokans/locallibrary/internal/database/audit"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// CatalogReader serves the public catalog pages. *catalog.Queries satisfies it.
type CatalogReader interface {
	Counts(ctx context.Context) (catalog.Counts, error)
	ListBooks(ctx context.Context, page, pageSize int) (*catalog.Page[entities.Book], error)
	SearchBooks(ctx context.Context, term string, page, pageSize int) (*catalog.Page[entities.Book], error)
	ListAuthors(ctx context.Context, page, pageSize int) (*catalog.Page[entities.Author], error)
	GetBook(ctx context.Context, id uint) (*entities.Book, error)
	GetAuthor(ctx context.Context, id uint) (*entities.Author, error)
	GetInstance(ctx context.Context, id uuid.UUID) (*entities.BookInstance, error)
	ListBorrowedByUser(ctx context.Context, userID uint) ([]entities.BookInstance, error)
	PageBorrowedByUser(ctx context.Context, userID uint, page, pageSize int) (*catalog.Page[entities.BookInstance], error)
	ListAllBorrowed(ctx context.Context) ([]entities.BookInstance, error)
	ListOverdue(ctx context.Context) ([]entities.BookInstance, error)
	Genres(ctx context.Context) ([]entities.Genre, error)
	Languages(ctx context.Context) ([]entities.Language, error)
	PageSize() int
	Today() entities.Date
}

// LoanManager changes loan state on behalf of staff. *catalog.Lifecycle satisfies it.
type LoanManager interface {
	SetStatus(ctx context.Context, actor *entities.User, id uuid.UUID, status entities.LoanStatus) (*entities.BookInstance, error)
	Lend(ctx context.Context, actor *entities.User, id uuid.UUID, borrowerID uint, due *entities.Date) (*entities.BookInstance, error)
	MarkReturned(ctx context.Context, actor *entities.User, id uuid.UUID) (*entities.BookInstance, error)
	Statuses() []entities.LoanStatus
}

// Renewer drives the renewal form. *catalog.RenewalService satisfies it.
type Renewer interface {
	Prepare(ctx context.Context, principal *entities.User, id uuid.UUID) (*catalog.Renewal, error)
	Submit(ctx context.Context, principal *entities.User, id uuid.UUID, raw string) (*catalog.Renewal, error)
}

// AuthorWriter edits authors. *authors.Repository satisfies it.
type AuthorWriter interface {
	Create(ctx context.Context, author *entities.Author) error
	GetByID(ctx context.Context, id uint) (*entities.Author, error)
	Update(ctx context.Context, author *entities.Author) error
	Delete(ctx context.Context, id uint) error
}

// AuthorAuditor records author edits. *audit.Service satisfies it.
type AuthorAuditor interface {
	LogAuthorChange(ctx context.Context, userID uint, action string, author *entities.Author)
}

// AuditReader lists recorded audit events. *audit.Service satisfies it.
type AuditReader interface {
	GetEvents(ctx context.Context, filter dbaudit.EventFilter, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// TaskQueue enqueues background work and reports its progress.
// *tasks.Client satisfies it.
type TaskQueue interface {
	Enqueue(ctx context.Context, tasks ...backlite.Task) ([]string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// SweepSchedule reports the cron timer behind the overdue sweep.
// *scheduler.OverdueScheduler satisfies it.
type SweepSchedule interface {
	IsRunning() bool
	GetNextRunTime() *time.Time
}
