package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mrlokans/locallibrary/internal/entities"
)

// Counts are the headline numbers on the home page.
type Counts struct {
	Books              int64 `json:"num_books"`
	Instances          int64 `json:"num_instances"`
	InstancesAvailable int64 `json:"num_instances_available"`
	Authors            int64 `json:"num_authors"`
	Genres             int64 `json:"num_genres"`
}

// Page is one window of an ordered list. Every call re-queries the store.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Number int   `json:"page"`
	Size   int   `json:"page_size"`
	Total  int64 `json:"total"`
}

// NumPages is at least 1 so an empty list still renders a first page.
func (p *Page[T]) NumPages() int {
	if p.Total == 0 || p.Size <= 0 {
		return 1
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

func (p *Page[T]) HasNext() bool       { return p.Number < p.NumPages() }
func (p *Page[T]) HasPrevious() bool   { return p.Number > 1 }
func (p *Page[T]) NextNumber() int     { return p.Number + 1 }
func (p *Page[T]) PreviousNumber() int { return p.Number - 1 }

// IsPaginated reports whether the list spans more than one page.
func (p *Page[T]) IsPaginated() bool { return p.NumPages() > 1 }

// paginate counts, bounds-checks the page number and fetches the window.
// Pages below 1 are treated as 1. A page past the end is ErrNotFound.
func paginate[T any](
	ctx context.Context,
	number, size int,
	count func(context.Context) (int64, error),
	fetch func(ctx context.Context, limit, offset int) ([]T, error),
) (*Page[T], error) {
	if number < 1 {
		number = 1
	}
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	page := &Page[T]{Number: number, Size: size, Total: total}
	if number > page.NumPages() {
		return nil, fmt.Errorf("page %d: %w", number, entities.ErrNotFound)
	}
	items, err := fetch(ctx, size, (number-1)*size)
	if err != nil {
		return nil, err
	}
	page.Items = items
	return page, nil
}

// Queries answers the read-only catalog views.
type Queries struct {
	authors   AuthorStore
	books     BookStore
	instances InstanceStore
	taxonomy  TaxonomyStore
	opts      Options
}

func NewQueries(authors AuthorStore, books BookStore, instances InstanceStore, taxonomy TaxonomyStore, opts Options) *Queries {
	return &Queries{
		authors:   authors,
		books:     books,
		instances: instances,
		taxonomy:  taxonomy,
		opts:      opts.withDefaults(),
	}
}

// PageSize is the configured default window size.
func (q *Queries) PageSize() int {
	return q.opts.PageSize
}

func (q *Queries) CountBooks(ctx context.Context) (int64, error) {
	return q.books.Count(ctx)
}

func (q *Queries) CountBookInstances(ctx context.Context) (int64, error) {
	return q.instances.Count(ctx)
}

// CountAvailableInstances counts copies whose status is Available.
func (q *Queries) CountAvailableInstances(ctx context.Context) (int64, error) {
	return q.instances.CountByStatus(ctx, entities.LoanStatusAvailable)
}

func (q *Queries) CountAuthors(ctx context.Context) (int64, error) {
	return q.authors.Count(ctx)
}

func (q *Queries) CountGenres(ctx context.Context) (int64, error) {
	return q.taxonomy.CountGenres(ctx)
}

// Counts gathers every home page number.
func (q *Queries) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	var err error
	if c.Books, err = q.CountBooks(ctx); err != nil {
		return Counts{}, fmt.Errorf("count books: %w", err)
	}
	if c.Instances, err = q.CountBookInstances(ctx); err != nil {
		return Counts{}, fmt.Errorf("count instances: %w", err)
	}
	if c.InstancesAvailable, err = q.CountAvailableInstances(ctx); err != nil {
		return Counts{}, fmt.Errorf("count available instances: %w", err)
	}
	if c.Authors, err = q.CountAuthors(ctx); err != nil {
		return Counts{}, fmt.Errorf("count authors: %w", err)
	}
	if c.Genres, err = q.CountGenres(ctx); err != nil {
		return Counts{}, fmt.Errorf("count genres: %w", err)
	}
	return c, nil
}

// ListAuthors returns a page of authors ordered by first then last name.
// A pageSize of zero or less uses the configured size.
func (q *Queries) ListAuthors(ctx context.Context, page, pageSize int) (*Page[entities.Author], error) {
	return paginate(ctx, page, q.size(pageSize), q.authors.Count, q.authors.List)
}

// ListBooks returns a page of books ordered by title.
func (q *Queries) ListBooks(ctx context.Context, page, pageSize int) (*Page[entities.Book], error) {
	return paginate(ctx, page, q.size(pageSize), q.books.Count, q.books.List)
}

// SearchBooks returns a page of books whose title contains term.
func (q *Queries) SearchBooks(ctx context.Context, term string, page, pageSize int) (*Page[entities.Book], error) {
	count := func(ctx context.Context) (int64, error) {
		return q.books.CountTitleContaining(ctx, term)
	}
	fetch := func(ctx context.Context, limit, offset int) ([]entities.Book, error) {
		return q.books.SearchByTitle(ctx, term, limit, offset)
	}
	return paginate(ctx, page, q.size(pageSize), count, fetch)
}

// ListBorrowedByUser returns the user's current loans, soonest due first.
func (q *Queries) ListBorrowedByUser(ctx context.Context, userID uint) ([]entities.BookInstance, error) {
	return q.instances.ListBorrowedBy(ctx, userID, 0, 0)
}

// PageBorrowedByUser returns one page of the user's current loans, soonest
// due first.
func (q *Queries) PageBorrowedByUser(ctx context.Context, userID uint, page, pageSize int) (*Page[entities.BookInstance], error) {
	count := func(ctx context.Context) (int64, error) {
		return q.instances.CountBorrowedBy(ctx, userID)
	}
	fetch := func(ctx context.Context, limit, offset int) ([]entities.BookInstance, error) {
		return q.instances.ListBorrowedBy(ctx, userID, limit, offset)
	}
	return paginate(ctx, page, q.size(pageSize), count, fetch)
}

// ListAllBorrowed returns every copy on loan, soonest due first.
func (q *Queries) ListAllBorrowed(ctx context.Context) ([]entities.BookInstance, error) {
	return q.instances.ListByStatus(ctx, entities.LoanStatusOnLoan, 0, 0)
}

// ListOverdue returns loans whose due date has passed.
func (q *Queries) ListOverdue(ctx context.Context) ([]entities.BookInstance, error) {
	return q.instances.ListOverdue(ctx, q.Today())
}

// Genres lists the genre vocabulary by name.
func (q *Queries) Genres(ctx context.Context) ([]entities.Genre, error) {
	return q.taxonomy.ListGenres(ctx)
}

// Languages lists the language vocabulary by name.
func (q *Queries) Languages(ctx context.Context) ([]entities.Language, error) {
	return q.taxonomy.ListLanguages(ctx)
}

func (q *Queries) GetAuthor(ctx context.Context, id uint) (*entities.Author, error) {
	return q.authors.GetByID(ctx, id)
}

func (q *Queries) GetBook(ctx context.Context, id uint) (*entities.Book, error) {
	return q.books.GetByID(ctx, id)
}

func (q *Queries) GetInstance(ctx context.Context, id uuid.UUID) (*entities.BookInstance, error) {
	return q.instances.GetByID(ctx, id)
}

// Today is the query layer's notion of the current day.
func (q *Queries) Today() entities.Date {
	return q.opts.Clock()
}

// IsOverdue evaluates a copy against the query layer's clock.
func (q *Queries) IsOverdue(instance *entities.BookInstance) bool {
	return instance.IsOverdue(q.Today())
}

func (q *Queries) size(pageSize int) int {
	if pageSize <= 0 {
		return q.opts.PageSize
	}
	return pageSize
}
