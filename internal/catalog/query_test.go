package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/locallibrary/internal/database"
	"github.com/mrlokans/locallibrary/internal/database/authors"
	"github.com/mrlokans/locallibrary/internal/database/books"
	"github.com/mrlokans/locallibrary/internal/database/dbtest"
	"github.com/mrlokans/locallibrary/internal/database/instances"
	"github.com/mrlokans/locallibrary/internal/database/taxonomy"
	"github.com/mrlokans/locallibrary/internal/entities"
)

func setupQueries(t *testing.T, opts Options) (*Queries, *database.Database) {
	t.Helper()
	db := dbtest.New(t)
	q := NewQueries(
		authors.NewRepository(db.DB),
		books.NewRepository(db.DB),
		instances.NewRepository(db.DB),
		taxonomy.NewRepository(db.DB),
		opts,
	)
	return q, db
}

func TestQueries_Counts(t *testing.T) {
	q, db := setupQueries(t, Options{})
	ctx := context.Background()

	author := dbtest.CreateAuthor(t, db, "Jane", "Austen")
	book := dbtest.CreateBook(t, db, "Emma", author)
	dbtest.CreateBook(t, db, "Persuasion", author)

	statuses := []entities.LoanStatus{
		entities.LoanStatusAvailable,
		entities.LoanStatusAvailable,
		entities.LoanStatusOnLoan,
		entities.LoanStatusMaintenance,
		entities.LoanStatusReserved,
		entities.LoanStatusAvailable,
	}
	for _, s := range statuses {
		dbtest.CreateInstance(t, db, book, s, nil)
	}

	counts, err := q.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Books)
	assert.Equal(t, int64(6), counts.Instances)
	assert.Equal(t, int64(3), counts.InstancesAvailable)
	assert.Equal(t, int64(1), counts.Authors)
	assert.Positive(t, counts.Genres)

	available, err := q.CountAvailableInstances(ctx)
	require.NoError(t, err)
	var direct int64
	require.NoError(t, db.DB.Model(&entities.BookInstance{}).Where("status = ?", "a").Count(&direct).Error)
	assert.Equal(t, direct, available)
}

func TestQueries_CountsOnEmptyCatalog(t *testing.T) {
	q, _ := setupQueries(t, Options{})

	counts, err := q.Counts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts.Books)
	assert.Zero(t, counts.Instances)
	assert.Zero(t, counts.InstancesAvailable)
	assert.Zero(t, counts.Authors)
}

func TestQueries_ListBooksPagination(t *testing.T) {
	q, db := setupQueries(t, Options{PageSize: 2})
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		dbtest.CreateBook(t, db, fmt.Sprintf("Book %02d", i), nil)
	}

	first, err := q.ListBooks(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, first.Items, 2)
	assert.Equal(t, "Book 01", first.Items[0].Title)
	assert.Equal(t, 3, first.NumPages())
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())
	assert.True(t, first.IsPaginated())

	last, err := q.ListBooks(ctx, 3, 0)
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
	assert.Equal(t, "Book 05", last.Items[0].Title)
	assert.False(t, last.HasNext())
	assert.Equal(t, 2, last.PreviousNumber())

	again, err := q.ListBooks(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, first.Items[0].ID, again.Items[0].ID, "re-querying yields a fresh identical page")

	clamped, err := q.ListBooks(ctx, -4, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, clamped.Number)

	_, err = q.ListBooks(ctx, 4, 0)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	wide, err := q.ListBooks(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, wide.Items, 5)
}

func TestQueries_ListAuthorsEmptyFirstPage(t *testing.T) {
	q, _ := setupQueries(t, Options{})

	page, err := q.ListAuthors(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.NumPages())
	assert.False(t, page.IsPaginated())
}

func TestQueries_ListAuthorsOrdering(t *testing.T) {
	q, db := setupQueries(t, Options{})

	dbtest.CreateAuthor(t, db, "Zadie", "Smith")
	dbtest.CreateAuthor(t, db, "Albert", "Camus")

	page, err := q.ListAuthors(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Albert, Camus", page.Items[0].String())
}

func TestQueries_SearchBooks(t *testing.T) {
	q, db := setupQueries(t, Options{})

	dbtest.CreateBook(t, db, "The Hobbit", nil)
	dbtest.CreateBook(t, db, "The Two Towers", nil)
	dbtest.CreateBook(t, db, "Dracula", nil)

	page, err := q.SearchBooks(context.Background(), "the", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestQueries_ListBorrowedByUser(t *testing.T) {
	q, db := setupQueries(t, Options{})
	ctx := context.Background()

	reader := dbtest.CreateUser(t, db, "reader", entities.UserRolePatron)
	other := dbtest.CreateUser(t, db, "other", entities.UserRolePatron)
	book := dbtest.CreateBook(t, db, "Middlemarch", nil)

	later := dbtest.CreateInstance(t, db, book, entities.LoanStatusAvailable, nil)
	sooner := dbtest.CreateInstance(t, db, book, entities.LoanStatusAvailable, nil)
	theirs := dbtest.CreateInstance(t, db, book, entities.LoanStatusAvailable, nil)
	dbtest.Lend(t, db, later, reader, entities.NewDate(2030, time.August, 1))
	dbtest.Lend(t, db, sooner, reader, entities.NewDate(2030, time.July, 1))
	dbtest.Lend(t, db, theirs, other, entities.NewDate(2030, time.June, 1))

	mine, err := q.ListBorrowedByUser(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, sooner.ID, mine[0].ID)
	assert.Equal(t, later.ID, mine[1].ID)

	all, err := q.ListAllBorrowed(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, theirs.ID, all[0].ID)
}

func TestQueries_PageBorrowedByUser(t *testing.T) {
	q, db := setupQueries(t, Options{PageSize: 2})
	ctx := context.Background()

	reader := dbtest.CreateUser(t, db, "reader", entities.UserRolePatron)
	book := dbtest.CreateBook(t, db, "Cranford", nil)
	for day := 3; day >= 1; day-- {
		bi := dbtest.CreateInstance(t, db, book, entities.LoanStatusAvailable, nil)
		dbtest.Lend(t, db, bi, reader, entities.NewDate(2030, time.May, day))
	}

	first, err := q.PageBorrowedByUser(ctx, reader.ID, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), first.Total)
	assert.Equal(t, 2, first.NumPages())
	require.Len(t, first.Items, 2)
	assert.Equal(t, "2030-05-01", first.Items[0].DueBack.String())

	second, err := q.PageBorrowedByUser(ctx, reader.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "2030-05-03", second.Items[0].DueBack.String())

	_, err = q.PageBorrowedByUser(ctx, reader.ID, 3, 0)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	none, err := q.PageBorrowedByUser(ctx, 9999, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, none.Items)
}

func TestQueries_Vocabulary(t *testing.T) {
	q, _ := setupQueries(t, Options{})
	ctx := context.Background()

	genres, err := q.Genres(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Fantasy", "Fiction", "Non-fiction", "Poetry", "Science Fiction"}, names)

	languages, err := q.Languages(ctx)
	require.NoError(t, err)
	assert.Len(t, languages, 4)
}

func TestQueries_ListOverdueUsesClock(t *testing.T) {
	clockDay := entities.NewDate(2030, time.July, 2)
	q, db := setupQueries(t, Options{Clock: fixedClock(clockDay)})

	reader := dbtest.CreateUser(t, db, "reader", entities.UserRolePatron)
	book := dbtest.CreateBook(t, db, "Middlemarch", nil)
	late := dbtest.CreateInstance(t, db, book, entities.LoanStatusAvailable, nil)
	onTime := dbtest.CreateInstance(t, db, book, entities.LoanStatusAvailable, nil)
	dbtest.Lend(t, db, late, reader, clockDay.AddDays(-1))
	dbtest.Lend(t, db, onTime, reader, clockDay)

	overdue, err := q.ListOverdue(context.Background())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)
	assert.True(t, q.IsOverdue(&overdue[0]))

	fresh, err := q.GetInstance(context.Background(), onTime.ID)
	require.NoError(t, err)
	assert.False(t, q.IsOverdue(fresh))
}

func TestQueries_GetDetailNotFound(t *testing.T) {
	q, _ := setupQueries(t, Options{})

	_, err := q.GetAuthor(context.Background(), 77)
	assert.ErrorIs(t, err, entities.ErrNotFound)
	_, err = q.GetBook(context.Background(), 77)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestPage_NumPages(t *testing.T) {
	assert.Equal(t, 1, (&Page[int]{Total: 0, Size: 10}).NumPages())
	assert.Equal(t, 1, (&Page[int]{Total: 10, Size: 10}).NumPages())
	assert.Equal(t, 2, (&Page[int]{Total: 11, Size: 10}).NumPages())
}
