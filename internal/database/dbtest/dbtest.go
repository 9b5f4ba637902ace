// Package dbtest provides a throwaway SQLite catalog database and fixtures
// for tests in other packages.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrlokans/locallibrary/internal/database"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// New creates a migrated SQLite database in the test's temp dir and closes
// it when the test finishes.
func New(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.NewSQLiteDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// CreateAuthor inserts an author directly.
func CreateAuthor(t *testing.T, db *database.Database, first, last string) *entities.Author {
	t.Helper()
	author := &entities.Author{FirstName: first, LastName: last}
	require.NoError(t, db.DB.Create(author).Error)
	return author
}

// CreateBook inserts a book, optionally attributed to author.
func CreateBook(t *testing.T, db *database.Database, title string, author *entities.Author) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, ISBN: "9780000000000"}
	if author != nil {
		book.AuthorID = &author.ID
	}
	require.NoError(t, db.DB.Create(book).Error)
	return book
}

// CreateInstance inserts a copy of book with the given status and due date.
func CreateInstance(t *testing.T, db *database.Database, book *entities.Book, status entities.LoanStatus, dueBack *entities.Date) *entities.BookInstance {
	t.Helper()
	instance := &entities.BookInstance{Imprint: "Test Imprint", Status: status, DueBack: dueBack}
	if book != nil {
		instance.BookID = &book.ID
	}
	require.NoError(t, db.DB.Create(instance).Error)
	return instance
}

// CreateUser inserts a user with the given role.
func CreateUser(t *testing.T, db *database.Database, username string, role entities.UserRole) *entities.User {
	t.Helper()
	user := &entities.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, db.DB.Create(user).Error)
	return user
}

// Lend marks instance as on loan to user until due.
func Lend(t *testing.T, db *database.Database, instance *entities.BookInstance, user *entities.User, due entities.Date) {
	t.Helper()
	require.NoError(t, db.DB.Model(instance).Updates(map[string]any{
		"status":      entities.LoanStatusOnLoan,
		"borrower_id": user.ID,
		"due_back":    due,
	}).Error)
}
