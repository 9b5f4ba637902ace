// Package database provides the data access layer for the catalog.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, genre/language seeding
//	├── authors/         # Author CRUD
//	├── books/           # Book CRUD with genre and language links
//	├── instances/       # Physical copies and loan state
//	├── taxonomy/        # Genres and languages
//	├── users/           # Accounts and permission grants
//	├── audit/           # Audit trail
//	└── dbtest/          # Temp-file SQLite database and fixtures for tests
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	authorsRepo := authors.NewRepository(db.DB)
//	instancesRepo := instances.NewRepository(db.DB)
//
//	author, err := authorsRepo.GetByID(ctx, 7)
//	loans, err := instancesRepo.ListBorrowedBy(ctx, userID, 10, 0)
//
// Repositories map gorm.ErrRecordNotFound to entities.ErrNotFound and run
// entity validation before every write, returning *entities.ValidationError.
//
// # Drivers
//
// SQLite is the default and is opened with foreign keys enforced. Postgres is
// selected with DATABASE_DRIVER=postgres and DATABASE_DSN. Both honour the
// same schema, including "due_back ASC NULLS FIRST" ordering.
//
// # Deletion
//
// Deleting an author clears author_id on their books and deleting a book
// clears book_id on its copies. This happens inside the repository
// transaction, so it does not depend on the driver enforcing ON DELETE SET NULL.
package database
