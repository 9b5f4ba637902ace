// Package instances provides database operations for physical book copies
// and their loan state.
//
// Every list method orders by due date ascending with undated copies first,
// so the same query yields the same order on SQLite and Postgres.
package instances

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/locallibrary/internal/database"
	"github.com/mrlokans/locallibrary/internal/entities"
)

const dueBackOrder = "due_back ASC NULLS FIRST, id ASC"

// LoanUpdate carries the loan columns written together by a lifecycle change.
type LoanUpdate struct {
	Status     entities.LoanStatus
	DueBack    *entities.Date
	BorrowerID *uint
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create validates and inserts a new copy. The id and default status are
// assigned on insert.
func (r *Repository) Create(ctx context.Context, instance *entities.BookInstance) error {
	if err := instance.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Omit("Book", "Borrower").Create(instance).Error
}

// GetByID retrieves a copy with its book and borrower.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*entities.BookInstance, error) {
	var instance entities.BookInstance
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Borrower").
		First(&instance, "id = ?", id).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &instance, nil
}

// List returns a window of all copies.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]entities.BookInstance, error) {
	return r.find(r.db.WithContext(ctx), limit, offset)
}

// Count returns the number of copies.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.BookInstance{}).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of copies in the given state.
func (r *Repository) CountByStatus(ctx context.Context, status entities.LoanStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.BookInstance{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// ListByStatus returns a window of copies in the given state.
func (r *Repository) ListByStatus(ctx context.Context, status entities.LoanStatus, limit, offset int) ([]entities.BookInstance, error) {
	return r.find(r.db.WithContext(ctx).Where("status = ?", status), limit, offset)
}

// ListBorrowedBy returns copies on loan to the given user.
func (r *Repository) ListBorrowedBy(ctx context.Context, userID uint, limit, offset int) ([]entities.BookInstance, error) {
	query := r.db.WithContext(ctx).
		Where("borrower_id = ? AND status = ?", userID, entities.LoanStatusOnLoan)
	return r.find(query, limit, offset)
}

// CountBorrowedBy counts copies on loan to the given user.
func (r *Repository) CountBorrowedBy(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.BookInstance{}).
		Where("borrower_id = ? AND status = ?", userID, entities.LoanStatusOnLoan).
		Count(&count).Error
	return count, err
}

// ListOverdue returns copies on loan whose due date is before today.
func (r *Repository) ListOverdue(ctx context.Context, today entities.Date) ([]entities.BookInstance, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND due_back IS NOT NULL AND due_back < ?", entities.LoanStatusOnLoan, today)
	return r.find(query, 0, 0)
}

// UpdateDueBack sets only the due date of a copy.
func (r *Repository) UpdateDueBack(ctx context.Context, id uuid.UUID, dueBack entities.Date) error {
	result := r.db.WithContext(ctx).Model(&entities.BookInstance{}).
		Where("id = ?", id).
		Update("due_back", dueBack)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// UpdateLoan writes status, due date and borrower in one statement.
func (r *Repository) UpdateLoan(ctx context.Context, id uuid.UUID, update LoanUpdate) error {
	if !update.Status.Valid() {
		verr := entities.NewValidationError()
		verr.Add("status", "select a valid loan status")
		return verr
	}
	var dueBack any
	if update.DueBack != nil {
		dueBack = *update.DueBack
	}
	var borrowerID any
	if update.BorrowerID != nil {
		borrowerID = *update.BorrowerID
	}
	result := r.db.WithContext(ctx).Model(&entities.BookInstance{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      update.Status,
			"due_back":    dueBack,
			"borrower_id": borrowerID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

func (r *Repository) find(query *gorm.DB, limit, offset int) ([]entities.BookInstance, error) {
	var instances []entities.BookInstance
	query = query.Preload("Book").Preload("Borrower").Order(dueBackOrder)
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	err := query.Find(&instances).Error
	return instances, err
}
