// Package authors provides database operations for catalog authors.
//
// # Usage
//
//	repo := authors.NewRepository(db)
//	author, err := repo.GetByID(ctx, 7)
package authors

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/locallibrary/internal/database"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// Repository handles author persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create validates and inserts a new author.
func (r *Repository) Create(ctx context.Context, author *entities.Author) error {
	if err := author.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(author).Error
}

// GetByID retrieves an author with their books ordered by title.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.WithContext(ctx).
		Preload("Books", func(db *gorm.DB) *gorm.DB {
			return db.Order("title ASC")
		}).
		First(&author, id).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &author, nil
}

// List returns a window of authors ordered by first name then last name.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]entities.Author, error) {
	var authors []entities.Author
	query := r.db.WithContext(ctx).Order("first_name ASC, last_name ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	err := query.Find(&authors).Error
	return authors, err
}

// Count returns the number of authors.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Author{}).Count(&count).Error
	return count, err
}

// Update validates and saves every column of an existing author.
func (r *Repository) Update(ctx context.Context, author *entities.Author) error {
	if err := author.Validate(); err != nil {
		return err
	}
	if author.ID == 0 {
		return entities.ErrNotFound
	}
	result := r.db.WithContext(ctx).Model(author).
		Select("first_name", "last_name", "date_of_birth", "date_of_death", "updated_at").
		Updates(author)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// Delete removes an author. Their books stay in the catalog without an author.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Book{}).
			Where("author_id = ?", id).
			Update("author_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.Author{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entities.ErrNotFound
		}
		return nil
	})
}
