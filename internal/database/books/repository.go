// Package books provides database operations for catalog titles, including
// their genre and language associations.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetByID(ctx, 123)
package books

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/locallibrary/internal/database"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create validates and inserts a book together with its genre and language links.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	if err := book.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Omit("Author", "Instances", "Genres.*", "Languages.*").
		Create(book).Error
}

// GetByID retrieves a book with author, genres, languages and copies.
// Copies are ordered by due date with undated copies first.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Genres", func(db *gorm.DB) *gorm.DB {
			return db.Order("genres.id ASC")
		}).
		Preload("Languages", func(db *gorm.DB) *gorm.DB {
			return db.Order("languages.id ASC")
		}).
		Preload("Instances", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_back ASC NULLS FIRST, id ASC")
		}).
		First(&book, id).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &book, nil
}

// List returns a window of books ordered by title, with author and genres
// loaded for list rendering.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]entities.Book, error) {
	var books []entities.Book
	query := r.listQuery(ctx).Order("title ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	err := query.Find(&books).Error
	return books, err
}

// Count returns the number of books.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// SearchByTitle performs a case-insensitive substring match on titles.
func (r *Repository) SearchByTitle(ctx context.Context, term string, limit, offset int) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	query := r.listQuery(ctx).
		Where("LOWER(title) LIKE ?", pattern).
		Order("title ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	err := query.Find(&books).Error
	return books, err
}

// CountTitleContaining counts books whose title contains term, case-insensitively.
func (r *Repository) CountTitleContaining(ctx context.Context, term string) (int64, error) {
	var count int64
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("LOWER(title) LIKE ?", pattern).
		Count(&count).Error
	return count, err
}

func (r *Repository) listQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").
		Preload("Genres", func(db *gorm.DB) *gorm.DB {
			return db.Order("genres.id ASC")
		})
}
