// Package taxonomy manages the genre and language vocabularies books are
// tagged with.
package taxonomy

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/locallibrary/internal/database"
	"github.com/mrlokans/locallibrary/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateGenre(ctx context.Context, genre *entities.Genre) error {
	if err := genre.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(genre).Error
}

func (r *Repository) CreateLanguage(ctx context.Context, language *entities.Language) error {
	if err := language.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(language).Error
}

// ListGenres returns all genres by name.
func (r *Repository) ListGenres(ctx context.Context) ([]entities.Genre, error) {
	var genres []entities.Genre
	err := r.db.WithContext(ctx).Order("name ASC").Find(&genres).Error
	return genres, err
}

// ListLanguages returns all languages by name.
func (r *Repository) ListLanguages(ctx context.Context) ([]entities.Language, error) {
	var languages []entities.Language
	err := r.db.WithContext(ctx).Order("name ASC").Find(&languages).Error
	return languages, err
}

func (r *Repository) CountGenres(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Genre{}).Count(&count).Error
	return count, err
}

// GenreByName finds a genre by exact name.
func (r *Repository) GenreByName(ctx context.Context, name string) (*entities.Genre, error) {
	var genre entities.Genre
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&genre).Error; err != nil {
		return nil, database.NotFound(err)
	}
	return &genre, nil
}

// LanguageByName finds a language by exact name.
func (r *Repository) LanguageByName(ctx context.Context, name string) (*entities.Language, error) {
	var language entities.Language
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&language).Error; err != nil {
		return nil, database.NotFound(err)
	}
	return &language, nil
}
