package taxonomy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/locallibrary/internal/database/dbtest"
	"github.com/mrlokans/locallibrary/internal/entities"
)

func TestRepository_SeededVocabulary(t *testing.T) {
	db := dbtest.New(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	genres, err := repo.ListGenres(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, genres)
	assert.Equal(t, "Fantasy", genres[0].Name)

	languages, err := repo.ListLanguages(ctx)
	require.NoError(t, err)
	assert.Equal(t, "English", languages[0].Name)

	fiction, err := repo.GenreByName(ctx, "Fiction")
	require.NoError(t, err)
	assert.Equal(t, "Fiction", fiction.String())

	_, err = repo.LanguageByName(ctx, "Klingon")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestRepository_CreateGenre(t *testing.T) {
	db := dbtest.New(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	before, err := repo.CountGenres(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.CreateGenre(ctx, &entities.Genre{Name: "Horror"}))
	after, err := repo.CountGenres(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	err = repo.CreateGenre(ctx, &entities.Genre{Name: "  "})
	verr, ok := entities.AsValidationError(err)
	require.True(t, ok)
	assert.True(t, verr.Has("name"))
}
