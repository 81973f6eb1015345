package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categoryCols = []string{"id", "name", "slug", "description", "parent_id", "created_at"}

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		fictionID := uuid.New()
		rows := sqlmock.NewRows(categoryCols).
			AddRow(fictionID.String(), "Beletrie", "fiction", "Romány", nil, time.Now()).
			AddRow(uuid.New().String(), "Vinyl", "vinyl", nil, nil, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM categories ORDER BY name ASC").WillReturnRows(rows)

		res, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, fictionID, res[0].ID)
		assert.Equal(t, "Romány", *res[0].Description)
		assert.Nil(t, res[1].Description)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM categories").WillReturnError(errors.New("db error"))

		_, err := repo.List(context.Background())
		assert.ErrorIs(t, err, ErrFailedGetCategories)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetBySlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows(categoryCols).AddRow(uuid.New().String(), "Antikvariát", "antiquarian", nil, nil, time.Now())
		mock.ExpectQuery("SELECT (.+) FROM categories WHERE slug = \\$1").
			WithArgs("antiquarian").
			WillReturnRows(rows)

		c, err := repo.GetBySlug(context.Background(), "antiquarian")
		require.NoError(t, err)
		assert.Equal(t, "Antikvariát", c.Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM categories WHERE slug").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(categoryCols))

		_, err := repo.GetBySlug(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})
}
