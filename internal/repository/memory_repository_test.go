package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory_back_end/internal/models"
)

func newTestRepo() *memoryProductRepository {
	r := NewMemoryProductRepository().(*memoryProductRepository)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		base = base.Add(time.Minute)
		return base
	}
	return r
}

func sample(name, sku string, cat models.Category) *models.Product {
	return &models.Product{
		Name:            name,
		SKU:             sku,
		Supplier:        "Acme",
		Category:        cat,
		QuantityInStock: 5,
		Price:           9.99,
		Icon:            "book",
	}
}

func TestMemoryRepository_CreateAndFind(t *testing.T) {
	ctx := context.TODO()
	repo := newTestRepo()

	first, err := repo.Create(ctx, sample("Go in Action", "BK-1", models.CategoryBooks))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	_, err = repo.Create(ctx, sample("Robot Kit", "TY-1", models.CategoryToys))
	require.NoError(t, err)
	_, err = repo.Create(ctx, sample("Desk Lamp", "HD-1", models.CategoryHomeDecor))
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		all, err := repo.Find(ctx, models.ProductFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Desk Lamp", all[0].Name)
		assert.Equal(t, "Go in Action", all[2].Name)
	})

	t.Run("search and categories are conjunctive", func(t *testing.T) {
		res, err := repo.Find(ctx, models.ProductFilter{Search: "KIT", Categories: []models.Category{models.CategoryToys}})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "Robot Kit", res[0].Name)

		res, err = repo.Find(ctx, models.ProductFilter{Search: "kit", Categories: []models.Category{models.CategoryBooks}})
		require.NoError(t, err)
		assert.Empty(t, res)
	})
}

func TestMemoryRepository_Duplicates(t *testing.T) {
	ctx := context.TODO()
	repo := newTestRepo()

	_, err := repo.Create(ctx, sample("Chair", "CH-1", models.CategoryFurniture))
	require.NoError(t, err)

	_, err = repo.Create(ctx, sample("Chair", "CH-2", models.CategoryFurniture))
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "name", dup.Field)

	_, err = repo.Create(ctx, sample("Stool", "CH-1", models.CategoryFurniture))
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "sku", dup.Field)

	all, _ := repo.Find(ctx, models.ProductFilter{})
	assert.Len(t, all, 1)
}

func TestMemoryRepository_Update(t *testing.T) {
	ctx := context.TODO()
	repo := newTestRepo()

	a, _ := repo.Create(ctx, sample("Chair", "CH-1", models.CategoryFurniture))
	b, _ := repo.Create(ctx, sample("Table", "TB-1", models.CategoryFurniture))

	price := 49.5
	updated, err := repo.Update(ctx, a.ID, models.ProductUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 49.5, updated.Price)
	assert.Equal(t, "Chair", updated.Name)
	assert.True(t, updated.UpdatedAt.After(a.UpdatedAt))

	again, err := repo.Update(ctx, a.ID, models.ProductUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, updated.Price, again.Price)

	other, _ := repo.GetByID(ctx, b.ID)
	assert.Equal(t, *b, *other)

	name := "Table"
	_, err = repo.Update(ctx, a.ID, models.ProductUpdate{Name: &name})
	assert.True(t, IsDuplicate(err))

	_, err = repo.Update(ctx, "missing", models.ProductUpdate{Price: &price})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryRepository_Delete(t *testing.T) {
	ctx := context.TODO()
	repo := newTestRepo()

	p, _ := repo.Create(ctx, sample("Chair", "CH-1", models.CategoryFurniture))

	deleted, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
