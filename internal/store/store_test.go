package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inventory_back_end/internal/models"
	"inventory_back_end/internal/store/mocks"
)

var errNetwork = errors.New("connection refused")

func product(id, name string, cat models.Category) models.Product {
	return models.Product{ID: id, Name: name, Supplier: "ACME", SKU: "SKU-" + id, Category: cat, QuantityInStock: 1, Price: 1}
}

func seeded(api ProductAPI, products ...models.Product) *Store {
	s := New(api)
	s.SetProducts(products)
	return s
}

func TestLoadProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces cache", func(t *testing.T) {
		api := new(mocks.MockProductAPI)
		fresh := []models.Product{product("1", "Dune", models.CategoryBooks)}
		api.On("ListProducts", ctx, models.ProductFilter{}).Return(fresh, nil).Once()

		s := seeded(api, product("old", "Old", models.CategoryToys))
		res := s.LoadProducts(ctx)

		assert.True(t, res.Success)
		st := s.Snapshot()
		assert.Equal(t, fresh, st.Products)
		assert.False(t, st.Loading)
	})

	t.Run("failure keeps cache", func(t *testing.T) {
		api := new(mocks.MockProductAPI)
		api.On("ListProducts", ctx, models.ProductFilter{}).Return(nil, errNetwork).Once()

		old := product("old", "Old", models.CategoryToys)
		s := seeded(api, old)
		res := s.LoadProducts(ctx)

		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, errNetwork)
		st := s.Snapshot()
		assert.Equal(t, []models.Product{old}, st.Products)
		assert.False(t, st.Loading)
	})
}

func TestAddProduct(t *testing.T) {
	ctx := context.Background()
	draft := product("provisional", "Lego", models.CategoryToys)

	t.Run("appends server record", func(t *testing.T) {
		api := new(mocks.MockProductAPI)
		saved := draft
		saved.ID = "server-id"
		api.On("CreateProduct", ctx, draft).Return(&saved, nil).Once()

		s := seeded(api, product("1", "Dune", models.CategoryBooks))
		res := s.AddProduct(ctx, draft)

		require.True(t, res.Success)
		assert.Equal(t, "server-id", res.Product.ID)
		st := s.Snapshot()
		require.Len(t, st.Products, 2)
		got := st.Products[1]
		assert.Equal(t, "server-id", got.ID)
		got.ID = draft.ID
		assert.Equal(t, draft, got)
	})

	t.Run("duplicate leaves cache", func(t *testing.T) {
		api := new(mocks.MockProductAPI)
		api.On("CreateProduct", ctx, draft).Return(nil, errors.New("Product name must be unique")).Once()

		existing := product("1", "Lego", models.CategoryToys)
		s := seeded(api, existing)
		res := s.AddProduct(ctx, draft)

		assert.False(t, res.Success)
		assert.Equal(t, []models.Product{existing}, s.Snapshot().Products)
	})
}

func TestAddProductAfterDeletedEvent(t *testing.T) {
	ctx := context.Background()
	draft := product("provisional", "Lego", models.CategoryToys)
	saved := draft
	saved.ID = "server-id"

	api := new(mocks.MockProductAPI)
	s := New(api)
	// Le flux livre la suppression avant la réponse du POST.
	api.On("CreateProduct", ctx, draft).
		Run(func(mock.Arguments) {
			s.ApplyEvent(models.ProductEvent{Type: models.ProductDeleted, ID: "server-id"})
		}).
		Return(&saved, nil).Once()

	res := s.AddProduct(ctx, draft)

	assert.True(t, res.Success)
	st := s.Snapshot()
	assert.Empty(t, st.Products)
	assert.False(t, st.Loading)
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	a := product("a", "Dune", models.CategoryBooks)
	b := product("b", "Lego", models.CategoryToys)

	t.Run("replaces only matching entry and closes dialog", func(t *testing.T) {
		api := new(mocks.MockProductAPI)
		edited := a
		edited.QuantityInStock = 9
		api.On("UpdateProduct", ctx, "a", mock.Anything).Return(&edited, nil).Twice()

		s := seeded(api, a, b)
		s.SetSelectedProduct(&a)
		s.SetOpenProductDialog(true)

		require.True(t, s.UpdateProduct(ctx, edited).Success)
		require.True(t, s.UpdateProduct(ctx, edited).Success)

		st := s.Snapshot()
		assert.Equal(t, []models.Product{edited, b}, st.Products)
		assert.False(t, st.ProductDialogOpen)
		assert.Nil(t, st.Selected)
	})

	t.Run("failure still closes dialog", func(t *testing.T) {
		api := new(mocks.MockProductAPI)
		api.On("UpdateProduct", ctx, "a", mock.Anything).Return(nil, errNetwork).Once()

		s := seeded(api, a, b)
		s.SetSelectedProduct(&a)
		s.SetOpenProductDialog(true)

		edited := a
		edited.Name = "Dune Messiah"
		res := s.UpdateProduct(ctx, edited)

		assert.False(t, res.Success)
		st := s.Snapshot()
		assert.Equal(t, []models.Product{a, b}, st.Products)
		assert.False(t, st.ProductDialogOpen)
		assert.Nil(t, st.Selected)
		assert.False(t, st.Loading)
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	a := product("a", "Dune", models.CategoryBooks)
	b := product("b", "Lego", models.CategoryToys)

	t.Run("removes entry", func(t *testing.T) {
		api := new(mocks.MockProductAPI)
		api.On("DeleteProduct", ctx, "a").Return(nil).Once()

		s := seeded(api, a, b)
		s.SetSelectedProduct(&a)
		s.SetOpenDeleteDialog(true)
		require.True(t, s.DeleteProduct(ctx, "a").Success)

		st := s.Snapshot()
		assert.Equal(t, []models.Product{b}, st.Products)
		assert.False(t, st.DeleteDialogOpen)
		assert.Nil(t, st.Selected)
	})

	t.Run("absent id leaves cache", func(t *testing.T) {
		api := new(mocks.MockProductAPI)
		api.On("DeleteProduct", ctx, "zzz").Return(nil).Once()

		s := seeded(api, a, b)
		require.True(t, s.DeleteProduct(ctx, "zzz").Success)
		assert.Equal(t, []models.Product{a, b}, s.Snapshot().Products)
	})

	t.Run("failure closes dialog and keeps entry", func(t *testing.T) {
		api := new(mocks.MockProductAPI)
		api.On("DeleteProduct", ctx, "a").Return(errNetwork).Once()

		s := seeded(api, a, b)
		s.SetOpenDeleteDialog(true)
		assert.False(t, s.DeleteProduct(ctx, "a").Success)

		st := s.Snapshot()
		assert.Equal(t, []models.Product{a, b}, st.Products)
		assert.False(t, st.DeleteDialogOpen)
	})
}

func TestLateUpdateDoesNotResurrectDeletedProduct(t *testing.T) {
	ctx := context.Background()
	a := product("a", "Dune", models.CategoryBooks)

	release := make(chan struct{})
	started := make(chan struct{})
	api := new(mocks.MockProductAPI)
	edited := a
	edited.Price = 99
	api.On("UpdateProduct", ctx, "a", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&edited, nil).Once()
	api.On("DeleteProduct", ctx, "a").Return(nil).Once()

	s := seeded(api, a)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.UpdateProduct(ctx, edited)
	}()

	<-started
	require.True(t, s.DeleteProduct(ctx, "a").Success)
	close(release)
	wg.Wait()

	assert.Empty(t, s.Snapshot().Products)

	// Un événement tardif du flux ne le ramène pas non plus.
	s.ApplyEvent(models.ProductEvent{Type: models.ProductUpdated, ID: "a", Product: &edited})
	assert.Empty(t, s.Snapshot().Products)
}

func TestStaleUpdateResponseIsIgnored(t *testing.T) {
	ctx := context.Background()
	a := product("a", "Dune", models.CategoryBooks)

	first := a
	first.QuantityInStock = 5
	second := a
	second.QuantityInStock = 6

	release := make(chan struct{})
	started := make(chan struct{})
	api := new(mocks.MockProductAPI)
	api.On("UpdateProduct", ctx, "a", models.FullUpdate(first)).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&first, nil).Once()
	api.On("UpdateProduct", ctx, "a", models.FullUpdate(second)).Return(&second, nil).Once()

	s := seeded(api, a)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.UpdateProduct(ctx, first)
	}()

	<-started
	require.True(t, s.UpdateProduct(ctx, second).Success)
	close(release)
	wg.Wait()

	assert.Equal(t, 6, s.Snapshot().Products[0].QuantityInStock)
	assert.False(t, s.Snapshot().Loading)
}

func TestApplyEvent(t *testing.T) {
	s := New(new(mocks.MockProductAPI))
	a := product("a", "Dune", models.CategoryBooks)

	s.ApplyEvent(models.ProductEvent{Type: models.ProductCreated, ID: "a", Product: &a})
	s.ApplyEvent(models.ProductEvent{Type: models.ProductCreated, ID: "a", Product: &a})
	assert.Len(t, s.Snapshot().Products, 1)

	edited := a
	edited.Name = "Dune Messiah"
	s.ApplyEvent(models.ProductEvent{Type: models.ProductUpdated, ID: "a", Product: &edited})
	assert.Equal(t, "Dune Messiah", s.Snapshot().Products[0].Name)

	s.ApplyEvent(models.ProductEvent{Type: models.ProductDeleted, ID: "a"})
	assert.Empty(t, s.Snapshot().Products)
}

func TestSubscribe(t *testing.T) {
	s := New(new(mocks.MockProductAPI))

	var seen []bool
	cancel := s.Subscribe(func(st State) { seen = append(seen, st.DeleteDialogOpen) })
	s.SetOpenDeleteDialog(true)
	s.SetOpenDeleteDialog(false)
	cancel()
	s.SetOpenDeleteDialog(true)

	assert.Equal(t, []bool{true, false}, seen)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := seeded(new(mocks.MockProductAPI), product("a", "Dune", models.CategoryBooks))

	snap := s.Snapshot()
	snap.Products[0].Name = "changed"
	assert.Equal(t, "Dune", s.Snapshot().Products[0].Name)
}
