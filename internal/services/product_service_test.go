package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inventory_back_end/internal/cache"
	"inventory_back_end/internal/models"
	"inventory_back_end/internal/repository"
	repoMocks "inventory_back_end/internal/repository/mocks"
	"inventory_back_end/internal/services/mocks"
)

func validProduct() models.Product {
	return models.Product{
		Name:            "Kindle",
		Supplier:        "Amazon",
		SKU:             "KD-11",
		Category:        models.CategoryElectronics,
		QuantityInStock: 4,
		Price:           129.99,
		Icon:            "tv",
	}
}

func TestProductService_List(t *testing.T) {
	ctx := context.TODO()
	filter := models.ProductFilter{Search: "kin"}
	products := []models.Product{{ID: "p1", Name: "Kindle"}}

	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := new(repoMocks.MockProductRepository)
		c := new(mocks.MockListCache)
		c.On("Version", ctx).Return(int64(2), nil).Once()
		c.On("Get", ctx, int64(2), filter).Return(products, true).Once()

		svc := NewProductService(repo, WithCache(c))
		res, err := svc.List(ctx, filter)

		require.NoError(t, err)
		assert.Equal(t, products, res)
		repo.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
		c.AssertExpectations(t)
	})

	t.Run("cache miss fills cache", func(t *testing.T) {
		repo := new(repoMocks.MockProductRepository)
		c := new(mocks.MockListCache)
		c.On("Version", ctx).Return(int64(3), nil).Once()
		c.On("Get", ctx, int64(3), filter).Return(nil, false).Once()
		repo.On("Find", mock.Anything, filter).Return(products, nil).Once()
		c.On("Set", mock.Anything, int64(3), filter, products).Once()

		svc := NewProductService(repo, WithCache(c))
		res, err := svc.List(ctx, filter)

		require.NoError(t, err)
		assert.Equal(t, products, res)
		repo.AssertExpectations(t)
		c.AssertExpectations(t)
	})

	t.Run("cache unavailable reads repository without caching", func(t *testing.T) {
		repo := new(repoMocks.MockProductRepository)
		c := new(mocks.MockListCache)
		c.On("Version", ctx).Return(int64(0), errors.New("redis down")).Once()
		repo.On("Find", mock.Anything, filter).Return(products, nil).Once()

		svc := NewProductService(repo, WithCache(c))
		res, err := svc.List(ctx, filter)

		require.NoError(t, err)
		assert.Equal(t, products, res)
		c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(repoMocks.MockProductRepository)
		repo.On("Find", mock.Anything, filter).Return(nil, errors.New("db error")).Once()

		svc := NewProductService(repo)
		res, err := svc.List(ctx, filter)

		assert.Error(t, err)
		assert.Nil(t, res)
	})
}

func TestProductService_Create(t *testing.T) {
	ctx := context.TODO()

	t.Run("missing name", func(t *testing.T) {
		repo := new(repoMocks.MockProductRepository)
		svc := NewProductService(repo)

		p := validProduct()
		p.Name = "   "
		_, err := svc.Create(ctx, p)

		assert.ErrorIs(t, err, ErrNameRequired)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown category", func(t *testing.T) {
		svc := NewProductService(new(repoMocks.MockProductRepository))

		p := validProduct()
		p.Category = "Groceries"
		_, err := svc.Create(ctx, p)

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "category", vErr.Field)
	})

	t.Run("success runs side effects", func(t *testing.T) {
		repo := new(repoMocks.MockProductRepository)
		c := new(mocks.MockListCache)
		idx := new(mocks.MockSearchIndex)
		pub := new(mocks.MockEventPublisher)

		created := validProduct()
		created.ID = "p1"
		repo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(&created, nil).Once()
		c.On("Invalidate", ctx).Once()
		idx.On("Index", mock.Anything, created).Return(nil).Once()
		pub.On("Publish", ctx, models.ProductEvent{Type: models.ProductCreated, ID: "p1", Product: &created}).Once()

		svc := NewProductService(repo, WithCache(c), WithSearchIndex(idx), WithEvents(pub))
		res, err := svc.Create(ctx, validProduct())
		svc.Wait()

		require.NoError(t, err)
		assert.Equal(t, "p1", res.ID)
		repo.AssertExpectations(t)
		c.AssertExpectations(t)
		idx.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("duplicate is returned untouched", func(t *testing.T) {
		repo := new(repoMocks.MockProductRepository)
		repo.On("Create", ctx, mock.AnythingOfType("*models.Product")).
			Return(nil, &repository.DuplicateError{Field: "name"}).Once()

		svc := NewProductService(repo)
		_, err := svc.Create(ctx, validProduct())

		assert.True(t, repository.IsDuplicate(err))
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.TODO()

	t.Run("blank name rejected", func(t *testing.T) {
		svc := NewProductService(new(repoMocks.MockProductRepository))
		blank := " "
		_, err := svc.Update(ctx, "p1", models.ProductUpdate{Name: &blank})
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		svc := NewProductService(new(repoMocks.MockProductRepository))
		price := -1.0
		_, err := svc.Update(ctx, "p1", models.ProductUpdate{Price: &price})
		var vErr *ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(repoMocks.MockProductRepository)
		qty := 3
		upd := models.ProductUpdate{QuantityInStock: &qty}
		repo.On("Update", ctx, "missing", upd).Return(nil, repository.ErrProductNotFound).Once()

		svc := NewProductService(repo)
		_, err := svc.Update(ctx, "missing", upd)

		assert.ErrorIs(t, err, repository.ErrProductNotFound)
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.TODO()

	t.Run("absent id publishes nothing", func(t *testing.T) {
		repo := new(repoMocks.MockProductRepository)
		pub := new(mocks.MockEventPublisher)
		repo.On("Delete", ctx, "ghost").Return(false, nil).Once()

		svc := NewProductService(repo, WithEvents(pub))
		deleted, err := svc.Delete(ctx, "ghost")

		require.NoError(t, err)
		assert.False(t, deleted)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("existing id removes from index", func(t *testing.T) {
		repo := new(repoMocks.MockProductRepository)
		idx := new(mocks.MockSearchIndex)
		pub := new(mocks.MockEventPublisher)
		repo.On("Delete", ctx, "p1").Return(true, nil).Once()
		idx.On("Remove", mock.Anything, "p1").Return(nil).Once()
		pub.On("Publish", ctx, models.ProductEvent{Type: models.ProductDeleted, ID: "p1"}).Once()

		svc := NewProductService(repo, WithSearchIndex(idx), WithEvents(pub))
		deleted, err := svc.Delete(ctx, "p1")
		svc.Wait()

		require.NoError(t, err)
		assert.True(t, deleted)
		idx.AssertExpectations(t)
		pub.AssertExpectations(t)
	})
}

func TestProductService_SearchFallback(t *testing.T) {
	ctx := context.TODO()
	filter := models.ProductFilter{Search: "kindle"}
	fromDB := []models.Product{{ID: "p1", Name: "Kindle"}}

	repo := new(repoMocks.MockProductRepository)
	idx := new(mocks.MockSearchIndex)
	idx.On("Search", ctx, filter).Return(nil, errors.New("index non trouvé ou vide")).Once()
	repo.On("Find", ctx, filter).Return(fromDB, nil).Once()

	svc := NewProductService(repo, WithSearchIndex(idx))
	res, err := svc.Search(ctx, filter)

	require.NoError(t, err)
	assert.Equal(t, fromDB, res)
}

// gatedRepo bloque le premier Find après la lecture des lignes, jusqu'à release.
type gatedRepo struct {
	repository.ProductRepository
	gated   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func newGatedRepo() *gatedRepo {
	return &gatedRepo{
		ProductRepository: repository.NewMemoryProductRepository(),
		read:              make(chan struct{}),
		release:           make(chan struct{}),
	}
}

func (r *gatedRepo) Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	products, err := r.ProductRepository.Find(ctx, filter)
	if r.gated.CompareAndSwap(false, true) {
		close(r.read)
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return products, err
}

// memoryListCache reproduit le cache Redis versionné en mémoire.
type memoryListCache struct {
	mu      sync.Mutex
	version int64
	entries map[string][]models.Product
}

func newMemoryListCache() *memoryListCache {
	return &memoryListCache{entries: map[string][]models.Product{}}
}

func (c *memoryListCache) Version(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version, nil
}

func (c *memoryListCache) Get(_ context.Context, version int64, filter models.ProductFilter) ([]models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[cache.VersionedKey(version, filter)]
	return p, ok
}

func (c *memoryListCache) Set(_ context.Context, version int64, filter models.ProductFilter, products []models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cache.VersionedKey(version, filter)] = products
}

func (c *memoryListCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
}

func TestProductService_ListAfterConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	repo := newGatedRepo()
	lists := newMemoryListCache()
	svc := NewProductService(repo, WithCache(lists))

	type result struct {
		products []models.Product
		err      error
	}
	stale := make(chan result, 1)
	go func() {
		p, err := svc.List(ctx, models.ProductFilter{})
		stale <- result{p, err}
	}()

	// La première lecture a déjà vu une base vide.
	<-repo.read
	_, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)

	// Une lecture après l'écriture ne rejoint pas l'appel en cours.
	fresh, err := svc.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, fresh, 1)

	close(repo.release)
	old := <-stale
	require.NoError(t, old.err)
	assert.Empty(t, old.products)

	// Le résultat obsolète n'a pas été mis en cache.
	after, err := svc.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, after, 1)
	_, cachedStale := lists.Get(ctx, 0, models.ProductFilter{})
	assert.False(t, cachedStale)
}

func TestProductService_ListCallerCancellation(t *testing.T) {
	repo := newGatedRepo()
	svc := NewProductService(repo)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.List(ctxA, models.ProductFilter{})
		errA <- err
	}()
	<-repo.read

	type result struct {
		products []models.Product
		err      error
	}
	resB := make(chan result, 1)
	go func() {
		p, err := svc.List(context.Background(), models.ProductFilter{})
		resB <- result{p, err}
	}()
	time.Sleep(20 * time.Millisecond)

	// A abandonne : seule sa requête échoue.
	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(repo.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.NotNil(t, b.products)
}
