package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"inventory_back_end/internal/models"
)

type memoryEntry struct {
	product models.Product
	seq     uint64
}

type memoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]memoryEntry
	seq      uint64
	now      func() time.Time
}

func NewMemoryProductRepository() ProductRepository {
	return &memoryProductRepository{
		products: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (r *memoryProductRepository) Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	entries := make([]memoryEntry, 0, len(r.products))
	for _, e := range r.products {
		if filter.Matches(e.product) {
			entries = append(entries, e)
		}
	}
	r.mu.RUnlock()

	// Plus récent d'abord ; l'ordre d'insertion départage les timestamps égaux.
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].product.CreatedAt.Equal(entries[j].product.CreatedAt) {
			return entries[i].product.CreatedAt.After(entries[j].product.CreatedAt)
		}
		return entries[i].seq > entries[j].seq
	})

	products := make([]models.Product, 0, len(entries))
	for _, e := range entries {
		products = append(products, e.product)
	}
	return products, nil
}

func (r *memoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	p := e.product
	return &p, nil
}

func (r *memoryProductRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique("", p.Name, p.SKU); err != nil {
		return nil, err
	}

	created := *p
	created.ID = uuid.NewString()
	created.CreatedAt = r.now().UTC()
	created.UpdatedAt = created.CreatedAt

	r.seq++
	r.products[created.ID] = memoryEntry{product: created, seq: r.seq}
	return &created, nil
}

func (r *memoryProductRepository) Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}

	updated := e.product
	upd.ApplyTo(&updated)
	if err := r.checkUnique(id, updated.Name, updated.SKU); err != nil {
		return nil, err
	}
	updated.UpdatedAt = r.now().UTC()

	e.product = updated
	r.products[id] = e
	return &updated, nil
}

func (r *memoryProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

// checkUnique doit être appelé sous verrou.
func (r *memoryProductRepository) checkUnique(selfID, name, sku string) error {
	for id, e := range r.products {
		if id == selfID {
			continue
		}
		if e.product.Name == name {
			return &DuplicateError{Field: "name"}
		}
		if sku != "" && e.product.SKU == sku {
			return &DuplicateError{Field: "sku"}
		}
	}
	return nil
}
