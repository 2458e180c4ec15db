package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"inventory_back_end/internal/database"
	"inventory_back_end/internal/models"
)

type scyllaProductRepository struct {
	session *gocql.Session
}

// NewScyllaProductRepository s'appuie sur les tables de réservation products_by_name /
// products_by_sku pour l'unicité, ScyllaDB n'ayant pas d'index unique.
func NewScyllaProductRepository(session *gocql.Session) ProductRepository {
	return &scyllaProductRepository{session: session}
}

func scanProduct(scan func(dest ...interface{}) bool) (models.Product, bool) {
	var (
		p        models.Product
		id       gocql.UUID
		category string
	)
	ok := scan(&id, &p.Name, &p.Supplier, &p.SKU, &category, &p.QuantityInStock, &p.Price, &p.Icon, &p.CreatedAt, &p.UpdatedAt)
	p.ID = id.String()
	p.Category = models.Category(category)
	return p, ok
}

func (r *scyllaProductRepository) Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	// Pas de LIKE en CQL : scan complet puis filtre en mémoire.
	iter := r.session.Query(database.SelectAllProducts).WithContext(ctx).Iter()

	products := []models.Product{}
	for {
		p, ok := scanProduct(iter.Scan)
		if !ok {
			break
		}
		if filter.Matches(p) {
			products = append(products, p)
		}
	}
	if err := iter.Close(); err != nil {
		zap.S().Errorf("❌ Lecture produits ScyllaDB: %v", err)
		return nil, err
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *scyllaProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	uid, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var scanErr error
	p, _ := scanProduct(func(dest ...interface{}) bool {
		scanErr = r.session.Query(database.SelectProductByID, uid).WithContext(ctx).Scan(dest...)
		return scanErr == nil
	})
	if scanErr != nil {
		if errors.Is(scanErr, gocql.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, scanErr
	}
	return &p, nil
}

func (r *scyllaProductRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	id := gocql.TimeUUID()

	if err := r.reserve(ctx, database.ReserveProductName, p.Name, id, "name"); err != nil {
		return nil, err
	}
	if err := r.reserve(ctx, database.ReserveProductSKU, p.SKU, id, "sku"); err != nil {
		r.release(ctx, database.ReleaseProductName, p.Name, id)
		return nil, err
	}

	created := *p
	created.ID = id.String()
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt

	if err := r.write(ctx, id, created); err != nil {
		r.release(ctx, database.ReleaseProductName, p.Name, id)
		r.release(ctx, database.ReleaseProductSKU, p.SKU, id)
		return nil, err
	}
	return &created, nil
}

func (r *scyllaProductRepository) Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	uid, _ := gocql.ParseUUID(id)

	updated := *current
	upd.ApplyTo(&updated)
	updated.UpdatedAt = time.Now().UTC()

	if updated.Name != current.Name {
		if err := r.reserve(ctx, database.ReserveProductName, updated.Name, uid, "name"); err != nil {
			return nil, err
		}
	}
	if updated.SKU != current.SKU {
		if err := r.reserve(ctx, database.ReserveProductSKU, updated.SKU, uid, "sku"); err != nil {
			if updated.Name != current.Name {
				r.release(ctx, database.ReleaseProductName, updated.Name, uid)
			}
			return nil, err
		}
	}

	if err := r.write(ctx, uid, updated); err != nil {
		return nil, err
	}

	if updated.Name != current.Name {
		r.release(ctx, database.ReleaseProductName, current.Name, uid)
	}
	if updated.SKU != current.SKU {
		r.release(ctx, database.ReleaseProductSKU, current.SKU, uid)
	}
	return &updated, nil
}

func (r *scyllaProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return false, nil
		}
		return false, err
	}
	uid, _ := gocql.ParseUUID(id)

	if err := r.session.Query(database.DeleteProductByID, uid).WithContext(ctx).Exec(); err != nil {
		return false, err
	}
	r.release(ctx, database.ReleaseProductName, current.Name, uid)
	r.release(ctx, database.ReleaseProductSKU, current.SKU, uid)
	return true, nil
}

func (r *scyllaProductRepository) write(ctx context.Context, id gocql.UUID, p models.Product) error {
	return r.session.Query(database.InsertProduct,
		id, p.Name, p.Supplier, p.SKU, string(p.Category), p.QuantityInStock, p.Price, p.Icon, p.CreatedAt, p.UpdatedAt,
	).WithContext(ctx).Exec()
}

func (r *scyllaProductRepository) reserve(ctx context.Context, stmt, key string, id gocql.UUID, field string) error {
	applied, err := r.session.Query(stmt, key, id).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return &DuplicateError{Field: field}
	}
	return nil
}

func (r *scyllaProductRepository) release(ctx context.Context, stmt, key string, id gocql.UUID) {
	if _, err := r.session.Query(stmt, key, id).WithContext(ctx).MapScanCAS(map[string]interface{}{}); err != nil {
		zap.S().Warnf("⚠️ Libération réservation %q: %v", key, err)
	}
}
