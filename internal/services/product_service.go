package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"inventory_back_end/internal/cache"
	"inventory_back_end/internal/models"
	"inventory_back_end/internal/repository"
)

var ErrNameRequired = errors.New("Name is required")

// listTimeout borne la lecture partagée, qui ne dépend plus de la requête du premier appelant.
const listTimeout = 15 * time.Second

// ValidationError décrit un champ refusé par le schéma produit.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ListCache stocke les listes par version ; Invalidate passe à la version suivante.
type ListCache interface {
	Version(ctx context.Context) (int64, error)
	Get(ctx context.Context, version int64, filter models.ProductFilter) ([]models.Product, bool)
	Set(ctx context.Context, version int64, filter models.ProductFilter, products []models.Product)
	Invalidate(ctx context.Context)
}

type SearchIndex interface {
	Index(ctx context.Context, p models.Product) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
}

type Option func(*ProductService)

func WithCache(c ListCache) Option {
	return func(s *ProductService) { s.cache = c }
}

func WithSearchIndex(x SearchIndex) Option {
	return func(s *ProductService) { s.index = x }
}

func WithEvents(p EventPublisher) Option {
	return func(s *ProductService) { s.events = p }
}

// ProductService relie le repository aux collaborateurs optionnels :
// cache Redis, index Elasticsearch et flux d'événements.
type ProductService struct {
	repo   repository.ProductRepository
	cache  ListCache
	index  SearchIndex
	events EventPublisher

	group      singleflight.Group
	generation atomic.Uint64
	pending    sync.WaitGroup
}

func NewProductService(repo repository.ProductRepository, opts ...Option) *ProductService {
	s := &ProductService{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	gen := s.generation.Load()

	version := int64(-1)
	if s.cache != nil {
		v, err := s.cache.Version(ctx)
		if err != nil {
			zap.S().Warnf("⚠️ Version du cache produits indisponible: %v", err)
		} else {
			version = v
			if cached, ok := s.cache.Get(ctx, version, filter); ok {
				return cached, nil
			}
		}
	}

	// Les requêtes concurrentes sur le même filtre partagent un seul aller-retour en base.
	// La génération dans la clé empêche une lecture postérieure à une écriture de rejoindre un appel plus ancien.
	key := fmt.Sprintf("%d:%d:%s", gen, version, cache.ListKey(filter))
	ch := s.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listTimeout)
		defer cancel()

		products, err := s.repo.Find(fetchCtx, filter)
		if err != nil {
			return nil, err
		}
		// Une écriture pendant la lecture rend ce résultat obsolète : pas de mise en cache.
		if version >= 0 && s.generation.Load() == gen {
			s.cache.Set(fetchCtx, version, filter, products)
		}
		return products, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.Product), nil
	}
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, ErrNameRequired
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &p)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, models.ProductEvent{Type: models.ProductCreated, ID: created.ID, Product: created})
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return nil, ErrNameRequired
		}
		upd.Name = &trimmed
	}
	if err := validateUpdate(upd); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, models.ProductEvent{Type: models.ProductUpdated, ID: updated.ID, Product: updated})
	return updated, nil
}

// Delete est idempotent : supprimer un id absent n'est pas une erreur.
// Le booléen indique si un produit existait.
func (s *ProductService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.afterWrite(ctx, models.ProductEvent{Type: models.ProductDeleted, ID: id})
	} else {
		zap.S().Infof("🗑️ Suppression d'un produit absent: %s", id)
	}
	return deleted, nil
}

// Search interroge Elasticsearch, avec repli sur le repository si l'index est absent ou en erreur.
func (s *ProductService) Search(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if s.index != nil {
		results, err := s.index.Search(ctx, filter)
		if err == nil {
			return results, nil
		}
		zap.S().Warnf("⚠️ Recherche Elastic indisponible, repli sur la base: %v", err)
	}
	return s.repo.Find(ctx, filter)
}

// Wait attend la fin des indexations en cours (arrêt du serveur, tests).
func (s *ProductService) Wait() {
	s.pending.Wait()
}

func (s *ProductService) afterWrite(ctx context.Context, ev models.ProductEvent) {
	s.generation.Add(1)
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}

	if s.index != nil {
		s.pending.Add(1)
		go func(ctx context.Context) {
			defer s.pending.Done()
			var err error
			if ev.Type == models.ProductDeleted {
				err = s.index.Remove(ctx, ev.ID)
			} else {
				err = s.index.Index(ctx, *ev.Product)
			}
			if err != nil {
				zap.S().Errorf("❌ Indexation Elastic %s %s: %v", ev.Type, ev.ID, err)
			}
		}(context.WithoutCancel(ctx))
	}

	if s.events != nil {
		s.events.Publish(ctx, ev)
	}
}

func validateProduct(p models.Product) error {
	switch {
	case strings.TrimSpace(p.Supplier) == "":
		return &ValidationError{Field: "supplier", Message: "is required"}
	case strings.TrimSpace(p.SKU) == "":
		return &ValidationError{Field: "sku", Message: "is required"}
	case !p.Category.Valid():
		return &ValidationError{Field: "category", Message: fmt.Sprintf("%q is not a known category", p.Category)}
	case p.QuantityInStock < 0:
		return &ValidationError{Field: "quantityInStock", Message: "must be >= 0"}
	case p.Price < 0:
		return &ValidationError{Field: "price", Message: "must be >= 0"}
	}
	return nil
}

func validateUpdate(u models.ProductUpdate) error {
	switch {
	case u.Supplier != nil && strings.TrimSpace(*u.Supplier) == "":
		return &ValidationError{Field: "supplier", Message: "is required"}
	case u.SKU != nil && strings.TrimSpace(*u.SKU) == "":
		return &ValidationError{Field: "sku", Message: "is required"}
	case u.Category != nil && !u.Category.Valid():
		return &ValidationError{Field: "category", Message: fmt.Sprintf("%q is not a known category", *u.Category)}
	case u.QuantityInStock != nil && *u.QuantityInStock < 0:
		return &ValidationError{Field: "quantityInStock", Message: "must be >= 0"}
	case u.Price != nil && *u.Price < 0:
		return &ValidationError{Field: "price", Message: "must be >= 0"}
	}
	return nil
}
