package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"inventory_back_end/internal/models"
)

const (
	ProductListPrefix     = "products:list:"
	ProductListVersionKey = ProductListPrefix + "version"
	ProductCacheTTL       = 10 * time.Minute
)

// ProductListCache met en cache les réponses de GET /products, une clé par filtre et par version.
// Invalidate incrémente la version : les anciennes entrées ne sont plus lues et expirent seules.
type ProductListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductListCache(rdb *redis.Client, ttl time.Duration) *ProductListCache {
	if ttl <= 0 {
		ttl = ProductCacheTTL
	}
	return &ProductListCache{rdb: rdb, ttl: ttl}
}

func filterKey(filter models.ProductFilter) string {
	cats := make([]string, 0, len(filter.Categories))
	for _, c := range filter.Categories {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	return strings.ToLower(filter.Search) + "|" + strings.Join(cats, ",")
}

// ListKey normalise le filtre : recherche en minuscules, catégories triées.
func ListKey(filter models.ProductFilter) string {
	return ProductListPrefix + filterKey(filter)
}

// VersionedKey est la clé Redis d'une liste pour une version donnée du cache.
func VersionedKey(version int64, filter models.ProductFilter) string {
	return ProductListPrefix + "v" + strconv.FormatInt(version, 10) + ":" + filterKey(filter)
}

// Version retourne la version courante des listes (0 tant qu'aucune écriture n'a eu lieu).
func (c *ProductListCache) Version(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, ProductListVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Get retourne (produits, true) en cas de hit.
func (c *ProductListCache) Get(ctx context.Context, version int64, filter models.ProductFilter) ([]models.Product, bool) {
	val, err := c.rdb.Get(ctx, VersionedKey(version, filter)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.S().Warnf("⚠️ Lecture cache produits: %v", err)
		}
		return nil, false
	}

	var cached []models.Product
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, false
	}
	return cached, true
}

func (c *ProductListCache) Set(ctx context.Context, version int64, filter models.ProductFilter, products []models.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, VersionedKey(version, filter), data, c.ttl).Err(); err != nil {
		zap.S().Warnf("⚠️ Écriture cache produits: %v", err)
	}
}

// Invalidate rend obsolètes toutes les listes en cache.
func (c *ProductListCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, ProductListVersionKey).Err(); err != nil {
		zap.S().Warnf("⚠️ Invalidation cache produits: %v", err)
	}
}
