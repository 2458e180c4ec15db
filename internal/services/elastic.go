package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"inventory_back_end/internal/models"
)

const defaultIndex = "products"

var productsMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"name":            map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword"}}},
			"sku":             map[string]interface{}{"type": "keyword"},
			"supplier":        map[string]interface{}{"type": "text"},
			"category":        map[string]interface{}{"type": "keyword"},
			"quantityInStock": map[string]interface{}{"type": "integer"},
			"price":           map[string]interface{}{"type": "double"},
			"icon":            map[string]interface{}{"type": "keyword"},
			"createdAt":       map[string]interface{}{"type": "date"},
			"updatedAt":       map[string]interface{}{"type": "date"},
		},
	},
}

// ProductIndex maintient l'index de recherche Elasticsearch des produits.
type ProductIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewProductIndex(es *elasticsearch.Client, index string) *ProductIndex {
	if index == "" {
		index = defaultIndex
	}
	return &ProductIndex{es: es, index: index}
}

// EnsureIndex crée l'index avec son mapping s'il n'existe pas encore.
func (x *ProductIndex) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(ctx, x.es)
	if err != nil {
		return fmt.Errorf("vérification index %s: %w", x.index, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	body, _ := json.Marshal(productsMapping)
	res, err = esapi.IndicesCreateRequest{Index: x.index, Body: bytes.NewReader(body)}.Do(ctx, x.es)
	if err != nil {
		return fmt.Errorf("création index %s: %w", x.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("création index %s: %s", x.index, res.String())
	}
	zap.S().Infof("✅ Index Elasticsearch créé: %s", x.index)
	return nil
}

//
// --- INDEXATION DANS ELASTICSEARCH ---
//

func (x *ProductIndex) Index(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	res, err := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}.Do(ctx, x.es)
	if err != nil {
		return fmt.Errorf("envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexation %s: %s", p.Name, res.String())
	}
	return nil
}

func (x *ProductIndex) Remove(ctx context.Context, id string) error {
	res, err := esapi.DeleteRequest{Index: x.index, DocumentID: id, Refresh: "true"}.Do(ctx, x.es)
	if err != nil {
		return fmt.Errorf("suppression Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("suppression %s: %s", id, res.String())
	}
	return nil
}

//
// --- RECHERCHE DANS ELASTICSEARCH ---
//

// Search cherche par nom, SKU ou fournisseur, filtré par catégories.
func (x *ProductIndex) Search(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchQuery(filter)); err != nil {
		return nil, fmt.Errorf("encodage requête: %w", err)
	}

	res, err := esapi.SearchRequest{Index: []string{x.index}, Body: &buf}.Do(ctx, x.es)
	if err != nil {
		return nil, fmt.Errorf("requête Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.New("index non trouvé ou vide")
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("décodage JSON: %w", err)
	}

	products := make([]models.Product, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		products = append(products, hit.Source)
	}
	return products, nil
}

func searchQuery(filter models.ProductFilter) map[string]interface{} {
	boolQuery := map[string]interface{}{}

	if q := strings.TrimSpace(filter.Search); q != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":     q,
					"fields":    []string{"name^3", "sku^2", "supplier"},
					"fuzziness": "AUTO",
				},
			},
		}
	} else {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}

	if len(filter.Categories) > 0 {
		cats := make([]string, 0, len(filter.Categories))
		for _, c := range filter.Categories {
			cats = append(cats, string(c))
		}
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{"terms": map[string]interface{}{"category": cats}},
		}
	}

	return map[string]interface{}{
		"size":  100,
		"query": map[string]interface{}{"bool": boolQuery},
	}
}
