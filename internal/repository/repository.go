package repository

import (
	"context"
	"errors"
	"fmt"

	"inventory_back_end/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

// DuplicateError signale une violation d'unicité sur le nom ou le SKU.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("product %s must be unique", e.Field)
}

func IsDuplicate(err error) bool {
	var dup *DuplicateError
	return errors.As(err, &dup)
}

// ProductRepository est le contrat consommé par la couche REST.
// Find retourne les produits du plus récent au plus ancien.
type ProductRepository interface {
	Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}
