package models

import (
	"strings"
	"time"
)

type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Supplier        string    `json:"supplier"`
	SKU             string    `json:"sku"`
	Category        Category  `json:"category"`
	QuantityInStock int       `json:"quantityInStock"`
	Price           float64   `json:"price"`
	Icon            string    `json:"icon,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ProductUpdate porte une mise à jour partielle : seuls les champs non nil sont appliqués.
type ProductUpdate struct {
	Name            *string   `json:"name,omitempty"`
	Supplier        *string   `json:"supplier,omitempty"`
	SKU             *string   `json:"sku,omitempty"`
	Category        *Category `json:"category,omitempty"`
	QuantityInStock *int      `json:"quantityInStock,omitempty"`
	Price           *float64  `json:"price,omitempty"`
	Icon            *string   `json:"icon,omitempty"`
}

func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Supplier == nil && u.SKU == nil && u.Category == nil &&
		u.QuantityInStock == nil && u.Price == nil && u.Icon == nil
}

// ApplyTo fusionne les champs renseignés sur p. Les timestamps ne sont pas touchés.
func (u ProductUpdate) ApplyTo(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Supplier != nil {
		p.Supplier = *u.Supplier
	}
	if u.SKU != nil {
		p.SKU = *u.SKU
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.QuantityInStock != nil {
		p.QuantityInStock = *u.QuantityInStock
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Icon != nil {
		p.Icon = *u.Icon
	}
}

// FullUpdate construit une mise à jour qui remplace tous les champs modifiables.
func FullUpdate(p Product) ProductUpdate {
	return ProductUpdate{
		Name:            &p.Name,
		Supplier:        &p.Supplier,
		SKU:             &p.SKU,
		Category:        &p.Category,
		QuantityInStock: &p.QuantityInStock,
		Price:           &p.Price,
		Icon:            &p.Icon,
	}
}

type ProductFilter struct {
	Search     string
	Categories []Category
}

// Matches applique le filtre en mémoire (recherche insensible à la casse sur le nom).
func (f ProductFilter) Matches(p Product) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	if len(f.Categories) == 0 {
		return true
	}
	for _, c := range f.Categories {
		if c == p.Category {
			return true
		}
	}
	return false
}

// ParseCategories découpe "Books,Toys" en liste, en ignorant les entrées vides.
func ParseCategories(raw string) []Category {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []Category
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, Category(part))
		}
	}
	return out
}
