package database

import (
	"fmt"

	"github.com/gocql/gocql"
	"go.uber.org/zap"
)

// Requêtes CQL du keyspace produits. Les tables products_by_name et products_by_sku
// servent de réservations (LWT) pour garantir l'unicité du nom et du SKU.
const (
	CreateProductsTable = `CREATE TABLE IF NOT EXISTS products (
		product_id uuid PRIMARY KEY,
		name text,
		supplier text,
		sku text,
		category text,
		quantity_in_stock int,
		price double,
		icon text,
		created_at timestamp,
		updated_at timestamp
	)`
	CreateProductsByNameTable = `CREATE TABLE IF NOT EXISTS products_by_name (name text PRIMARY KEY, product_id uuid)`
	CreateProductsBySKUTable  = `CREATE TABLE IF NOT EXISTS products_by_sku (sku text PRIMARY KEY, product_id uuid)`

	SelectAllProducts = `SELECT product_id, name, supplier, sku, category, quantity_in_stock, price, icon, created_at, updated_at FROM products`
	SelectProductByID = SelectAllProducts + ` WHERE product_id = ?`
	InsertProduct     = `INSERT INTO products (product_id, name, supplier, sku, category, quantity_in_stock, price, icon, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	DeleteProductByID = `DELETE FROM products WHERE product_id = ?`

	ReserveProductName = `INSERT INTO products_by_name (name, product_id) VALUES (?, ?) IF NOT EXISTS`
	ReleaseProductName = `DELETE FROM products_by_name WHERE name = ? IF product_id = ?`
	ReserveProductSKU  = `INSERT INTO products_by_sku (sku, product_id) VALUES (?, ?) IF NOT EXISTS`
	ReleaseProductSKU  = `DELETE FROM products_by_sku WHERE sku = ? IF product_id = ?`
)

// EnsureProductSchema crée les tables manquantes (SCYLLA_AUTO_MIGRATE=true).
func EnsureProductSchema(session *gocql.Session) error {
	for _, stmt := range []string{CreateProductsTable, CreateProductsByNameTable, CreateProductsBySKUTable} {
		if err := session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("migration schéma produits: %w", err)
		}
	}
	zap.S().Info("✅ Schéma produits ScyllaDB à jour")
	return nil
}
