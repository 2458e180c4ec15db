package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"inventory_back_end/internal/models"
)

const productsCollection = "products"

type mongoProduct struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	Supplier        string             `bson:"supplier"`
	SKU             string             `bson:"sku"`
	Category        string             `bson:"category"`
	QuantityInStock int                `bson:"quantityInStock"`
	Price           float64            `bson:"price"`
	Icon            string             `bson:"icon,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func (d mongoProduct) toModel() models.Product {
	return models.Product{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Supplier:        d.Supplier,
		SKU:             d.SKU,
		Category:        models.Category(d.Category),
		QuantityInStock: d.QuantityInStock,
		Price:           d.Price,
		Icon:            d.Icon,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type mongoProductRepository struct {
	coll *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{coll: db.Collection(productsCollection)}
}

// EnsureMongoIndexes crée les index uniques (name, sku) et l'index de tri.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(productsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("création des index produits: %w", err)
	}
	return nil
}

func (r *mongoProductRepository) Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.Search != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
	}
	if len(filter.Categories) > 0 {
		cats := make([]string, 0, len(filter.Categories))
		for _, c := range filter.Categories {
			cats = append(cats, string(c))
		}
		query["category"] = bson.M{"$in": cats}
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		zap.S().Errorf("❌ Find produits: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	for cursor.Next(ctx) {
		var doc mongoProduct
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		products = append(products, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *mongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var doc mongoProduct
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	p := doc.toModel()
	return &p, nil
}

func (r *mongoProductRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	now := time.Now().UTC()
	doc := mongoProduct{
		Name:            p.Name,
		Supplier:        p.Supplier,
		SKU:             p.SKU,
		Category:        string(p.Category),
		QuantityInStock: p.QuantityInStock,
		Price:           p.Price,
		Icon:            p.Icon,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateFromMongo(err)
		}
		return nil, err
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	created := doc.toModel()
	return &created, nil
}

func (r *mongoProductRepository) Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Supplier != nil {
		set["supplier"] = *upd.Supplier
	}
	if upd.SKU != nil {
		set["sku"] = *upd.SKU
	}
	if upd.Category != nil {
		set["category"] = string(*upd.Category)
	}
	if upd.QuantityInStock != nil {
		set["quantityInStock"] = *upd.QuantityInStock
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Icon != nil {
		set["icon"] = *upd.Icon
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoProduct
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrProductNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, duplicateFromMongo(err)
		}
		return nil, err
	}
	p := doc.toModel()
	return &p, nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// duplicateFromMongo retrouve le champ fautif dans le message E11000 ("index: sku_1 dup key").
func duplicateFromMongo(err error) *DuplicateError {
	if strings.Contains(err.Error(), "sku_1") {
		return &DuplicateError{Field: "sku"}
	}
	return &DuplicateError{Field: "name"}
}
