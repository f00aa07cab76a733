// Package repositories implements MongoDB persistence for the models.
package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/pkg/database"
)

// ListFilter narrows and pages a product listing.
type ListFilter struct {
	Keyword   string
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	Page      int
	Limit     int
	SortField string // name, price or createdAt
	SortOrder string // asc or desc
}

// sortable whitelists the fields a client may sort by.
var sortable = map[string]bool{
	"name":      true,
	"price":     true,
	"createdAt": true,
}

// ProductRepository persists products.
type ProductRepository struct {
	col *mongo.Collection
}

// NewProductRepository uses the connected database.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{col: database.Collection(database.ColProducts)}
}

// NewProductRepositoryWith wraps an explicit collection (used by tests).
func NewProductRepositoryWith(col *mongo.Collection) *ProductRepository {
	return &ProductRepository{col: col}
}

// Create inserts the product and fills in its ID and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("products: insert: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID returns the product or (nil, nil) when it does not exist.
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("products: find %s: %w", id.Hex(), err)
	}
	return &p, nil
}

// List returns one page of products plus the total match count.
func (r *ProductRepository) List(ctx context.Context, f ListFilter) ([]models.Product, int64, error) {
	filter := bson.M{}

	if f.Keyword != "" {
		kw := regexp.QuoteMeta(f.Keyword)
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": kw, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": kw, "$options": "i"}},
		}
	}
	if f.Category != "" {
		// Match "sarees", "Sarees", "SAREES" alike.
		filter["category"] = bson.M{
			"$regex":   "^" + regexp.QuoteMeta(f.Category) + "$",
			"$options": "i",
		}
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("products: count: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 || limit > 100 {
		limit = 12
	}

	sortField := f.SortField
	if !sortable[sortField] {
		sortField = "createdAt"
	}
	order := -1
	if f.SortOrder == "asc" {
		order = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: order}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("products: find: %w", err)
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("products: decode: %w", err)
	}
	return products, total, nil
}

// Count returns the total number of products.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("products: count all: %w", err)
	}
	return n, nil
}

// OutOfStockCount returns how many products have nothing left to sell,
// in any size or in the flat count.
func (r *ProductRepository) OutOfStockCount(ctx context.Context) (int64, error) {
	filter := bson.M{
		"sizes": bson.M{"$not": bson.M{"$elemMatch": bson.M{"stock": bson.M{"$gt": 0}}}},
		"stock": bson.M{"$not": bson.M{"$gt": 0}},
	}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("products: count out of stock: %w", err)
	}
	return n, nil
}

// Update applies the given field changes and bumps updatedAt.
func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("products: update %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes the product.
func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("products: delete %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ReserveStock atomically decrements stock, but only when at least qty
// units remain. An empty size targets the flat stock field. It reports
// false when the condition did not hold, without touching the document.
func (r *ProductRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, size string, qty int) (bool, error) {
	var filter, update bson.M
	if size == "" {
		filter = bson.M{"_id": id, "stock": bson.M{"$gte": qty}}
		update = bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		}
	} else {
		filter = bson.M{
			"_id": id,
			"sizes": bson.M{"$elemMatch": bson.M{
				"size":  size,
				"stock": bson.M{"$gte": qty},
			}},
		}
		update = bson.M{
			"$inc": bson.M{"sizes.$.stock": -qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		}
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("products: reserve stock %s/%s: %w", id.Hex(), size, err)
	}
	return res.ModifiedCount == 1, nil
}

// RestoreStock adds qty back, to one size or to the flat count when
// size is empty. Missing products or sizes are ignored: the product
// may have been deleted since the order.
func (r *ProductRepository) RestoreStock(ctx context.Context, id primitive.ObjectID, size string, qty int) error {
	var filter, update bson.M
	if size == "" {
		filter = bson.M{"_id": id}
		update = bson.M{
			"$inc": bson.M{"stock": qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		}
	} else {
		filter = bson.M{"_id": id, "sizes.size": size}
		update = bson.M{
			"$inc": bson.M{"sizes.$.stock": qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		}
	}
	if _, err := r.col.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("products: restore stock %s/%s: %w", id.Hex(), size, err)
	}
	return nil
}
