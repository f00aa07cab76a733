package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/app/repositories"
	"github.com/vastrahub/vastra/pkg/cache"
	"github.com/vastrahub/vastra/pkg/crypt"
	"github.com/vastrahub/vastra/pkg/logger"
	"github.com/vastrahub/vastra/pkg/storage"
)

const productCacheTTL = 10 * time.Minute

// CatalogStore is what the catalog needs from product storage.
type CatalogStore interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, f repositories.ListFilter) ([]models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ErrInvalidProduct flags a product payload that breaks a catalog rule.
type ErrInvalidProduct struct {
	Reason string
}

func (e ErrInvalidProduct) Error() string { return e.Reason }

// CatalogService manages the product catalog. Single-product reads go
// through the cache; every write invalidates the cached copy.
type CatalogService struct {
	products CatalogStore
}

// NewCatalogService wires the catalog.
func NewCatalogService(products CatalogStore) *CatalogService {
	return &CatalogService{products: products}
}

// ProductInput carries the writable product fields. A product tracks
// stock either per size or as one flat count, not both.
type ProductInput struct {
	Name         string             `json:"name" validate:"required,min=2,max=120"`
	Description  string             `json:"description" validate:"required"`
	Price        float64            `json:"price" validate:"required,gt=0"`
	Category     string             `json:"category" validate:"required"`
	Sizes        []models.SizeStock `json:"sizes" validate:"nullable"`
	Stock        int                `json:"stock" validate:"nullable"`
	VariantGroup string             `json:"variantGroup" validate:"nullable"`
}

func (s *CatalogService) validateInput(in ProductInput) error {
	canonical := models.CanonicalCategory(in.Category)
	if canonical == "" {
		return ErrInvalidProduct{Reason: fmt.Sprintf("unknown category %q", in.Category)}
	}
	if in.Stock < 0 {
		return ErrInvalidProduct{Reason: "stock cannot be negative"}
	}
	if len(in.Sizes) > 0 && in.Stock > 0 {
		return ErrInvalidProduct{Reason: "provide either sizes or a flat stock count, not both"}
	}
	seen := map[string]bool{}
	for _, ss := range in.Sizes {
		if !models.ValidSize(ss.Size) {
			return ErrInvalidProduct{Reason: fmt.Sprintf("unknown size %q", ss.Size)}
		}
		if ss.Stock < 0 {
			return ErrInvalidProduct{Reason: "stock cannot be negative"}
		}
		if seen[ss.Size] {
			return ErrInvalidProduct{Reason: fmt.Sprintf("duplicate size %q", ss.Size)}
		}
		seen[ss.Size] = true
	}
	return nil
}

// Create adds a product to the catalog, recording who created it.
func (s *CatalogService) Create(ctx context.Context, in ProductInput, createdBy primitive.ObjectID) (*models.Product, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	p := &models.Product{
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Category:     models.CanonicalCategory(in.Category),
		Sizes:        in.Sizes,
		Stock:        in.Stock,
		Images:       []models.Image{},
		VariantGroup: in.VariantGroup,
		CreatedBy:    createdBy,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List pages the catalog.
func (s *CatalogService) List(ctx context.Context, f repositories.ListFilter) ([]models.Product, int64, error) {
	return s.products.List(ctx, f)
}

// Get returns one product, serving repeat reads from the cache.
func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	key := productCacheKey(id)
	var cached models.Product
	if cache.Get(key, &cached) {
		return &cached, nil
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound{ProductID: id.Hex()}
	}

	if err := cache.Set(key, p, productCacheTTL); err != nil {
		logger.Warn("catalog: cache set failed", "product", id.Hex(), "error", err)
	}
	return p, nil
}

// Update replaces the writable fields of a product.
func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, in ProductInput) (*models.Product, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	set := bson.M{
		"name":         in.Name,
		"description":  in.Description,
		"price":        in.Price,
		"category":     models.CanonicalCategory(in.Category),
		"sizes":        in.Sizes,
		"stock":        in.Stock,
		"variantGroup": in.VariantGroup,
	}
	if err := s.products.Update(ctx, id, set); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound{ProductID: id.Hex()}
		}
		return nil, err
	}
	s.invalidate(id)
	return s.products.FindByID(ctx, id)
}

// Delete removes a product and its uploaded images. Existing order
// snapshots keep their copies of name, price and image URL.
func (s *CatalogService) Delete(ctx context.Context, id primitive.ObjectID) error {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProductNotFound{ProductID: id.Hex()}
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrProductNotFound{ProductID: id.Hex()}
		}
		return err
	}

	disk := storage.Default()
	for _, img := range p.Images {
		if img.FileID == "" {
			continue
		}
		if err := disk.Delete(img.FileID); err != nil {
			logger.Warn("catalog: image cleanup failed", "file", img.FileID, "error", err)
		}
	}
	s.invalidate(id)
	return nil
}

// AddImage stores an uploaded photo and attaches it to the product.
func (s *CatalogService) AddImage(ctx context.Context, id primitive.ObjectID, filename string, content []byte) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound{ProductID: id.Hex()}
	}

	token, err := crypt.RandomToken()
	if err != nil {
		return nil, err
	}
	disk := storage.Default()
	fileID := path.Join("products", id.Hex(), token[:16]+"-"+path.Base(filename))
	if err := disk.Put(fileID, content); err != nil {
		return nil, err
	}

	images := append(p.Images, models.Image{URL: disk.URL(fileID), FileID: fileID})
	if err := s.products.Update(ctx, id, bson.M{"images": images}); err != nil {
		return nil, err
	}
	s.invalidate(id)
	p.Images = images
	return p, nil
}

func (s *CatalogService) invalidate(id primitive.ObjectID) {
	if err := cache.Del(productCacheKey(id)); err != nil {
		logger.Warn("catalog: cache invalidation failed", "product", id.Hex(), "error", err)
	}
}

func productCacheKey(id primitive.ObjectID) string {
	return "vastra:product:" + id.Hex()
}
