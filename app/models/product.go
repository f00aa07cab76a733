// Package models defines the persisted documents and their domain rules.
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Categories a product may belong to.
const (
	CategorySarees      = "Sarees"
	CategoryKurtas      = "Kurtas"
	CategoryShirts      = "Shirts"
	CategoryDresses     = "Dresses"
	CategoryAccessories = "Accessories"
)

// Categories lists every valid category in display order.
var Categories = []string{
	CategorySarees,
	CategoryKurtas,
	CategoryShirts,
	CategoryDresses,
	CategoryAccessories,
}

// Sizes lists every valid garment size.
var Sizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

// SizeStock tracks remaining stock for one size of a product.
type SizeStock struct {
	Size  string `bson:"size" json:"size"`
	Stock int    `bson:"stock" json:"stock"`
}

// Image is an uploaded product photo. FileID is the storage key used
// to delete the object later.
type Image struct {
	URL    string `bson:"url" json:"url"`
	FileID string `bson:"fileId" json:"fileId"`
}

// Product is a catalog item. Stock is tracked either per size in Sizes
// or as one flat Stock count for products that do not come in sizes.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	Price        float64            `bson:"price" json:"price"`
	Category     string             `bson:"category" json:"category"`
	Sizes        []SizeStock        `bson:"sizes" json:"sizes"`
	Stock        int                `bson:"stock" json:"stock"`
	Images       []Image            `bson:"images" json:"images"`
	VariantGroup string             `bson:"variantGroup,omitempty" json:"variantGroup,omitempty"`
	CreatedBy    primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ValidCategory reports whether c matches a known category,
// ignoring case.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if strings.EqualFold(known, c) {
			return true
		}
	}
	return false
}

// CanonicalCategory maps a case-insensitive category name to its
// canonical form. Returns "" when unknown.
func CanonicalCategory(c string) string {
	for _, known := range Categories {
		if strings.EqualFold(known, c) {
			return known
		}
	}
	return ""
}

// ValidSize reports whether s is a known size. Sizes are compared
// case-sensitively; the API always deals in upper-case codes.
func ValidSize(s string) bool {
	for _, known := range Sizes {
		if known == s {
			return true
		}
	}
	return false
}

// StockFor returns the available stock for a requested size. When a
// size is given and the product tracks sizes, the exact entry counts
// (a size the product does not carry is 0). Otherwise the flat Stock
// field applies. Negative stored values read as 0.
func (p *Product) StockFor(size string) int {
	if size != "" && len(p.Sizes) > 0 {
		for _, ss := range p.Sizes {
			if ss.Size == size {
				if ss.Stock < 0 {
					return 0
				}
				return ss.Stock
			}
		}
		return 0
	}
	if p.Stock < 0 {
		return 0
	}
	return p.Stock
}

// HasSize reports whether the product carries the given size at all,
// regardless of remaining stock.
func (p *Product) HasSize(size string) bool {
	for _, ss := range p.Sizes {
		if ss.Size == size {
			return true
		}
	}
	return false
}

// TotalStock sums remaining stock across all sizes, or returns the
// flat count for products without sizes.
func (p *Product) TotalStock() int {
	if len(p.Sizes) == 0 {
		if p.Stock < 0 {
			return 0
		}
		return p.Stock
	}
	total := 0
	for _, ss := range p.Sizes {
		total += ss.Stock
	}
	return total
}
