package seeders

import (
	"context"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/app/repositories"
	"github.com/vastrahub/vastra/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
)

func init() {
	Register("products", SeedProducts)
}

// SeedProducts fills an empty catalog with demo garments.
func SeedProducts(ctx context.Context) error {
	col := database.Collection(database.ColProducts)
	n, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil // already seeded
	}

	repo := repositories.NewProductRepository()
	demo := []models.Product{
		{
			Name:        "Banarasi Silk Saree",
			Description: "Handwoven Banarasi silk saree with zari border.",
			Price:       4999,
			Category:    models.CategorySarees,
			Sizes: []models.SizeStock{
				{Size: "M", Stock: 8},
				{Size: "L", Stock: 5},
			},
		},
		{
			Name:        "Chikankari Kurta",
			Description: "White cotton kurta with Lucknowi chikankari embroidery.",
			Price:       1499,
			Category:    models.CategoryKurtas,
			Sizes: []models.SizeStock{
				{Size: "S", Stock: 12},
				{Size: "M", Stock: 15},
				{Size: "L", Stock: 10},
				{Size: "XL", Stock: 6},
			},
		},
		{
			Name:        "Linen Casual Shirt",
			Description: "Breathable full-sleeve linen shirt in sky blue.",
			Price:       1199,
			Category:    models.CategoryShirts,
			Sizes: []models.SizeStock{
				{Size: "M", Stock: 20},
				{Size: "L", Stock: 18},
				{Size: "XXL", Stock: 4},
			},
		},
		{
			Name:        "Floral Summer Dress",
			Description: "A-line midi dress in floral georgette.",
			Price:       1899,
			Category:    models.CategoryDresses,
			Sizes: []models.SizeStock{
				{Size: "XS", Stock: 5},
				{Size: "S", Stock: 9},
				{Size: "M", Stock: 11},
			},
		},
		{
			Name:        "Jaipuri Potli Bag",
			Description: "Hand-embellished potli bag with drawstring closure.",
			Price:       699,
			Category:    models.CategoryAccessories,
			// One-size accessory, tracked as a flat count.
			Stock: 30,
		},
	}

	for i := range demo {
		if err := repo.Create(ctx, &demo[i]); err != nil {
			return err
		}
	}
	return nil
}
