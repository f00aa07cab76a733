package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/app/repositories"
)

type fakeCatalogStore struct {
	products map[primitive.ObjectID]*models.Product
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{products: map[primitive.ObjectID]*models.Product{}}
}

func (s *fakeCatalogStore) Create(_ context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	s.products[p.ID] = p
	return nil
}

func (s *fakeCatalogStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *fakeCatalogStore) List(_ context.Context, _ repositories.ListFilter) ([]models.Product, int64, error) {
	out := []models.Product{}
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (s *fakeCatalogStore) Update(_ context.Context, id primitive.ObjectID, set bson.M) error {
	p, ok := s.products[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if name, ok := set["name"].(string); ok {
		p.Name = name
	}
	if cat, ok := set["category"].(string); ok {
		p.Category = cat
	}
	return nil
}

func (s *fakeCatalogStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := s.products[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.products, id)
	return nil
}

func validInput() ProductInput {
	return ProductInput{
		Name:        "Chikankari Kurta",
		Description: "White cotton kurta.",
		Price:       1499,
		Category:    "kurtas", // lower case on purpose
		Sizes: []models.SizeStock{
			{Size: "M", Stock: 10},
		},
	}
}

func TestCreateCanonicalizesCategory(t *testing.T) {
	svc := NewCatalogService(newFakeCatalogStore())
	p, err := svc.Create(context.Background(), validInput(), primitive.NilObjectID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryKurtas, p.Category)
	assert.NotEmpty(t, p.ID)
	assert.NotNil(t, p.Images)
}

func TestCreateRecordsCreator(t *testing.T) {
	store := newFakeCatalogStore()
	svc := NewCatalogService(store)
	admin := primitive.NewObjectID()

	p, err := svc.Create(context.Background(), validInput(), admin)
	require.NoError(t, err)
	assert.Equal(t, admin, p.CreatedBy)
	assert.Equal(t, admin, store.products[p.ID].CreatedBy)
}

func TestCreateFlatStockProduct(t *testing.T) {
	svc := NewCatalogService(newFakeCatalogStore())
	in := validInput()
	in.Category = "Accessories"
	in.Sizes = nil
	in.Stock = 25

	p, err := svc.Create(context.Background(), in, primitive.NilObjectID)
	require.NoError(t, err)
	assert.Empty(t, p.Sizes)
	assert.Equal(t, 25, p.Stock)
	assert.Equal(t, 25, p.TotalStock())
}

func TestCreateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProductInput)
	}{
		{"unknown category", func(in *ProductInput) { in.Category = "Jackets" }},
		{"unknown size", func(in *ProductInput) { in.Sizes[0].Size = "XXXL" }},
		{"negative stock", func(in *ProductInput) { in.Sizes[0].Stock = -1 }},
		{"negative flat stock", func(in *ProductInput) {
			in.Sizes = nil
			in.Stock = -5
		}},
		{"sizes and flat stock together", func(in *ProductInput) { in.Stock = 10 }},
		{"duplicate size", func(in *ProductInput) {
			in.Sizes = append(in.Sizes, models.SizeStock{Size: "M", Stock: 2})
		}},
	}

	svc := NewCatalogService(newFakeCatalogStore())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in, primitive.NilObjectID)
			var iv ErrInvalidProduct
			assert.ErrorAs(t, err, &iv)
		})
	}
}

func TestGetMissingProduct(t *testing.T) {
	svc := NewCatalogService(newFakeCatalogStore())
	_, err := svc.Get(context.Background(), primitive.NewObjectID())
	var nf ErrProductNotFound
	assert.ErrorAs(t, err, &nf)
}

func TestUpdateMissingProduct(t *testing.T) {
	svc := NewCatalogService(newFakeCatalogStore())
	_, err := svc.Update(context.Background(), primitive.NewObjectID(), validInput())
	var nf ErrProductNotFound
	assert.ErrorAs(t, err, &nf)
}
