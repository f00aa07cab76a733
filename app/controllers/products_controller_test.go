package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/app/repositories"
	"github.com/vastrahub/vastra/app/services"
)

type stubCatalogStore struct {
	products []models.Product
	total    int64
}

func (s *stubCatalogStore) Create(_ context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	s.products = append(s.products, *p)
	return nil
}

func (s *stubCatalogStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	return nil, nil
}

func (s *stubCatalogStore) List(_ context.Context, f repositories.ListFilter) ([]models.Product, int64, error) {
	return s.products, s.total, nil
}

func (s *stubCatalogStore) Update(_ context.Context, id primitive.ObjectID, set bson.M) error {
	return nil
}

func (s *stubCatalogStore) Delete(_ context.Context, id primitive.ObjectID) error {
	return nil
}

func TestProductsIndexEnvelope(t *testing.T) {
	store := &stubCatalogStore{
		products: []models.Product{{Name: "Silk Saree"}},
		total:    25,
	}
	c := NewProductController(services.NewCatalogService(store))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	c.Index(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "products")
	assert.Equal(t, float64(25), body["totalCount"])
	assert.Equal(t, float64(3), body["totalPages"]) // 25 products, 12 per page
}
