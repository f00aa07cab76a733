package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/app/services"
)

type stubProductStore struct {
	products map[primitive.ObjectID]*models.Product
}

func (s *stubProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *stubProductStore) ReserveStock(_ context.Context, id primitive.ObjectID, size string, qty int) (bool, error) {
	p, ok := s.products[id]
	if !ok {
		return false, nil
	}
	if size == "" {
		if p.Stock < qty {
			return false, nil
		}
		p.Stock -= qty
		return true, nil
	}
	for i, ss := range p.Sizes {
		if ss.Size == size && ss.Stock >= qty {
			p.Sizes[i].Stock -= qty
			return true, nil
		}
	}
	return false, nil
}

func (s *stubProductStore) RestoreStock(_ context.Context, id primitive.ObjectID, size string, qty int) error {
	return nil
}

type stubOrderStore struct {
	created []*models.Order
	orders  []models.Order
	total   int64
}

func (s *stubOrderStore) Create(_ context.Context, o *models.Order) error {
	o.ID = primitive.NewObjectID()
	s.created = append(s.created, o)
	return nil
}

func (s *stubOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	return nil, nil
}

func (s *stubOrderStore) List(_ context.Context, status string, userID *primitive.ObjectID, page, limit int) ([]models.Order, int64, error) {
	return s.orders, s.total, nil
}

func (s *stubOrderStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	return nil
}

func (s *stubOrderStore) Delete(_ context.Context, id primitive.ObjectID) error {
	return nil
}

func newOrderController(products *stubProductStore, orders *stubOrderStore) *OrderController {
	checkout := services.NewCheckoutService(products, orders, nil)
	mgmt := services.NewOrderService(orders, products, nil)
	return NewOrderController(checkout, mgmt)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestStoreAcceptsMinimalCustomer(t *testing.T) {
	id := primitive.NewObjectID()
	products := &stubProductStore{products: map[primitive.ObjectID]*models.Product{
		id: {
			ID:    id,
			Name:  "Silk Saree",
			Price: 499,
			Sizes: []models.SizeStock{{Size: "M", Stock: 5}},
		},
	}}
	orders := &stubOrderStore{}
	c := newOrderController(products, orders)

	// Only name, phone and address; no email, city or pincode.
	payload := `{
		"name": "Asha Verma",
		"phone": "9876543210",
		"address": "14 MG Road",
		"items": [{"productId": "` + id.Hex() + `", "name": "Saree", "price": 499, "size": "M", "quantity": 1}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	c.Store(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	require.Len(t, orders.created, 1)
	assert.Equal(t, "", orders.created[0].Customer.Email)
}

func TestStoreValidatesEmailWhenPresent(t *testing.T) {
	c := newOrderController(&stubProductStore{}, &stubOrderStore{})

	payload := `{
		"name": "Asha Verma",
		"email": "not-an-email",
		"phone": "9876543210",
		"address": "14 MG Road",
		"items": [{"productId": "ffffffffffffffffffffffff", "name": "Saree", "price": 1, "quantity": 1}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	c.Store(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	errs, ok := body["errors"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, errs, "email")
}

func TestOrdersIndexEnvelope(t *testing.T) {
	orders := &stubOrderStore{
		orders: []models.Order{{Status: models.StatusPending}},
		total:  45,
	}
	c := newOrderController(&stubProductStore{}, orders)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	rec := httptest.NewRecorder()
	c.Index(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "orders")
	assert.Equal(t, float64(45), body["totalCount"])
	assert.Equal(t, float64(3), body["totalPages"]) // 45 orders, 20 per page
}
