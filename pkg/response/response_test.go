package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastrahub/vastra/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestOKInlinesPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	response.OK(rec, response.Payload{"product": map[string]interface{}{"name": "Silk Saree"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	product := body["product"].(map[string]interface{})
	assert.Equal(t, "Silk Saree", product["name"])
	_, hasMessage := body["message"]
	assert.False(t, hasMessage)
}

func TestCreatedStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Created(rec, response.Payload{"order": "x"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
}

func TestFailEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.NotFound(rec, "Product not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Product not found", body["message"])
}

func TestValidationFail(t *testing.T) {
	rec := httptest.NewRecorder()
	response.ValidationFail(rec, map[string]string{"email": "The email field is required."})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation failed", body["message"])
	errs := body["errors"].(map[string]interface{})
	assert.Equal(t, "The email field is required.", errs["email"])
}
