package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastrahub/vastra/pkg/bind"
)

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func request(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
}

func TestJSONValid(t *testing.T) {
	var in loginInput
	errs, err := bind.JSON(request(`{"email":"asha@example.com","password":"s3cret-pass"}`), &in)
	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Equal(t, "asha@example.com", in.Email)
}

func TestJSONValidationErrors(t *testing.T) {
	var in loginInput
	errs, err := bind.JSON(request(`{"email":"nope","password":"short"}`), &in)
	require.NoError(t, err)
	require.NotNil(t, errs)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestJSONMalformedBody(t *testing.T) {
	var in loginInput
	errs, err := bind.JSON(request(`{"email":`), &in)
	assert.Error(t, err)
	assert.Nil(t, errs)
}
