package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sarees", "Sarees"},
		{"sarees", "Sarees"},
		{"SAREES", "Sarees"},
		{"kUrTaS", "Kurtas"},
		{"Accessories", "Accessories"},
		{"Jackets", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalCategory(tt.in), tt.in)
		assert.Equal(t, tt.want != "", ValidCategory(tt.in), tt.in)
	}
}

func TestValidSize(t *testing.T) {
	for _, s := range Sizes {
		assert.True(t, ValidSize(s), s)
	}
	assert.False(t, ValidSize("m")) // size codes are upper-case
	assert.False(t, ValidSize("XXXL"))
	assert.False(t, ValidSize(""))
}

func TestStockHelpers(t *testing.T) {
	p := Product{Sizes: []SizeStock{
		{Size: "S", Stock: 3},
		{Size: "M", Stock: 0},
	}}

	assert.Equal(t, 3, p.StockFor("S"))
	assert.Equal(t, 0, p.StockFor("M"))
	assert.Equal(t, 0, p.StockFor("L")) // size not carried

	assert.True(t, p.HasSize("M")) // carried even at zero stock
	assert.False(t, p.HasSize("L"))

	assert.Equal(t, 3, p.TotalStock())
}

func TestFlatStockHelpers(t *testing.T) {
	p := Product{Stock: 7}

	// No sizes list, so the flat count answers regardless of the
	// requested size.
	assert.Equal(t, 7, p.StockFor(""))
	assert.Equal(t, 7, p.StockFor("M"))
	assert.Equal(t, 7, p.TotalStock())

	neg := Product{Stock: -2}
	assert.Equal(t, 0, neg.StockFor(""))
	assert.Equal(t, 0, neg.TotalStock())

	// A sized product asked without a size falls back to its flat
	// field, which is zero for sized products.
	sized := Product{Sizes: []SizeStock{{Size: "S", Stock: 4}}}
	assert.Equal(t, 0, sized.StockFor(""))
}
