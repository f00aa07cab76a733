package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusDelivered, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusRefunded, true},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusProcessing, false},
		{StatusRefunded, StatusDelivered, false},
		{StatusPending, StatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("unknown"))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("Pending")) // statuses are lower-case
}

func TestStockRestorable(t *testing.T) {
	assert.True(t, (&Order{Status: StatusPending}).StockRestorable())
	assert.True(t, (&Order{Status: StatusProcessing}).StockRestorable())
	assert.False(t, (&Order{Status: StatusShipped}).StockRestorable())
	assert.False(t, (&Order{Status: StatusDelivered}).StockRestorable())
	assert.False(t, (&Order{Status: StatusCancelled}).StockRestorable())
}
