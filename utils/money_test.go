package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vertexcore-storefront/models"
	"vertexcore-storefront/utils"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 10.56, utils.Round(10.556))
	assert.Equal(t, 0.1, utils.Round(0.1+0.2-0.2))
	assert.Equal(t, 0.0, utils.Round(0))
}

func TestCartTotal(t *testing.T) {
	items := []models.CartItem{
		{PackageID: 7, Price: 14.99, Quantity: 1},
		{PackageID: 9, Price: 4.50, Quantity: 2},
	}
	assert.Equal(t, 23.99, utils.CartTotal(items))

	assert.Equal(t, 0.0, utils.CartTotal(nil))
}
