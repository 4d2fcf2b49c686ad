package utils

import (
	"math"

	"vertexcore-storefront/models"
)

// Round keeps currency math at two decimals.
func Round(value float64) float64 {
	return math.Round(value*100) / 100
}

// CartTotal sums price*quantity over the cart lines.
func CartTotal(items []models.CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return Round(total)
}
