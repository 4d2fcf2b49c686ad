package models

// Package is a purchasable digital package, flattened from the provider's
// category listing for the storefront grid.
type Package struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

type CatalogResponse struct {
	Categories []string  `json:"categories"`
	Packages   []Package `json:"packages"`
}
