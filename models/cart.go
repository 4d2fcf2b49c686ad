package models

// CartItem is one line of the visitor's local cart. The cart is unique by
// PackageID; quantity is pinned to 1 for digital packages, so a repeat add of
// the same package is a no-op.
type CartItem struct {
	PackageID int     `json:"package_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

type CartResponse struct {
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"item_count"`
	CartTotal float64    `json:"cart_total"`
}

type RemoveFromCartRequest struct {
	PackageID int `json:"package_id"`
}
