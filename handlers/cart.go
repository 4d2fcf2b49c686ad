package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"vertexcore-storefront/events"
	"vertexcore-storefront/models"
	"vertexcore-storefront/store"
	"vertexcore-storefront/utils"
)

// PackageFinder is the slice of the commerce client the cart handler needs
// to validate adds against the live catalog.
type PackageFinder interface {
	FindPackage(ctx context.Context, id int) (*models.Package, error)
}

type CartHandler struct {
	cart    *store.CartStore
	catalog PackageFinder
	bus     *events.Bus
}

func NewCartHandler(cart *store.CartStore, catalog PackageFinder, bus *events.Bus) *CartHandler {
	return &CartHandler{cart: cart, catalog: catalog, bus: bus}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, http.StatusOK, h.cartResponse(r))
}

// AddToCart validates the package against the catalog and stores the
// catalog's own name/price/image; the client only names the id. A package
// already in the cart is a no-op.
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PackageID int `json:"package_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding request body: %v", err)
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PackageID <= 0 {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Missing package_id")
		return
	}

	pkg, err := h.catalog.FindPackage(r.Context(), req.PackageID)
	if err != nil {
		log.Printf("Error looking up package %d: %v", req.PackageID, err)
		utils.SendErrorResponse(w, http.StatusBadGateway, "Store catalog unavailable")
		return
	}
	if pkg == nil {
		utils.SendErrorResponse(w, http.StatusNotFound, "Package not found")
		return
	}

	added, err := h.cart.Add(w, r, models.CartItem{
		PackageID: pkg.ID,
		Name:      pkg.Name,
		Price:     pkg.Price,
		Quantity:  1,
		Image:     pkg.Image,
	})
	if err != nil {
		log.Printf("Error saving cart: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	utils.SendJSON(w, status, h.cartResponse(r))
}

func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req models.RemoveFromCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding request body: %v", err)
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.cart.Remove(w, r, req.PackageID); err != nil {
		log.Printf("Error saving cart: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	utils.SendJSON(w, http.StatusOK, h.cartResponse(r))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(w, r); err != nil {
		log.Printf("Error saving cart: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	utils.SendJSON(w, http.StatusOK, h.cartResponse(r))
}

// OpenCart asks every open page of this visitor's browser to show the cart
// panel.
func (h *CartHandler) OpenCart(w http.ResponseWriter, r *http.Request) {
	if h.bus != nil {
		if err := h.bus.Publish(r.Context(), events.Event{Type: events.TypeCartOpen}); err != nil {
			log.Printf("Warning: failed to publish cart open: %v", err)
		}
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *CartHandler) cartResponse(r *http.Request) models.CartResponse {
	items := h.cart.Get(r)
	var count int
	for _, it := range items {
		count += it.Quantity
	}
	return models.CartResponse{
		Items:     items,
		ItemCount: count,
		CartTotal: utils.CartTotal(items),
	}
}
