package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"vertexcore-storefront/checkout"
	"vertexcore-storefront/services/commerce"
	"vertexcore-storefront/store"
)

type CheckoutHandler struct {
	orch  *checkout.Orchestrator
	cart  *store.CartStore
	users *store.UserStore
	flags *store.CheckoutState
}

func NewCheckoutHandler(orch *checkout.Orchestrator, cart *store.CartStore, users *store.UserStore, flags *store.CheckoutState) *CheckoutHandler {
	return &CheckoutHandler{orch: orch, cart: cart, users: users, flags: flags}
}

// StartCheckout begins a checkout attempt. The login gate runs before any
// remote call: an anonymous visitor is parked behind the pending-checkout
// flag and sent to the login page, so no basket is created for someone who
// may abandon at login.
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	cart := h.cart.Get(r)
	if len(cart) == 0 {
		renderStatusPage(w, http.StatusBadRequest, "Checkout", "Cart is empty.")
		return
	}

	if h.users.Get(r).IsEmpty() {
		if err := h.flags.SetPendingCheckout(w, r); err != nil {
			log.Printf("Error saving session: %v", err)
			renderStatusPage(w, http.StatusInternalServerError, "Checkout", "Failed to start checkout.")
			return
		}
		http.Redirect(w, r, "/login?returnTo="+url.QueryEscape("/cart"), http.StatusSeeOther)
		return
	}

	// Logged in: make sure a stale pending flag cannot re-trigger later.
	if err := h.flags.ClearPendingCheckout(w, r); err != nil {
		log.Printf("Error clearing pending checkout: %v", err)
	}

	attemptID := uuid.New().String()
	result, err := h.orch.Begin(r.Context(), attemptID, cart)
	if err != nil {
		log.Printf("Checkout %s failed: %v", attemptID, err)
		renderStatusPage(w, flowErrorStatus(err), "Checkout", flowErrorMessage(err))
		return
	}

	if result.CheckoutURL != "" {
		if err := h.cart.Clear(w, r); err != nil {
			log.Printf("Error clearing cart: %v", err)
		}
		http.Redirect(w, r, result.CheckoutURL, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, result.AuthURL, http.StatusSeeOther)
}

// CheckoutReturn is where the provider lands the browser after its own auth
// redirect. The basket ident on the URL and the cookie state are all that is
// left of the attempt.
func (h *CheckoutHandler) CheckoutReturn(w http.ResponseWriter, r *http.Request) {
	ident := r.URL.Query().Get("basket")
	if ident == "" {
		h.clearPending(w, r)
		renderStatusPage(w, http.StatusBadRequest, "Checkout", "Missing basket ident. Try checkout again.")
		return
	}

	cart := h.cart.Get(r)
	if len(cart) == 0 {
		// No retry from here; the visitor restarts checkout manually.
		h.clearPending(w, r)
		renderStatusPage(w, http.StatusBadRequest, "Checkout", "Cart is empty. Go back and add items again.")
		return
	}

	// Idempotency guard: a reload or back-navigation of this page must not
	// submit the line items twice.
	if h.flags.ItemsAdded(r, ident) {
		log.Printf("Basket %s: items already attached, skipping submission", ident)
	} else {
		if err := h.orch.AddItems(r.Context(), ident, cart); err != nil {
			log.Printf("Basket %s: item submission failed: %v", ident, err)
			h.clearPending(w, r)
			renderStatusPage(w, flowErrorStatus(err), "Checkout", flowErrorMessage(err))
			return
		}
		if err := h.flags.MarkItemsAdded(w, r, ident); err != nil {
			log.Printf("Error saving session: %v", err)
		}
	}

	result, err := h.orch.Finalize(r.Context(), ident)
	if err != nil {
		log.Printf("Basket %s: finalize failed: %v", ident, err)
		h.clearPending(w, r)
		renderStatusPage(w, flowErrorStatus(err), "Checkout", flowErrorMessage(err))
		return
	}

	// Opportunistic capture of the identity the provider attached during
	// its auth round trip.
	if !result.Identity.IsEmpty() {
		if err := h.users.Set(w, result.Identity); err != nil {
			log.Printf("Error saving identity: %v", err)
		}
	}

	if err := h.cart.Clear(w, r); err != nil {
		log.Printf("Error clearing cart: %v", err)
	}
	h.clearPending(w, r)
	if err := h.flags.ClearItemsAdded(w, r, ident); err != nil {
		log.Printf("Error clearing items-added lock: %v", err)
	}

	http.Redirect(w, r, result.CheckoutURL, http.StatusFound)
}

func (h *CheckoutHandler) clearPending(w http.ResponseWriter, r *http.Request) {
	if err := h.flags.ClearPendingCheckout(w, r); err != nil {
		log.Printf("Error clearing pending checkout: %v", err)
	}
}

func flowErrorMessage(err error) string {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return "Cart is empty."
	case errors.Is(err, commerce.ErrMissingBasketIdent):
		return "No basket ident returned by the store. Try checkout again."
	case errors.Is(err, commerce.ErrMissingCheckoutURL):
		return "Checkout URL not found on basket."
	case errors.Is(err, commerce.ErrNoAuthProviders):
		return "No login providers available. Check the store's auth settings."
	}

	var reqErr *commerce.RequestError
	if errors.As(err, &reqErr) {
		return err.Error()
	}
	return "Failed to continue to checkout."
}

func flowErrorStatus(err error) int {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, commerce.ErrMissingBasketIdent),
		errors.Is(err, commerce.ErrMissingCheckoutURL),
		errors.Is(err, commerce.ErrNoAuthProviders):
		return http.StatusBadGateway
	}

	var reqErr *commerce.RequestError
	if errors.As(err, &reqErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
