package handlers

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"vertexcore-storefront/checkout"
	"vertexcore-storefront/models"
	"vertexcore-storefront/store"
	"vertexcore-storefront/utils"
)

type AuthHandler struct {
	orch  *checkout.Orchestrator
	users *store.UserStore
	flags *store.CheckoutState
}

func NewAuthHandler(orch *checkout.Orchestrator, users *store.UserStore, flags *store.CheckoutState) *AuthHandler {
	return &AuthHandler{orch: orch, users: users, flags: flags}
}

// Login runs the auth-only basket dance: the provider has no standalone
// login endpoint, so an empty basket is created purely to get an auth
// redirect out of it.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	returnTo := safeReturnTo(r.URL.Query().Get("returnTo"))

	authURL, err := h.orch.BeginAuthOnly(r.Context(), returnTo)
	if err != nil {
		log.Printf("Login flow failed: %v", err)
		renderStatusPage(w, flowErrorStatus(err), "Login", flowErrorMessage(err))
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// AuthReturn captures the identity the provider attached to the basket and
// resumes a parked checkout when the pending flag says there is one. The
// flag is cleared as the resume fires so a reload of this page cannot
// trigger checkout twice.
func (h *AuthHandler) AuthReturn(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ident := query.Get("basket")
	returnTo := safeReturnTo(query.Get("returnTo"))

	if ident != "" {
		user, err := h.orch.FetchIdentity(r.Context(), ident)
		if err != nil {
			// Login capture is best effort; the visitor still gets back
			// to where they came from.
			log.Printf("Basket %s: identity capture failed: %v", ident, err)
			http.Redirect(w, r, returnTo, http.StatusFound)
			return
		}
		if !user.IsEmpty() {
			if err := h.users.Set(w, user); err != nil {
				log.Printf("Error saving identity: %v", err)
			}
		}
	}

	if ident != "" && h.flags.PendingCheckout(r) {
		if err := h.flags.ClearPendingCheckout(w, r); err != nil {
			log.Printf("Error clearing pending checkout: %v", err)
		}
		http.Redirect(w, r, "/checkout/return?basket="+url.QueryEscape(ident), http.StatusFound)
		return
	}

	http.Redirect(w, r, returnTo, http.StatusFound)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.users.Clear(w)
	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Logged out",
	})
}

// safeReturnTo restricts the post-login destination to local paths; the
// returnTo parameter crosses the external redirect boundary and cannot be
// trusted.
func safeReturnTo(returnTo string) string {
	if returnTo == "" ||
		!strings.HasPrefix(returnTo, "/") ||
		strings.HasPrefix(returnTo, "//") ||
		strings.HasPrefix(returnTo, "/\\") {
		return "/"
	}
	return returnTo
}
