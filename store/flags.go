package store

import (
	"log"
	"net/http"
)

const (
	pendingCheckoutKey = "pending_checkout"
	itemsAddedPrefix   = "basket_items_added:"
)

// CheckoutState keeps the two short-lived flags of a checkout attempt: the
// pending-checkout marker set when checkout is deferred to login, and the
// per-basket items-added lock that stops line items being submitted twice
// when the return page is reloaded. Both must be cleared on every terminal
// path; a stale pending flag would auto-trigger checkout on an unrelated
// visit.
type CheckoutState struct {
	sessions *Sessions
}

func NewCheckoutState(sessions *Sessions) *CheckoutState {
	return &CheckoutState{sessions: sessions}
}

func (s *CheckoutState) PendingCheckout(r *http.Request) bool {
	return s.get(r, pendingCheckoutKey) == "1"
}

func (s *CheckoutState) SetPendingCheckout(w http.ResponseWriter, r *http.Request) error {
	return s.set(w, r, pendingCheckoutKey, "1")
}

func (s *CheckoutState) ClearPendingCheckout(w http.ResponseWriter, r *http.Request) error {
	return s.clear(w, r, pendingCheckoutKey)
}

func (s *CheckoutState) ItemsAdded(r *http.Request, ident string) bool {
	return s.get(r, itemsAddedPrefix+ident) == "1"
}

func (s *CheckoutState) MarkItemsAdded(w http.ResponseWriter, r *http.Request, ident string) error {
	return s.set(w, r, itemsAddedPrefix+ident, "1")
}

func (s *CheckoutState) ClearItemsAdded(w http.ResponseWriter, r *http.Request, ident string) error {
	return s.clear(w, r, itemsAddedPrefix+ident)
}

func (s *CheckoutState) get(r *http.Request, key string) string {
	session, err := s.sessions.session(r)
	if err != nil {
		log.Printf("Error getting session: %v", err)
		return ""
	}
	value, _ := session.Values[key].(string)
	return value
}

func (s *CheckoutState) set(w http.ResponseWriter, r *http.Request, key, value string) error {
	session, err := s.sessions.session(r)
	if err != nil {
		return err
	}
	session.Values[key] = value
	return session.Save(r, w)
}

func (s *CheckoutState) clear(w http.ResponseWriter, r *http.Request, key string) error {
	session, err := s.sessions.session(r)
	if err != nil {
		return err
	}
	delete(session.Values, key)
	return session.Save(r, w)
}
