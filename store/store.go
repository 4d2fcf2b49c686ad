// Package store holds the visitor-scoped state: the cart, the captured user
// identity and the short-lived checkout flags. Everything lives in signed
// cookies, so state stays on the browser that owns it and survives the full
// page navigations of the external auth/payment handoff.
package store

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"

	"vertexcore-storefront/config"
	"vertexcore-storefront/models"
)

const sessionName = "storefront-session"

func init() {
	gob.Register([]models.CartItem{})
}

// Sessions wraps the shared cookie store. Cart and checkout flags share one
// session record; gorilla's per-request registry guarantees all accessors in
// a request see the same instance, so the last Save carries every mutation.
type Sessions struct {
	cookies *sessions.CookieStore
}

func NewSessions(cfg config.SessionConfig) *Sessions {
	cs := sessions.NewCookieStore([]byte(cfg.Secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   cfg.MaxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{cookies: cs}
}

func (s *Sessions) session(r *http.Request) (*sessions.Session, error) {
	return s.cookies.Get(r, sessionName)
}
