package store

import (
	"log"
	"net/http"

	"vertexcore-storefront/config"
	"vertexcore-storefront/models"
	"vertexcore-storefront/services/identity"
)

const userCookieName = "storefront-user"

// UserStore keeps the captured identity in its own signed JWT cookie,
// separate from the cart session so logout never touches the cart.
type UserStore struct {
	tokens *identity.Service
	domain string
	maxAge int
}

func NewUserStore(tokens *identity.Service, cfg config.SessionConfig) *UserStore {
	return &UserStore{
		tokens: tokens,
		domain: cfg.Domain,
		maxAge: cfg.MaxAge,
	}
}

// Get returns the persisted identity, or an empty user when the cookie is
// absent, expired or tampered with.
func (s *UserStore) Get(r *http.Request) models.User {
	cookie, err := r.Cookie(userCookieName)
	if err != nil {
		return models.User{}
	}

	user, err := s.tokens.ValidateToken(cookie.Value)
	if err != nil {
		log.Printf("Discarding identity cookie: %v", err)
		return models.User{}
	}
	return user
}

func (s *UserStore) Set(w http.ResponseWriter, user models.User) error {
	if user.IsEmpty() {
		return nil
	}

	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     userCookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.domain,
		MaxAge:   s.maxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *UserStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     userCookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.domain,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
