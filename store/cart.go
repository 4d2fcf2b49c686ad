package store

import (
	"context"
	"log"
	"net/http"

	"vertexcore-storefront/models"
)

const cartKey = "cart"

// Notifier is told about cart mutations so navigation chrome can stay in
// sync without polling. A nil notifier is fine.
type Notifier interface {
	CartChanged(ctx context.Context, itemCount int)
}

// CartStore keeps the visitor's cart in the session cookie, unique by
// package id.
type CartStore struct {
	sessions *Sessions
	notifier Notifier
}

func NewCartStore(sessions *Sessions, notifier Notifier) *CartStore {
	return &CartStore{sessions: sessions, notifier: notifier}
}

func (s *CartStore) Get(r *http.Request) []models.CartItem {
	session, err := s.sessions.session(r)
	if err != nil {
		log.Printf("Error getting session: %v", err)
		return []models.CartItem{}
	}

	cart, ok := session.Values[cartKey].([]models.CartItem)
	if !ok {
		return []models.CartItem{}
	}
	return cart
}

func (s *CartStore) Count(r *http.Request) int {
	var count int
	for _, item := range s.Get(r) {
		count += item.Quantity
	}
	return count
}

// Add puts a package into the cart. Quantity is pinned to 1 and a package
// already in the cart is left untouched; the returned bool reports whether
// anything changed.
func (s *CartStore) Add(w http.ResponseWriter, r *http.Request, item models.CartItem) (bool, error) {
	session, err := s.sessions.session(r)
	if err != nil {
		return false, err
	}

	cart, _ := session.Values[cartKey].([]models.CartItem)
	for _, existing := range cart {
		if existing.PackageID == item.PackageID {
			return false, nil
		}
	}

	item.Quantity = 1
	cart = append(cart, item)

	session.Values[cartKey] = cart
	if err := session.Save(r, w); err != nil {
		return false, err
	}

	s.notify(r, cart)
	return true, nil
}

func (s *CartStore) Remove(w http.ResponseWriter, r *http.Request, packageID int) error {
	session, err := s.sessions.session(r)
	if err != nil {
		return err
	}

	cart, _ := session.Values[cartKey].([]models.CartItem)
	for i, item := range cart {
		if item.PackageID == packageID {
			cart = append(cart[:i], cart[i+1:]...)
			break
		}
	}

	session.Values[cartKey] = cart
	if err := session.Save(r, w); err != nil {
		return err
	}

	s.notify(r, cart)
	return nil
}

func (s *CartStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, err := s.sessions.session(r)
	if err != nil {
		return err
	}

	session.Values[cartKey] = []models.CartItem{}
	if err := session.Save(r, w); err != nil {
		return err
	}

	s.notify(r, nil)
	return nil
}

func (s *CartStore) notify(r *http.Request, cart []models.CartItem) {
	if s.notifier == nil {
		return
	}
	var count int
	for _, item := range cart {
		count += item.Quantity
	}
	s.notifier.CartChanged(r.Context(), count)
}
