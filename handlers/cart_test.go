package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vertexcore-storefront/config"
	"vertexcore-storefront/models"
	"vertexcore-storefront/store"
)

type stubFinder struct {
	packages map[int]*models.Package
	err      error
}

func (s *stubFinder) FindPackage(_ context.Context, id int) (*models.Package, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.packages[id], nil
}

func newCartHandler(finder *stubFinder) *CartHandler {
	sessions := store.NewSessions(config.SessionConfig{Secret: "test-session-secret", MaxAge: 3600})
	return NewCartHandler(store.NewCartStore(sessions, nil), finder, nil)
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) models.CartResponse {
	t.Helper()
	var resp models.CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAddToCart_UsesCatalogFields(t *testing.T) {
	h := newCartHandler(&stubFinder{packages: map[int]*models.Package{
		7: {ID: 7, Name: "VIP Rank", Price: 14.99, Image: "https://cdn.example/vip.png"},
	}})

	req := httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"package_id": 7}`))
	rec := httptest.NewRecorder()
	h.AddToCart(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	// Name and price come from the catalog, never from the client.
	assert.Equal(t, "VIP Rank", resp.Items[0].Name)
	assert.Equal(t, 14.99, resp.Items[0].Price)
	assert.Equal(t, 1, resp.ItemCount)
	assert.Equal(t, 14.99, resp.CartTotal)
}

func TestAddToCart_RepeatIsNoOp(t *testing.T) {
	h := newCartHandler(&stubFinder{packages: map[int]*models.Package{
		7: {ID: 7, Name: "VIP Rank", Price: 14.99},
	}})

	first := httptest.NewRecorder()
	h.AddToCart(first, httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"package_id": 7}`)))
	require.Equal(t, http.StatusCreated, first.Code)

	req := carryCookies(httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"package_id": 7}`)), first)
	rec := httptest.NewRecorder()
	h.AddToCart(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Items[0].Quantity)
}

func TestAddToCart_UnknownPackage(t *testing.T) {
	h := newCartHandler(&stubFinder{packages: map[int]*models.Package{}})

	req := httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"package_id": 99}`))
	rec := httptest.NewRecorder()
	h.AddToCart(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddToCart_CatalogUnavailable(t *testing.T) {
	h := newCartHandler(&stubFinder{err: errors.New("connection refused")})

	req := httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"package_id": 7}`))
	rec := httptest.NewRecorder()
	h.AddToCart(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAddToCart_BadRequests(t *testing.T) {
	h := newCartHandler(&stubFinder{})

	for _, body := range []string{`not json`, `{}`, `{"package_id": 0}`} {
		rec := httptest.NewRecorder()
		h.AddToCart(rec, httptest.NewRequest("POST", "/api/cart", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body=%q", body)
	}
}

func TestRemoveFromCart(t *testing.T) {
	h := newCartHandler(&stubFinder{packages: map[int]*models.Package{
		7: {ID: 7, Name: "VIP Rank", Price: 14.99},
		9: {ID: 9, Name: "Car Pack", Price: 4.50},
	}})

	first := httptest.NewRecorder()
	h.AddToCart(first, httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"package_id": 7}`)))
	second := httptest.NewRecorder()
	h.AddToCart(second, carryCookies(httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"package_id": 9}`)), first))

	req := carryCookies(httptest.NewRequest("POST", "/api/cart/remove", strings.NewReader(`{"package_id": 7}`)), first, second)
	rec := httptest.NewRecorder()
	h.RemoveFromCart(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 9, resp.Items[0].PackageID)
	assert.Equal(t, 4.50, resp.CartTotal)
}

func TestClearCart(t *testing.T) {
	h := newCartHandler(&stubFinder{packages: map[int]*models.Package{
		7: {ID: 7, Name: "VIP Rank", Price: 14.99},
	}})

	first := httptest.NewRecorder()
	h.AddToCart(first, httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"package_id": 7}`)))

	rec := httptest.NewRecorder()
	h.ClearCart(rec, carryCookies(httptest.NewRequest("POST", "/api/cart/clear", nil), first))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.ItemCount)
}

func TestOpenCart_NoBus(t *testing.T) {
	h := newCartHandler(&stubFinder{})

	rec := httptest.NewRecorder()
	h.OpenCart(rec, httptest.NewRequest("POST", "/api/cart/open", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
}
