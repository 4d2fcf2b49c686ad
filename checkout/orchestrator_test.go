package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vertexcore-storefront/models"
	"vertexcore-storefront/services/commerce"
)

// fakeProvider scripts the commerce API for one test: what the basket looks
// like, which auth providers exist and when package adds should fail.
type fakeProvider struct {
	mu sync.Mutex

	ident       string
	username    string
	checkoutURL string
	providers   []commerce.AuthProvider
	failAddAt   int // 1-based index of the add call to fail; 0 = never

	createCalls  int
	addedIDs     []string
	gotReturnURL string
	gotCreate    commerce.CreateBasketRequest

	server *httptest.Server
}

func newFakeProvider(ident string) *fakeProvider {
	p := &fakeProvider{ident: ident}
	p.server = httptest.NewServer(http.HandlerFunc(p.handle))
	return p
}

func (p *fakeProvider) handle(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case r.Method == "POST" && r.URL.Path == "/accounts/test-token/baskets":
		p.createCalls++
		json.NewDecoder(r.Body).Decode(&p.gotCreate)
		fmt.Fprintf(w, `{"data":{"ident":%q}}`, p.ident)

	case r.Method == "GET" && r.URL.Path == "/accounts/test-token/baskets/"+p.ident+"/auth":
		p.gotReturnURL = r.URL.Query().Get("returnUrl")
		payload, _ := json.Marshal(p.providers)
		fmt.Fprintf(w, `{"data":%s}`, payload)

	case r.Method == "GET" && r.URL.Path == "/accounts/test-token/baskets/"+p.ident:
		body := map[string]interface{}{"ident": p.ident}
		if p.username != "" {
			body["customer"] = map[string]string{"username": p.username}
		}
		if p.checkoutURL != "" {
			body["links"] = map[string]string{"checkout": p.checkoutURL}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": body})

	case r.Method == "POST" && r.URL.Path == "/baskets/"+p.ident+"/packages":
		if p.failAddAt > 0 && len(p.addedIDs)+1 == p.failAddAt {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"error":"basket unavailable"}`))
			return
		}
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		p.addedIDs = append(p.addedIDs, req["package_id"].(string))
		w.Write([]byte(`{}`))

	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"error":"unexpected request %s %s"}`, r.Method, r.URL.Path)
	}
}

func (p *fakeProvider) orchestrator() *Orchestrator {
	client := commerce.NewClient("test-token")
	client.SetBaseURL(p.server.URL)
	return NewOrchestrator(client, "https://shop.example")
}

func (p *fakeProvider) close() { p.server.Close() }

func testCart() []models.CartItem {
	return []models.CartItem{
		{PackageID: 7, Name: "X", Price: 9.99, Quantity: 1},
		{PackageID: 12, Name: "Y", Price: 4.50, Quantity: 1},
	}
}

func TestBegin_EmptyCart(t *testing.T) {
	provider := newFakeProvider("bk-1")
	defer provider.close()

	_, err := provider.orchestrator().Begin(context.Background(), "attempt-1", nil)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, provider.createCalls)
}

func TestBegin_UnauthorizedRedirectsToAuth(t *testing.T) {
	provider := newFakeProvider("bk-1")
	defer provider.close()
	provider.providers = []commerce.AuthProvider{
		{Name: "Steam", URL: "https://auth.example/steam"},
		{Name: "CFX Login", URL: "https://auth.example/cfx"},
	}

	result, err := provider.orchestrator().Begin(context.Background(), "attempt-1", testCart())

	require.NoError(t, err)
	assert.Equal(t, "bk-1", result.BasketIdent)
	assert.Equal(t, "https://auth.example/cfx", result.AuthURL)
	assert.Empty(t, result.CheckoutURL)

	// No items are attached before the visitor authenticates.
	assert.Empty(t, provider.addedIDs)

	// The return URL must carry the basket ident; it is the only resume
	// state that survives the provider round trip.
	assert.Equal(t, "https://shop.example/checkout/return?basket=bk-1", provider.gotReturnURL)

	// Basket creation points the provider back into this site.
	assert.Equal(t, "https://shop.example/checkout/return", provider.gotCreate.CompleteURL)
	assert.Equal(t, "https://shop.example/cart", provider.gotCreate.CancelURL)
	assert.True(t, provider.gotCreate.CompleteAutoRedirect)
}

func TestBegin_AlreadyAuthorizedAttachesItems(t *testing.T) {
	provider := newFakeProvider("bk-1")
	defer provider.close()
	provider.username = "Ace"
	provider.checkoutURL = "https://pay.example/bk-1"

	result, err := provider.orchestrator().Begin(context.Background(), "attempt-1", testCart())

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/bk-1", result.CheckoutURL)
	assert.Empty(t, result.AuthURL)
	assert.Equal(t, []string{"7", "12"}, provider.addedIDs)
}

func TestBegin_NoAuthProviders(t *testing.T) {
	provider := newFakeProvider("bk-1")
	defer provider.close()

	_, err := provider.orchestrator().Begin(context.Background(), "attempt-1", testCart())

	assert.ErrorIs(t, err, commerce.ErrNoAuthProviders)
}

func TestAddItems_SequentialAndStopsOnFailure(t *testing.T) {
	provider := newFakeProvider("bk-1")
	defer provider.close()
	provider.failAddAt = 2

	err := provider.orchestrator().AddItems(context.Background(), "bk-1", testCart())

	require.Error(t, err)
	var reqErr *commerce.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadGateway, reqErr.Status)

	// First line landed, second failed, nothing after it was attempted.
	assert.Equal(t, []string{"7"}, provider.addedIDs)
}

func TestFinalize(t *testing.T) {
	provider := newFakeProvider("bk-1")
	defer provider.close()
	provider.username = "Ace"
	provider.checkoutURL = "https://pay.example/bk-1"

	result, err := provider.orchestrator().Finalize(context.Background(), "bk-1")

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/bk-1", result.CheckoutURL)
	assert.Equal(t, "Ace", result.Identity.Username)
}

func TestFinalize_MissingCheckoutURL(t *testing.T) {
	provider := newFakeProvider("bk-1")
	defer provider.close()

	_, err := provider.orchestrator().Finalize(context.Background(), "bk-1")

	assert.ErrorIs(t, err, commerce.ErrMissingCheckoutURL)
}

func TestBeginAuthOnly(t *testing.T) {
	provider := newFakeProvider("bk-1")
	defer provider.close()
	provider.providers = []commerce.AuthProvider{
		{Name: "FiveM", URL: "https://auth.example/fivem"},
	}

	authURL, err := provider.orchestrator().BeginAuthOnly(context.Background(), "/store")

	require.NoError(t, err)
	assert.Equal(t, "https://auth.example/fivem", authURL)
	assert.Empty(t, provider.addedIDs)

	assert.Equal(t, "https://shop.example/auth/return?returnTo=%2Fstore", provider.gotCreate.CompleteURL)
	assert.Equal(t, "https://shop.example/store", provider.gotCreate.CancelURL)
	assert.Equal(t, "https://shop.example/auth/return?basket=bk-1&returnTo=%2Fstore", provider.gotReturnURL)
}

func TestFetchIdentity(t *testing.T) {
	provider := newFakeProvider("bk-1")
	defer provider.close()
	provider.username = "Ace"

	user, err := provider.orchestrator().FetchIdentity(context.Background(), "bk-1")

	require.NoError(t, err)
	assert.Equal(t, "Ace", user.Username)
}

func TestChooseProvider(t *testing.T) {
	tests := []struct {
		name      string
		providers []commerce.AuthProvider
		want      string
	}{
		{
			name: "platform keyword preferred regardless of order",
			providers: []commerce.AuthProvider{
				{Name: "Steam", URL: "a"},
				{Name: "CFX Login", URL: "b"},
			},
			want: "b",
		},
		{
			name: "case insensitive match",
			providers: []commerce.AuthProvider{
				{Name: "Steam", URL: "a"},
				{Name: "FiveM Connect", URL: "b"},
			},
			want: "b",
		},
		{
			name: "falls back to first",
			providers: []commerce.AuthProvider{
				{Name: "Steam", URL: "a"},
				{Name: "Discord", URL: "b"},
			},
			want: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chosen := ChooseProvider(tt.providers)
			assert.Equal(t, tt.want, chosen.URL)
		})
	}
}
