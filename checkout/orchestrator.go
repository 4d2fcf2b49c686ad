// Package checkout drives the redirect sequence against the external
// commerce provider: create a remote basket, authenticate the visitor
// through one of the provider's identity methods, attach the cart lines and
// hand the browser to the provider's payment page. Every full-page redirect
// destroys this process's view of the attempt, so anything needed to resume
// travels in the visitor's cookie or in the basket ident on the URL.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"vertexcore-storefront/models"
	"vertexcore-storefront/services/commerce"
)

var ErrEmptyCart = errors.New("cart is empty")

// Providers whose name contains one of these win the selection; the store
// sells game-server packages, so the platform login is the one visitors
// actually have.
var preferredProviderKeywords = []string{"fivem", "cfx"}

type Orchestrator struct {
	commerce *commerce.Client
	siteURL  string
}

func NewOrchestrator(client *commerce.Client, siteURL string) *Orchestrator {
	return &Orchestrator{
		commerce: client,
		siteURL:  strings.TrimSuffix(siteURL, "/"),
	}
}

// BeginResult tells the caller where to send the browser next. Exactly one
// of CheckoutURL and AuthURL is set.
type BeginResult struct {
	BasketIdent string
	// CheckoutURL is set when the basket was already authorized and the
	// cart lines are attached; the caller clears the cart and redirects.
	CheckoutURL string
	// AuthURL is set when the visitor still has to authenticate with the
	// provider. Resume state rides on the returnUrl's basket ident.
	AuthURL string
}

// Begin runs the front half of a checkout attempt: basket creation, the
// authorization check and either item attachment or provider selection.
// The login gate runs before this is called; Begin always talks to the
// remote API.
func (o *Orchestrator) Begin(ctx context.Context, attemptID string, cart []models.CartItem) (*BeginResult, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	basket, err := o.commerce.CreateBasket(ctx, commerce.CreateBasketRequest{
		CompleteURL:          o.siteURL + "/checkout/return",
		CancelURL:            o.siteURL + "/cart",
		CompleteAutoRedirect: true,
	})
	if err != nil {
		return nil, err
	}

	// Re-read the basket: an existing provider session can mean it is
	// already authorized, in which case the auth redirect is skipped.
	current, err := o.commerce.GetBasket(ctx, basket.Ident)
	if err != nil {
		return nil, err
	}

	if current.IsAuthorized() {
		log.Printf("Checkout %s: basket %s already authorized, attaching items", attemptID, basket.Ident)
		checkoutURL, err := o.attachItems(ctx, basket.Ident, cart)
		if err != nil {
			return nil, err
		}
		return &BeginResult{BasketIdent: basket.Ident, CheckoutURL: checkoutURL}, nil
	}

	returnURL := fmt.Sprintf("%s/checkout/return?basket=%s", o.siteURL, url.QueryEscape(basket.Ident))
	providers, err := o.commerce.AuthProviders(ctx, basket.Ident, returnURL)
	if err != nil {
		return nil, err
	}

	chosen := ChooseProvider(providers)
	log.Printf("Checkout %s: redirecting basket %s to auth provider %q", attemptID, basket.Ident, chosen.Name)
	return &BeginResult{BasketIdent: basket.Ident, AuthURL: chosen.URL}, nil
}

// FinalizeResult is the outcome of the return half of the flow.
type FinalizeResult struct {
	CheckoutURL string
	// Identity is whatever authenticated identity the basket carries after
	// the provider round trip; callers persist it opportunistically.
	Identity models.User
}

// AddItems submits the cart lines one at a time, in cart order, each awaited
// before the next. A failure part way leaves the remote basket partially
// populated; that is accepted, the visitor restarts with a fresh basket.
func (o *Orchestrator) AddItems(ctx context.Context, ident string, cart []models.CartItem) error {
	for _, item := range cart {
		if err := o.commerce.AddPackage(ctx, ident, item.PackageID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Finalize re-reads the basket after item submission to pick up the checkout
// URL and any authenticated identity the provider attached.
func (o *Orchestrator) Finalize(ctx context.Context, ident string) (*FinalizeResult, error) {
	basket, err := o.commerce.GetBasket(ctx, ident)
	if err != nil {
		return nil, err
	}
	if basket.CheckoutURL == "" {
		return nil, commerce.ErrMissingCheckoutURL
	}

	return &FinalizeResult{
		CheckoutURL: basket.CheckoutURL,
		Identity:    basket.Identity(),
	}, nil
}

// BeginAuthOnly runs the login-page dance: a basket with no items, created
// purely so the provider will authenticate the visitor and bounce them back
// to the auth-return page.
func (o *Orchestrator) BeginAuthOnly(ctx context.Context, returnTo string) (string, error) {
	basket, err := o.commerce.CreateBasket(ctx, commerce.CreateBasketRequest{
		CompleteURL:          fmt.Sprintf("%s/auth/return?returnTo=%s", o.siteURL, url.QueryEscape(returnTo)),
		CancelURL:            o.siteURL + returnTo,
		CompleteAutoRedirect: true,
	})
	if err != nil {
		return "", err
	}

	authReturn := fmt.Sprintf("%s/auth/return?basket=%s&returnTo=%s",
		o.siteURL, url.QueryEscape(basket.Ident), url.QueryEscape(returnTo))

	providers, err := o.commerce.AuthProviders(ctx, basket.Ident, authReturn)
	if err != nil {
		return "", err
	}

	return ChooseProvider(providers).URL, nil
}

// FetchIdentity reads the basket and reports whatever identity it carries.
// Used by the auth-return page to capture the login result.
func (o *Orchestrator) FetchIdentity(ctx context.Context, ident string) (models.User, error) {
	basket, err := o.commerce.GetBasket(ctx, ident)
	if err != nil {
		return models.User{}, err
	}
	return basket.Identity(), nil
}

func (o *Orchestrator) attachItems(ctx context.Context, ident string, cart []models.CartItem) (string, error) {
	if err := o.AddItems(ctx, ident, cart); err != nil {
		return "", err
	}

	result, err := o.Finalize(ctx, ident)
	if err != nil {
		return "", err
	}
	return result.CheckoutURL, nil
}

// ChooseProvider prefers the platform login by case-insensitive substring
// match on the provider name, falling back to the first provider returned.
func ChooseProvider(providers []commerce.AuthProvider) commerce.AuthProvider {
	for _, p := range providers {
		name := strings.ToLower(p.Name)
		for _, keyword := range preferredProviderKeywords {
			if strings.Contains(name, keyword) {
				return p
			}
		}
	}
	return providers[0]
}
