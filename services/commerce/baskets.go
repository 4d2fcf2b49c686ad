package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
)

// CreateBasket opens a new remote basket. The response must carry an ident;
// a basket we cannot reference again is useless to the flow.
func (c *Client) CreateBasket(ctx context.Context, req CreateBasketRequest) (*Basket, error) {
	raw, err := c.Post(ctx, c.accountPath("/baskets"), req)
	if err != nil {
		return nil, err
	}

	basket, err := parseBasket(raw)
	if err != nil {
		return nil, fmt.Errorf("error decoding basket response: %v", err)
	}
	if basket.Ident == "" {
		return nil, ErrMissingBasketIdent
	}

	log.Printf("Created remote basket %s", basket.Ident)
	return basket, nil
}

// GetBasket fetches the basket by its opaque ident.
func (c *Client) GetBasket(ctx context.Context, ident string) (*Basket, error) {
	raw, err := c.Get(ctx, c.accountPath("/baskets/%s", url.PathEscape(ident)))
	if err != nil {
		return nil, err
	}

	basket, err := parseBasket(raw)
	if err != nil {
		return nil, fmt.Errorf("error decoding basket response: %v", err)
	}
	return basket, nil
}

// AddPackage attaches one package line to the basket. The provider expects
// package_id as a string; that is the wire contract, not a mistake.
func (c *Client) AddPackage(ctx context.Context, ident string, packageID, quantity int) error {
	payload := map[string]interface{}{
		"package_id": strconv.Itoa(packageID),
		"quantity":   quantity,
	}

	if _, err := c.Post(ctx, fmt.Sprintf("/baskets/%s/packages", url.PathEscape(ident)), payload); err != nil {
		return err
	}

	log.Printf("Added package %d (qty %d) to basket %s", packageID, quantity, ident)
	return nil
}

// AuthProviders lists the identity providers the basket can be authenticated
// with. returnURL is where the provider sends the browser afterwards; it must
// carry everything needed to resume, since this process keeps no state of the
// attempt beyond the visitor's cookie.
func (c *Client) AuthProviders(ctx context.Context, ident, returnURL string) ([]AuthProvider, error) {
	path := c.accountPath("/baskets/%s/auth", url.PathEscape(ident)) +
		"?returnUrl=" + url.QueryEscape(returnURL)

	raw, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var providers []AuthProvider
	if err := json.Unmarshal(unwrapEnvelope(raw), &providers); err != nil {
		return nil, fmt.Errorf("error decoding auth providers: %v", err)
	}
	if len(providers) == 0 {
		return nil, ErrNoAuthProviders
	}

	return providers, nil
}
