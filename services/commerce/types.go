package commerce

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"vertexcore-storefront/models"
)

var (
	ErrMissingBasketIdent = errors.New("no basket ident returned by commerce API")
	ErrMissingCheckoutURL = errors.New("checkout URL not found on basket")
	ErrNoAuthProviders    = errors.New("no auth providers returned by commerce API")
)

// CreateBasketRequest is the payload for basket creation. The complete and
// cancel URLs point back into this storefront and are the only way the
// provider hands control back after payment.
type CreateBasketRequest struct {
	CompleteURL          string `json:"complete_url"`
	CancelURL            string `json:"cancel_url"`
	CompleteAutoRedirect bool   `json:"complete_auto_redirect"`
}

// AuthProvider is one external identity method the provider offers for a
// basket (e.g. a platform login).
type AuthProvider struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// basketBody is the wire shape of a basket. The provider has been observed
// returning the authenticated identity in several different places, so every
// candidate location is declared and probed in order.
type basketBody struct {
	Ident      string           `json:"ident"`
	Username   string           `json:"username"`
	UsernameID string           `json:"username_id"`
	Customer   *identitySection `json:"customer"`
	User       *identitySection `json:"user"`
	Auth       *identitySection `json:"auth"`
	Links      basketLinks      `json:"links"`
}

type identitySection struct {
	Username   string `json:"username"`
	UsernameID string `json:"username_id"`
}

type basketLinks struct {
	Checkout string `json:"checkout"`
}

// Basket is the parsed view of a remote basket. Only the fields this
// storefront reacts to are kept; the basket itself is owned by the provider
// and referenced by its opaque ident.
type Basket struct {
	Ident       string
	CheckoutURL string

	body basketBody
}

// identityProbe returns the identity found at one candidate location of the
// basket body, or an empty user.
type identityProbe func(b *basketBody) models.User

// Probes run in priority order; the first that yields a non-empty identity
// wins. The order matches the observed API revisions: top level first, then
// customer, user and auth sections.
var identityProbes = []identityProbe{
	func(b *basketBody) models.User {
		return models.User{Username: b.Username, UsernameID: b.UsernameID}
	},
	func(b *basketBody) models.User { return sectionIdentity(b.Customer) },
	func(b *basketBody) models.User { return sectionIdentity(b.User) },
	func(b *basketBody) models.User { return sectionIdentity(b.Auth) },
}

func sectionIdentity(s *identitySection) models.User {
	if s == nil {
		return models.User{}
	}
	return models.User{Username: s.Username, UsernameID: s.UsernameID}
}

// Identity reports the authenticated identity embedded in the basket, if any.
func (b *Basket) Identity() models.User {
	for _, probe := range identityProbes {
		if u := probe(&b.body); !u.IsEmpty() {
			return u
		}
	}
	return models.User{}
}

// IsAuthorized reports whether the basket already carries an authenticated
// identity, regardless of which response shape it arrived in.
func (b *Basket) IsAuthorized() bool {
	return !b.Identity().IsEmpty()
}

// unwrapEnvelope strips the optional {"data": ...} wrapper some endpoints
// apply. Returns the inner payload when present, the raw payload otherwise.
func unwrapEnvelope(raw json.RawMessage) json.RawMessage {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data
	}
	return raw
}

// parseBasket decodes a basket response, tolerating both enveloped and bare
// bodies. The checkout link is taken from the inner body first, falling back
// to a top-level links section when the envelope carries it there.
func parseBasket(raw json.RawMessage) (*Basket, error) {
	var inner basketBody
	if err := json.Unmarshal(unwrapEnvelope(raw), &inner); err != nil {
		return nil, err
	}

	checkout := inner.Links.Checkout
	if checkout == "" {
		var outer basketBody
		if err := json.Unmarshal(raw, &outer); err == nil {
			checkout = outer.Links.Checkout
		}
	}

	return &Basket{
		Ident:       inner.Ident,
		CheckoutURL: checkout,
		body:        inner,
	}, nil
}

// priceValue tolerates the provider sending prices as numbers or strings.
type priceValue float64

func (p *priceValue) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*p = 0
		return nil
	}
	*p = priceValue(f)
	return nil
}

// packageBody probes the price across every field name observed in the wild.
type packageBody struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Price       priceValue `json:"price"`
	Amount      priceValue `json:"amount"`
	TotalPrice  priceValue `json:"total_price"`
	BasePrice   priceValue `json:"base_price"`
}

func (p *packageBody) price() float64 {
	for _, v := range []priceValue{p.Price, p.Amount, p.TotalPrice, p.BasePrice} {
		if v != 0 {
			return float64(v)
		}
	}
	return 0
}

// categoryBody tolerates the three shapes the package list shows up in:
// a bare array, {"data": [...]}, or {"items": [...]}.
type categoryBody struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Packages json.RawMessage `json:"packages"`
}

func (c *categoryBody) packages() []packageBody {
	if len(c.Packages) == 0 {
		return nil
	}

	var direct []packageBody
	if err := json.Unmarshal(c.Packages, &direct); err == nil {
		return direct
	}

	var wrapped struct {
		Data  []packageBody `json:"data"`
		Items []packageBody `json:"items"`
	}
	if err := json.Unmarshal(c.Packages, &wrapped); err == nil {
		if len(wrapped.Data) > 0 {
			return wrapped.Data
		}
		return wrapped.Items
	}

	return nil
}
