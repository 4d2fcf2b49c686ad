package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"vertexcore-storefront/models"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

const shortDescriptionLimit = 110

// Catalog fetches every category with its packages and flattens them into
// the storefront's grid model. Categories without a name fall back to a
// generic label so filtering stays stable.
func (c *Client) Catalog(ctx context.Context) (*models.CatalogResponse, error) {
	raw, err := c.Get(ctx, c.accountPath("/categories")+"?includePackages=1")
	if err != nil {
		return nil, err
	}

	var categories []categoryBody
	if err := json.Unmarshal(unwrapEnvelope(raw), &categories); err != nil {
		return nil, fmt.Errorf("error decoding categories: %v", err)
	}

	resp := &models.CatalogResponse{Categories: []string{}, Packages: []models.Package{}}
	seen := map[string]bool{}

	for _, cat := range categories {
		name := cat.Name
		if name == "" {
			name = "General"
		}

		for _, pkg := range cat.packages() {
			resp.Packages = append(resp.Packages, models.Package{
				ID:          pkg.ID,
				Name:        packageName(pkg.Name),
				Description: shortDescription(pkg.Description),
				Image:       pkg.Image,
				Price:       pkg.price(),
				Category:    name,
			})
		}

		if !seen[name] {
			seen[name] = true
			resp.Categories = append(resp.Categories, name)
		}
	}

	return resp, nil
}

// FindPackage looks a single package up by id across all categories. The
// provider has no per-package endpoint scoped to the public token, so the
// listing is scanned.
func (c *Client) FindPackage(ctx context.Context, id int) (*models.Package, error) {
	catalog, err := c.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	for i := range catalog.Packages {
		if catalog.Packages[i].ID == id {
			return &catalog.Packages[i], nil
		}
	}
	return nil, nil
}

func packageName(name string) string {
	if name == "" {
		return "Unnamed"
	}
	return name
}

// shortDescription strips markup and truncates for card display.
func shortDescription(html string) string {
	text := strings.TrimSpace(htmlTagPattern.ReplaceAllString(html, ""))
	if len(text) > shortDescriptionLimit {
		return text[:shortDescriptionLimit]
	}
	return text
}
