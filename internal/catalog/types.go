package catalog

import (
	"encoding/json"
	"strings"
)

// Product is a read-only snapshot of a catalog entry. Products are fetched
// per request; nothing is cached across queries.
type Product struct {
	Code            string             `json:"code"`
	Name            string             `json:"product_name"`
	Brands          string             `json:"brands"` // comma-joined
	Images          map[string]string  `json:"images,omitempty"`
	NutritionGrade  string             `json:"nutrition_grades,omitempty"` // a..e, empty = unknown
	CategoryTags    []string           `json:"categories_tags,omitempty"`
	IngredientsText string             `json:"ingredients_text,omitempty"`
	Nutriments      map[string]float64 `json:"nutriments,omitempty"` // numeric facts per 100g
}

// productAlias avoids recursing into Product.UnmarshalJSON.
type productAlias Product

// UnmarshalJSON decodes a product, tolerating the upstream's habit of mixing
// strings and numbers inside nutriments. Non-numeric values are dropped.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		productAlias
		Nutriments map[string]json.RawMessage `json:"nutriments"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product(raw.productAlias)
	p.Nutriments = nil
	if len(raw.Nutriments) > 0 {
		p.Nutriments = make(map[string]float64, len(raw.Nutriments))
		for k, v := range raw.Nutriments {
			var f float64
			if err := json.Unmarshal(v, &f); err == nil {
				p.Nutriments[k] = f
			}
		}
	}
	return nil
}

// PrimaryBrand returns the first comma-segment of the brands string.
func (p Product) PrimaryBrand() string {
	brand, _, _ := strings.Cut(p.Brands, ",")
	return strings.TrimSpace(brand)
}

// ImageURL returns the best available image URL, preferring the small
// front image.
func (p Product) ImageURL() string {
	if url := p.Images["front_small_url"]; url != "" {
		return url
	}
	return p.Images["front_url"]
}

// SearchParams selects a page of the catalog. Empty SearchTerm or
// CategoryTag omit the corresponding filter entirely.
type SearchParams struct {
	SearchTerm  string
	CategoryTag string
	Page        int
	PageSize    int
}

// SearchResult is a normalized search response page.
type SearchResult struct {
	Products  []Product `json:"products"`
	Count     int       `json:"count"`
	Page      int       `json:"page"`
	PageCount int       `json:"page_count"`
}
