package catalog

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"foodexplorer/internal/logging"
)

// maxCategories caps the category picker list.
const maxCategories = 50

// langPrefix matches a two-letter language prefix like "en:" or "fr:".
var langPrefix = regexp.MustCompile(`^[a-z]{2}:`)

// fallbackCategories is served whenever live extraction fails or yields
// nothing. The list is part of the client contract.
var fallbackCategories = []string{
	"beverages",
	"dairy",
	"snacks",
	"chocolate",
	"cereals",
	"bread",
	"fruits",
	"vegetables",
	"meat",
	"fish",
}

// FallbackCategories returns a copy of the fixed fallback list.
func FallbackCategories() []string {
	return append([]string(nil), fallbackCategories...)
}

// ListCategories returns category tags extracted from a broad search page.
// It never fails: any underlying error or an empty extraction yields the
// fallback list.
func (c *Client) ListCategories(ctx context.Context) []string {
	result, err := c.Search(ctx, SearchParams{Page: 1, PageSize: DefaultPageSize})
	if err != nil {
		logging.Get(logging.CategoryCatalog).Warn("Category extraction failed, using fallback: %v", err)
		return FallbackCategories()
	}

	var tags []string
	for _, p := range result.Products {
		tags = append(tags, p.CategoryTags...)
	}

	categories := NormalizeCategoryTags(tags)
	if len(categories) == 0 {
		logging.CatalogDebug("Category extraction yielded nothing, using fallback")
		return FallbackCategories()
	}
	return categories
}

// NormalizeCategoryTags de-duplicates raw category tags, strips language
// prefixes, drops short or still-qualified tags, sorts lexicographically and
// caps the result.
func NormalizeCategoryTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		tag = langPrefix.ReplaceAllString(tag, "")
		if len(tag) <= 2 || strings.Contains(tag, ":") {
			continue
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}

	sort.Strings(out)
	if len(out) > maxCategories {
		out = out[:maxCategories]
	}
	return out
}
