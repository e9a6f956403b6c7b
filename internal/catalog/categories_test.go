package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCategoryTags(t *testing.T) {
	tags := []string{
		"en:beverages",
		"fr:beverages", // duplicate after prefix strip
		"en:plant-based:drinks", // still qualified, dropped
		"en:ab",         // too short after strip
		"snacks",
		"en:dairy",
	}

	got := NormalizeCategoryTags(tags)
	assert.Equal(t, []string{"beverages", "dairy", "snacks"}, got)
}

func TestNormalizeCategoryTagsCap(t *testing.T) {
	var tags []string
	for i := 0; i < 80; i++ {
		tags = append(tags, fmt.Sprintf("en:category-%03d", i))
	}

	got := NormalizeCategoryTags(tags)
	assert.Len(t, got, maxCategories)
	assert.Equal(t, "category-000", got[0])
}

func TestListCategoriesFromProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SearchResult{
			Products: []Product{
				{Code: "1", CategoryTags: []string{"en:snacks", "en:chocolate"}},
				{Code: "2", CategoryTags: []string{"en:snacks", "en:biscuits"}},
			},
			Count: 2,
		})
	}))
	defer srv.Close()

	got := newTestClient(srv.URL).ListCategories(context.Background())
	assert.Equal(t, []string{"biscuits", "chocolate", "snacks"}, got)
}

func TestListCategoriesFallsBackOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	got := newTestClient(srv.URL).ListCategories(context.Background())
	require.Equal(t, FallbackCategories(), got)
	assert.Contains(t, got, "beverages")
	assert.Contains(t, got, "fish")
}

func TestListCategoriesFallsBackWhenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SearchResult{Products: []Product{{Code: "1"}}})
	}))
	defer srv.Close()

	got := newTestClient(srv.URL).ListCategories(context.Background())
	assert.Equal(t, FallbackCategories(), got)
}
