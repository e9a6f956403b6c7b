package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClientWithConfig(Config{
		BaseURL:   url,
		UserAgent: "FoodExplorer/1.0 (test)",
	})
}

func TestSearchBuildsUpstreamQuery(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		assert.Equal(t, "/cgi/search.pl", r.URL.Path)
		assert.Equal(t, "FoodExplorer/1.0 (test)", r.Header.Get("User-Agent"))
		json.NewEncoder(w).Encode(SearchResult{
			Products: []Product{{Code: "123", Name: "Dark Chocolate"}},
			Count:    1,
			Page:     1,
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	result, err := client.Search(context.Background(), SearchParams{
		SearchTerm:  "chocolate",
		CategoryTag: "snacks",
		Page:        2,
		PageSize:    24,
	})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Dark Chocolate", result.Products[0].Name)

	assert.Equal(t, "process", gotQuery["action"])
	assert.Equal(t, "1", gotQuery["json"])
	assert.Equal(t, "2", gotQuery["page"])
	assert.Equal(t, "24", gotQuery["page_size"])
	assert.Equal(t, "chocolate", gotQuery["search_terms"])
	assert.Equal(t, "1", gotQuery["search_simple"])
	assert.Equal(t, "categories", gotQuery["tagtype_0"])
	assert.Equal(t, "contains", gotQuery["tag_contains_0"])
	assert.Equal(t, "snacks", gotQuery["tag_0"])
}

func TestSearchOmitsEmptyFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Has("search_terms") || q.Has("tagtype_0") || q.Has("tag_0") {
			t.Errorf("empty filters must be omitted entirely, got query %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(SearchResult{})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), SearchParams{})
	require.NoError(t, err)
}

func TestSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), SearchParams{SearchTerm: "milk"})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
}

func TestSearchFormatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), SearchParams{})
	var format *FormatError
	require.ErrorAs(t, err, &format)
}

func TestSearchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := newTestClient(srv.URL).Search(context.Background(), SearchParams{})
	var network *NetworkError
	require.ErrorAs(t, err, &network)
}

func TestGetByCodeEmptyBarcode(t *testing.T) {
	_, err := NewClient().GetByCode(context.Background(), "")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestGetByCodeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": 0})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetByCode(context.Background(), "0000000000000")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetByCodeFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/product/3017620422003.json", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": 1,
			"product": map[string]interface{}{
				"code":             "3017620422003",
				"product_name":     "Nutella",
				"brands":           "Ferrero, Nutella",
				"nutrition_grades": "e",
			},
		})
	}))
	defer srv.Close()

	product, err := newTestClient(srv.URL).GetByCode(context.Background(), "3017620422003")
	require.NoError(t, err)
	assert.Equal(t, "Nutella", product.Name)
	assert.Equal(t, "Ferrero", product.PrimaryBrand())
	assert.Equal(t, "e", product.NutritionGrade)
}

func TestProductDecodeMixedNutriments(t *testing.T) {
	// Upstream mixes numbers and strings inside nutriments; strings are dropped.
	data := []byte(`{
		"code": "123",
		"product_name": "Oats",
		"nutriments": {
			"energy-kcal_100g": 375,
			"proteins_100g": 13.5,
			"energy_unit": "kcal"
		}
	}`)

	var p Product
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, 375.0, p.Nutriments["energy-kcal_100g"])
	assert.Equal(t, 13.5, p.Nutriments["proteins_100g"])
	_, hasUnit := p.Nutriments["energy_unit"]
	assert.False(t, hasUnit)
}

func TestProductImageURLPrefersSmall(t *testing.T) {
	p := Product{Images: map[string]string{
		"front_url":       "https://img/full.jpg",
		"front_small_url": "https://img/small.jpg",
	}}
	assert.Equal(t, "https://img/small.jpg", p.ImageURL())

	p.Images = map[string]string{"front_url": "https://img/full.jpg"}
	assert.Equal(t, "https://img/full.jpg", p.ImageURL())

	assert.Equal(t, "", Product{}.ImageURL())
}
